package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

// OllamaLLM handles interactions with the Ollama chat API
type OllamaLLM struct {
	Client      *api.Client
	ModelName   string
	Temperature float64
	MaxTokens   int
}

// NewOllamaLLM creates a new Ollama LLM client. An empty host falls back to OLLAMA_HOST.
func NewOllamaLLM(host string, model string) (*OllamaLLM, error) {
	hostURL := envconfig.Host()
	if host != "" {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
		}
		hostURL = u
	}

	return &OllamaLLM{
		Client:      api.NewClient(hostURL, http.DefaultClient),
		ModelName:   model,
		Temperature: 0.7,
		MaxTokens:   2000,
	}, nil
}

// Model returns the model name
func (o *OllamaLLM) Model() string {
	return o.ModelName
}

// Complete sends one system and one user message and returns the reply
func (o *OllamaLLM) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	stream := false
	req := api.ChatRequest{
		Model: o.ModelName,
		Messages: []api.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": o.Temperature,
			"num_predict": o.MaxTokens,
		},
	}

	var responseBuilder strings.Builder

	err := o.Client.Chat(ctx, &req, func(resp api.ChatResponse) error {
		_, err := responseBuilder.WriteString(resp.Message.Content)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	return responseBuilder.String(), nil
}
