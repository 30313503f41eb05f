package llm

import (
	"context"
	"fmt"
	"time"
)

// Client turns a system instruction and a user message into a completion
type Client interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
	Model() string
}

// Provider names accepted by NewClient
const (
	ProviderOllama     = "ollama"
	ProviderOpenAI     = "openai"
	ProviderPerplexity = "perplexity"
)

// Options configures a Client
type Options struct {
	Provider    string
	Model       string
	Host        string // Ollama host, empty for OLLAMA_HOST
	BaseURL     string
	APIKey      string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// NewClient builds the client for opts.Provider
func NewClient(opts Options) (Client, error) {
	switch opts.Provider {
	case ProviderOllama, "":
		c, err := NewOllamaLLM(opts.Host, opts.Model)
		if err != nil {
			return nil, err
		}
		c.Temperature = opts.Temperature
		c.MaxTokens = opts.MaxTokens
		return c, nil
	case ProviderOpenAI, ProviderPerplexity:
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = DefaultOpenAIBaseURL
			if opts.Provider == ProviderPerplexity {
				baseURL = DefaultPerplexityBaseURL
			}
		}
		return NewChatCompletionsLLM(ChatCompletionsConfig{
			BaseURL:     baseURL,
			APIKey:      opts.APIKey,
			Model:       opts.Model,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
			Timeout:     opts.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}
