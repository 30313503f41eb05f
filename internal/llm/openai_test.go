package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompletionsLLM_Complete(t *testing.T) {
	var got chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"$E = mc^2$"}}]}`))
	}))
	defer srv.Close()

	c, err := NewChatCompletionsLLM(ChatCompletionsConfig{
		BaseURL:     srv.URL + "/",
		APIKey:      "secret",
		Model:       "sonar",
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	require.NoError(t, err)

	answer, err := c.Complete(context.Background(), "sys", "question")
	require.NoError(t, err)
	assert.Equal(t, "$E = mc^2$", answer)

	assert.Equal(t, "sonar", got.Model)
	assert.Equal(t, 2000, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatCompletionMsg{Role: "system", Content: "sys"}, got.Messages[0])
	assert.Equal(t, chatCompletionMsg{Role: "user", Content: "question"}, got.Messages[1])
}

func TestChatCompletionsLLM_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewChatCompletionsLLM(ChatCompletionsConfig{BaseURL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Equal(t, "LLM error: 429", err.Error())
}

func TestChatCompletionsLLM_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c, err := NewChatCompletionsLLM(ChatCompletionsConfig{BaseURL: srv.URL, APIKey: "k"})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "s", "u")
	assert.Error(t, err)
}

func TestChatCompletionsLLM_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c, err := NewChatCompletionsLLM(ChatCompletionsConfig{BaseURL: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "s", "u")
	assert.Error(t, err)
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(Options{Provider: ProviderOllama, Model: "qwen", Host: "http://localhost:11434"})
	require.NoError(t, err)
	assert.IsType(t, &OllamaLLM{}, c)

	c, err = NewClient(Options{Provider: ProviderPerplexity, Model: "sonar", APIKey: "k"})
	require.NoError(t, err)
	require.IsType(t, &ChatCompletionsLLM{}, c)
	assert.Equal(t, DefaultPerplexityBaseURL, c.(*ChatCompletionsLLM).baseURL)

	_, err = NewClient(Options{Provider: ProviderOpenAI})
	assert.Error(t, err)

	_, err = NewClient(Options{Provider: "bard"})
	assert.Error(t, err)
}
