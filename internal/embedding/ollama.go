package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
	"golang.org/x/sync/errgroup"
)

// OllamaEmbedder generates embeddings using Ollama API
type OllamaEmbedder struct {
	Client        *api.Client
	Model         string
	MaxRetries    int
	RetryDelay    time.Duration
	Timeout       time.Duration
	MaxConcurrent int
	BatchSize     int

	dimension int
}

// NewOllamaEmbedder creates a new Ollama embedder. An empty host falls back
// to OLLAMA_HOST. dimension is the vector size the model produces, 0 if unknown.
func NewOllamaEmbedder(host, model string, dimension int) (*OllamaEmbedder, error) {
	hostURL := envconfig.Host()
	if host != "" {
		u, err := url.Parse(host)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
		}
		hostURL = u
	}

	return &OllamaEmbedder{
		Client:        api.NewClient(hostURL, http.DefaultClient),
		Model:         model,
		MaxRetries:    3,
		RetryDelay:    time.Second,
		Timeout:       time.Second * 30,
		MaxConcurrent: 2,
		BatchSize:     32,
		dimension:     dimension,
	}, nil
}

// Dimension returns the configured vector size
func (e *OllamaEmbedder) Dimension() int {
	return e.dimension
}

// EmbedOne generates an embedding for a single text
func (e *OllamaEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embedWithRetry(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for texts, preserving their order
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedBatchWithProgress(ctx, texts, nil)
}

// EmbedBatchWithProgress splits texts into batches and embeds them with at
// most MaxConcurrent requests in flight, reporting after each batch.
func (e *OllamaEmbedder) EmbedBatchWithProgress(ctx context.Context, texts []string,
	progressFunc func(processed, total int)) ([][]float32, error) {

	vectors := make([][]float32, len(texts))
	if len(texts) == 0 {
		return vectors, nil
	}

	batchSize := max(e.BatchSize, 1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(e.MaxConcurrent, 1))

	var mu sync.Mutex
	processed := 0
	total := len(texts)

	for start := 0; start < total; start += batchSize {
		end := min(start+batchSize, total)

		g.Go(func() error {
			batch, err := e.embedWithRetry(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("failed to embed texts %d-%d: %w", start, end-1, err)
			}
			copy(vectors[start:end], batch)

			mu.Lock()
			processed += end - start
			if progressFunc != nil {
				progressFunc(processed, total)
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return vectors, nil
}

func (e *OllamaEmbedder) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	var err error

	for retries := 0; retries <= e.MaxRetries; retries++ {
		if retries > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(retries) * e.RetryDelay):
			}
		}

		vectors, err = e.createEmbeddings(ctx, texts)
		if err == nil {
			return vectors, nil
		}
	}

	return nil, fmt.Errorf("failed to create embedding after %d retries: %w", e.MaxRetries, err)
}

func (e *OllamaEmbedder) createEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	req := api.EmbedRequest{
		Model: e.Model,
		Input: texts,
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	resp, err := e.Client.Embed(ctxWithTimeout, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, v := range resp.Embeddings {
		if e.dimension > 0 && len(v) != e.dimension {
			return nil, fmt.Errorf("embedding has %d dimensions, expected %d", len(v), e.dimension)
		}
		vectors[i] = Normalize(v)
	}

	return vectors, nil
}
