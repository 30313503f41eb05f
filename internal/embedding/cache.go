package embedding

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedEmbedder remembers single-text embeddings, so a repeated question
// does not go back to the model. Batches are passed straight through.
type CachedEmbedder struct {
	Embedder
	cache *cache.Cache
}

// NewCachedEmbedder wraps inner with an in-memory cache whose entries expire after ttl
func NewCachedEmbedder(inner Embedder, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		Embedder: inner,
		cache:    cache.New(ttl, 2*ttl),
	}
}

// EmbedOne returns the cached vector for text, computing it on a miss
func (c *CachedEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		return v.([]float32), nil
	}

	v, err := c.Embedder.EmbedOne(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(text, v)
	return v, nil
}

// Len reports how many vectors are cached
func (c *CachedEmbedder) Len() int {
	return c.cache.ItemCount()
}
