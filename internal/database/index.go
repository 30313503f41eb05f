package database

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"

	"lecture-rag/internal/models"
)

var (
	// ErrMissingEmbedding is returned when a chunk without a vector is upserted
	ErrMissingEmbedding = errors.New("chunk has no embedding")
	// ErrInvalidCollection is returned for collection names that are not plain identifiers
	ErrInvalidCollection = errors.New("invalid collection name")
)

var collectionNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// VectorIndex is a persistent, named collection of embedded chunks searched
// by cosine distance.
type VectorIndex interface {
	// Upsert stores chunks, overwriting any with the same id.
	Upsert(ctx context.Context, chunks []models.Chunk) error
	// Query returns up to topK nearest chunks, closest first. Store failures
	// are logged and yield an empty result.
	Query(ctx context.Context, vec []float32, topK int) []models.RetrievalResult
	// QueryErr is Query with the store error surfaced.
	QueryErr(ctx context.Context, vec []float32, topK int) ([]models.RetrievalResult, error)
	// Clear drops every chunk, leaving an empty collection with the same configuration.
	Clear(ctx context.Context) error
	// Count returns the number of stored chunks, 0 on failure.
	Count(ctx context.Context) int
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
	Close() error
}

func validateCollection(name string) error {
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, name)
	}
	return nil
}

func validateChunks(chunks []models.Chunk) error {
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: %s", ErrMissingEmbedding, c.ID)
		}
	}
	return nil
}

// cosineDistance returns 1 - cos(a, b). Vectors of different length or with
// zero norm are maximally distant from everything.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return 2
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// nearest sorts results by ascending distance, ties by id, and keeps topK.
func nearest(results []models.RetrievalResult, topK int) []models.RetrievalResult {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}
