package rag

import (
	"context"

	"lecture-rag/internal/database"
	"lecture-rag/internal/embedding"
	"lecture-rag/internal/models"

	"go.uber.org/zap"
)

// Outcome tells why a retrieval did or did not produce results
type Outcome int

const (
	OutcomeMatched Outcome = iota
	OutcomeNoResults
	OutcomeBelowThreshold
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeNoResults:
		return "no_results"
	case OutcomeBelowThreshold:
		return "below_threshold"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Retriever finds the chunks nearest to a question
type Retriever struct {
	embedder embedding.Embedder
	index    database.VectorIndex
	log      *zap.Logger
}

// NewRetriever creates a retriever over index
func NewRetriever(embedder embedding.Embedder, index database.VectorIndex, log *zap.Logger) *Retriever {
	return &Retriever{embedder: embedder, index: index, log: log}
}

// Retrieve embeds question and returns up to topK nearest chunks, closest
// first. When the best distance exceeds threshold nothing is returned.
// Embedding and store failures are logged and also yield no results.
func (r *Retriever) Retrieve(ctx context.Context, question string, topK int, threshold float64) ([]models.RetrievalResult, Outcome) {
	vec, err := r.embedder.EmbedOne(ctx, question)
	if err != nil {
		r.log.Error("Failed to embed question", zap.Error(err))
		return nil, OutcomeFailed
	}

	results, err := r.index.QueryErr(ctx, vec, topK)
	if err != nil {
		r.log.Error("Failed to query index", zap.Error(err))
		return nil, OutcomeFailed
	}
	if len(results) == 0 {
		return nil, OutcomeNoResults
	}

	if best := results[0].Distance; best > threshold {
		r.log.Info("Best match exceeds distance threshold",
			zap.Float64("distance", best), zap.Float64("threshold", threshold))
		return nil, OutcomeBelowThreshold
	}

	return results, OutcomeMatched
}
