package rag

import (
	"context"
	"fmt"
	"time"

	"lecture-rag/internal/database"
	"lecture-rag/internal/embedding"
	"lecture-rag/internal/processor"

	"go.uber.org/zap"
)

type progressEmbedder interface {
	EmbedBatchWithProgress(ctx context.Context, texts []string, progressFunc func(processed, total int)) ([][]float32, error)
}

// Indexer loads a directory of lecture PDFs into the vector index
type Indexer struct {
	processor *processor.PDFProcessor
	embedder  embedding.Embedder
	index     database.VectorIndex
	log       *zap.Logger

	UpsertBatchSize int
}

// NewIndexer creates an indexing job
func NewIndexer(p *processor.PDFProcessor, embedder embedding.Embedder, index database.VectorIndex, log *zap.Logger) *Indexer {
	return &Indexer{
		processor:       p,
		embedder:        embedder,
		index:           index,
		log:             log,
		UpsertBatchSize: 100,
	}
}

// IndexDirectory chunks, embeds and stores every PDF in dir and returns the
// number of chunks written.
func (ix *Indexer) IndexDirectory(ctx context.Context, dir string) (int, error) {
	chunks, err := ix.processor.ProcessDirectory(ctx, dir)
	if err != nil {
		return 0, fmt.Errorf("failed to process %s: %w", dir, err)
	}
	if len(chunks) == 0 {
		ix.log.Warn("No chunks to index", zap.String("dir", dir))
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	ix.log.Info("Generating embeddings", zap.Int("chunks", len(texts)))
	vectors, err := ix.embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(vectors))
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	batchSize := max(ix.UpsertBatchSize, 1)
	for start := 0; start < len(chunks); start += batchSize {
		end := min(start+batchSize, len(chunks))
		if err := ix.index.Upsert(ctx, chunks[start:end]); err != nil {
			return start, fmt.Errorf("failed to store chunks %d-%d: %w", start, end-1, err)
		}
		ix.log.Info("Stored chunks", zap.Int("stored", end), zap.Int("total", len(chunks)))
	}

	return len(chunks), nil
}

func (ix *Indexer) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if pe, ok := ix.embedder.(progressEmbedder); ok {
		start := time.Now()
		return pe.EmbedBatchWithProgress(ctx, texts, func(processed, total int) {
			elapsed := time.Since(start)
			remaining := elapsed*time.Duration(total)/time.Duration(processed) - elapsed
			ix.log.Info("Embedding progress",
				zap.Int("processed", processed),
				zap.Int("total", total),
				zap.Duration("remaining", remaining.Round(time.Second)))
		})
	}
	return ix.embedder.EmbedBatch(ctx, texts)
}

// Clear removes every chunk from the index
func (ix *Indexer) Clear(ctx context.Context) error {
	if err := ix.index.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	ix.log.Info("Index cleared")
	return nil
}

// Count returns the number of chunks in the index
func (ix *Indexer) Count(ctx context.Context) int {
	return ix.index.Count(ctx)
}
