package main

import (
	"context"
	"fmt"

	"lecture-rag/internal/config"
	"lecture-rag/internal/database"
	"lecture-rag/internal/embedding"
	"lecture-rag/internal/llm"
	"lecture-rag/internal/logger"
	"lecture-rag/internal/processor"
	"lecture-rag/internal/rag"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lecturerag",
	Short: "Answer questions from lecture notes",
	Long: `Indexes lecture PDFs into a vector store and answers questions
grounded in the indexed notes, citing file and page.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		log = logger.New(logger.Options{
			FilePath:   cfg.App.LogFilePath,
			Production: cfg.IsProduction(),
		})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// openIndex opens the configured collection
func openIndex(ctx context.Context) (database.VectorIndex, error) {
	if cfg.Index.Store == config.StorePostgres {
		index, err := database.OpenPostgres(ctx, cfg.Index.DatabaseURL, cfg.Index.CollectionName, cfg.Embedding.Dimension, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres index: %w", err)
		}
		return index, nil
	}

	index, err := database.OpenSQLite(ctx, cfg.Index.Path, cfg.Index.CollectionName, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite index: %w", err)
	}
	return index, nil
}

func newEmbedder() (*embedding.OllamaEmbedder, error) {
	embedder, err := embedding.NewOllamaEmbedder(cfg.Embedding.OllamaHost, cfg.Embedding.Model, cfg.Embedding.Dimension)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	embedder.BatchSize = cfg.Embedding.BatchSize
	embedder.MaxConcurrent = cfg.Embedding.MaxConcurrent
	return embedder, nil
}

func newIndexer(index database.VectorIndex) (*rag.Indexer, error) {
	embedder, err := newEmbedder()
	if err != nil {
		return nil, err
	}
	p := processor.NewPDFProcessor(cfg.Index.ChunkSize, cfg.Index.ChunkOverlap, log)
	return rag.NewIndexer(p, embedder, index, log), nil
}

func newService(index database.VectorIndex) (*rag.Service, error) {
	embedder, err := newEmbedder()
	if err != nil {
		return nil, err
	}

	llmClient, err := llm.NewClient(llm.Options{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		Host:        cfg.Embedding.OllamaHost,
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	retriever := rag.NewRetriever(embedding.NewCachedEmbedder(embedder, cfg.Embedding.CacheTTL), index, log)
	synthesizer := rag.NewSynthesizer(llmClient, cfg.Retrieval.ContextResults, cfg.LLM.Timeout, log)

	return rag.NewService(retriever, synthesizer, index, rag.ServiceConfig{
		TopK:              cfg.Retrieval.TopK,
		DistanceThreshold: cfg.Retrieval.DistanceThreshold,
		ChunkSize:         cfg.Index.ChunkSize,
	}, log), nil
}
