package rag

import (
	"context"
	"errors"
	"strings"

	"lecture-rag/internal/database"
	"lecture-rag/internal/models"

	"go.uber.org/zap"
)

// ErrEmptyQuestion is returned by Ask for a blank question
var ErrEmptyQuestion = errors.New("question is empty")

// ServiceConfig holds the retrieval settings of a Service
type ServiceConfig struct {
	TopK              int
	DistanceThreshold float64
	ChunkSize         int
}

// Service answers questions about the indexed lecture notes
type Service struct {
	retriever   *Retriever
	synthesizer *Synthesizer
	index       database.VectorIndex
	cfg         ServiceConfig
	log         *zap.Logger
}

// NewService wires a retriever and a synthesizer over index
func NewService(retriever *Retriever, synthesizer *Synthesizer, index database.VectorIndex,
	cfg ServiceConfig, log *zap.Logger) *Service {
	return &Service{
		retriever:   retriever,
		synthesizer: synthesizer,
		index:       index,
		cfg:         cfg,
		log:         log,
	}
}

// Ask answers question from the lecture notes. The model is only called when
// retrieval found a close enough chunk.
func (s *Service) Ask(ctx context.Context, question string) (models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return models.Answer{}, ErrEmptyQuestion
	}

	s.log.Info("Question received", zap.String("question", question))

	results, outcome := s.retriever.Retrieve(ctx, question, s.cfg.TopK, s.cfg.DistanceThreshold)
	switch outcome {
	case OutcomeNoResults, OutcomeFailed:
		s.log.Info("No results found", zap.Stringer("outcome", outcome))
		return models.Answer{
			Answer:    NoResultsAnswer,
			Source:    models.SourceError,
			Citations: []models.Citation{},
		}, nil
	case OutcomeBelowThreshold:
		return models.Answer{
			Answer:    NotFoundAnswer,
			Source:    models.SourceError,
			Citations: []models.Citation{},
		}, nil
	}

	return s.synthesizer.Synthesize(ctx, question, results), nil
}

// Stats reports the index size and retrieval settings
func (s *Service) Stats(ctx context.Context) models.Stats {
	return models.Stats{
		TotalChunks:   s.index.Count(ctx),
		ChunkSize:     s.cfg.ChunkSize,
		RetrievalTopK: s.cfg.TopK,
	}
}

// Ready reports whether the index store can be reached
func (s *Service) Ready(ctx context.Context) error {
	return s.index.Ping(ctx)
}
