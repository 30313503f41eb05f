package rag

import (
	"context"
	"strings"
	"time"

	"lecture-rag/internal/llm"
	"lecture-rag/internal/models"

	"go.uber.org/zap"
)

// Synthesizer writes an answer from the best retrieved chunks
type Synthesizer struct {
	llm            llm.Client
	contextResults int
	timeout        time.Duration
	log            *zap.Logger
}

// NewSynthesizer creates a synthesizer that feeds at most contextResults
// chunks to client and waits at most timeout for its reply.
func NewSynthesizer(client llm.Client, contextResults int, timeout time.Duration, log *zap.Logger) *Synthesizer {
	if contextResults <= 0 {
		contextResults = 3
	}
	return &Synthesizer{llm: client, contextResults: contextResults, timeout: timeout, log: log}
}

// Synthesize asks the model once, grounded on the top results. A model
// failure becomes the answer text; citations are returned either way.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, results []models.RetrievalResult) models.Answer {
	top := results[:min(len(results), s.contextResults)]

	parts := make([]string, 0, len(top))
	citations := make([]models.Citation, 0, len(top))
	for _, r := range top {
		parts = append(parts, r.Text)
		citations = append(citations, models.Citation{
			SourceFile:  r.SourceFile,
			LogicalPage: r.LogicalPage,
			TextPreview: preview(r.Text),
		})
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.log.Info("Generating answer", zap.String("model", s.llm.Model()), zap.Int("context_chunks", len(top)))
	answer, err := s.llm.Complete(ctx, systemPrompt, userMessage(strings.Join(parts, "\n\n"), question))
	if err != nil {
		s.log.Error("LLM request failed", zap.String("model", s.llm.Model()), zap.Error(err))
		answer = llmErrorAnswer(err)
	}

	return models.Answer{
		Answer:    answer,
		Source:    models.SourceLectures,
		Citations: citations,
	}
}
