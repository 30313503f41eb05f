package rag

import (
	"context"
	"hash/fnv"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode"

	"lecture-rag/internal/database"
	"lecture-rag/internal/embedding"
	"lecture-rag/internal/processor"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testDimension = 64

// wordEmbedder hashes lowercase words into buckets, so identical texts get
// identical vectors and unrelated texts are far apart.
type wordEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (e *wordEmbedder) EmbedOne(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}

	v := make([]float32, testDimension)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%testDimension]++
	}
	return embedding.Normalize(v), nil
}

func (e *wordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.EmbedOne(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *wordEmbedder) Dimension() int { return testDimension }

type stubLLM struct {
	mu       sync.Mutex
	calls    int
	system   string
	user     string
	answer   string
	blocking bool
}

func (s *stubLLM) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.system = systemPrompt
	s.user = userMessage
	s.mu.Unlock()

	if s.blocking {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.answer, nil
}

func (s *stubLLM) Model() string { return "stub" }

func (s *stubLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type pagesExtractor map[string][][]string

func (p pagesExtractor) ExtractPages(_ context.Context, path string) ([][]string, error) {
	return p[filepath.Base(path)], nil
}

func newTestIndex(t *testing.T) *database.SQLiteIndex {
	t.Helper()
	idx, err := database.OpenSQLite(context.Background(), t.TempDir(), "lectures", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func newTestProcessor(pages pagesExtractor) *processor.PDFProcessor {
	p := processor.NewPDFProcessor(512, 100, zap.NewNop())
	p.Extractor = pages
	return p
}
