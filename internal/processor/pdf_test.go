package processor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeExtractor serves canned pages keyed by file name
type fakeExtractor struct {
	pages map[string][][]string
	errs  map[string]error
	calls []string
}

func (f *fakeExtractor) ExtractPages(_ context.Context, path string) ([][]string, error) {
	name := filepath.Base(path)
	f.calls = append(f.calls, name)
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	return f.pages[name], nil
}

func newTestProcessor(ex PageExtractor) *PDFProcessor {
	p := NewPDFProcessor(512, 100, zap.NewNop())
	p.Extractor = ex
	return p
}

func TestProcessPDF_RecoversPrintedPageNumber(t *testing.T) {
	ex := &fakeExtractor{pages: map[string][][]string{
		"notes.pdf": {
			{"Gradient descent minimizes a loss function.", "", "5"},
		},
	}}
	p := newTestProcessor(ex)

	chunks := p.ProcessPDF(context.Background(), "/corpus/notes.pdf")

	require.Len(t, chunks, 1)
	c := chunks[0]
	assert.Equal(t, "notes.pdf_page1_chunk0", c.ID)
	assert.Equal(t, "notes.pdf", c.SourceFile)
	assert.Equal(t, 5, c.LogicalPage)
	assert.Equal(t, 1, c.PhysicalPage)
	assert.Equal(t, "Gradient descent minimizes a loss function.\n", c.Text)
	assert.NotContains(t, c.Text, "5")
	assert.Nil(t, c.Embedding)
}

func TestProcessPDF_FallsBackToPhysicalPage(t *testing.T) {
	ex := &fakeExtractor{pages: map[string][][]string{
		"a.pdf": {
			{"cover"},
			nil,
			{"   ", ""},
			{"third page body"},
		},
	}}
	p := newTestProcessor(ex)

	chunks := p.ProcessPDF(context.Background(), "a.pdf")

	require.Len(t, chunks, 2)
	assert.Equal(t, "a.pdf_page1_chunk0", chunks[0].ID)
	assert.Equal(t, 1, chunks[0].LogicalPage)
	assert.Equal(t, "a.pdf_page4_chunk0", chunks[1].ID)
	assert.Equal(t, 4, chunks[1].LogicalPage)
	assert.Equal(t, 4, chunks[1].PhysicalPage)
}

func TestProcessPDF_PageWithOnlyANumberIsSkipped(t *testing.T) {
	ex := &fakeExtractor{pages: map[string][][]string{
		"a.pdf": {{"12"}},
	}}
	p := newTestProcessor(ex)

	assert.Empty(t, p.ProcessPDF(context.Background(), "a.pdf"))
}

func TestProcessPDF_SequentialChunkIndexes(t *testing.T) {
	ex := &fakeExtractor{pages: map[string][][]string{
		"a.pdf": {{"abcdefghij"}},
	}}
	p := newTestProcessor(ex)
	p.ChunkSize = 4
	p.ChunkOverlap = 0

	chunks := p.ProcessPDF(context.Background(), "a.pdf")

	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, ChunkID("a.pdf", 1, i), c.ID)
	}
}

func TestProcessPDF_IDsAreStableAcrossRuns(t *testing.T) {
	ex := &fakeExtractor{pages: map[string][][]string{
		"a.pdf": {{"one"}, {"two", "3"}},
	}}
	p := newTestProcessor(ex)

	first := p.ProcessPDF(context.Background(), "a.pdf")
	second := p.ProcessPDF(context.Background(), "a.pdf")

	assert.Equal(t, first, second)
}

func TestProcessPDF_UnreadableDocument(t *testing.T) {
	ex := &fakeExtractor{errs: map[string]error{"bad.pdf": errors.New("malformed xref")}}
	p := newTestProcessor(ex)

	assert.Empty(t, p.ProcessPDF(context.Background(), "bad.pdf"))
}

func TestPDFExtractor_MissingFile(t *testing.T) {
	_, err := PDFExtractor{}.ExtractPages(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestPDFExtractor_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not a pdf"), 0o600))

	_, err := PDFExtractor{}.ExtractPages(context.Background(), path)
	assert.Error(t, err)
}

func TestProcessDirectory_ContinuesPastBadFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.PDF", "bad.pdf", "readme.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte{}, 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.pdf"), 0o700))

	ex := &fakeExtractor{
		pages: map[string][][]string{
			"a.PDF": {{"alpha"}},
			"b.pdf": {{"beta", "2"}},
		},
		errs: map[string]error{"bad.pdf": errors.New("broken")},
	}
	p := newTestProcessor(ex)

	chunks, err := p.ProcessDirectory(context.Background(), dir)

	require.NoError(t, err)
	assert.Equal(t, []string{"a.PDF", "b.pdf", "bad.pdf"}, ex.calls)
	require.Len(t, chunks, 2)
	assert.Equal(t, "a.PDF", chunks[0].SourceFile)
	assert.Equal(t, "b.pdf", chunks[1].SourceFile)
	assert.Equal(t, 2, chunks[1].LogicalPage)
}

func TestProcessDirectory_MissingDirectory(t *testing.T) {
	p := newTestProcessor(&fakeExtractor{})

	chunks, err := p.ProcessDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"))

	assert.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestProcessDirectory_NoPDFs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	p := newTestProcessor(&fakeExtractor{})

	chunks, err := p.ProcessDirectory(context.Background(), dir)

	assert.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestProcessDirectory_Cancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte{}, 0o600))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newTestProcessor(&fakeExtractor{})

	_, err := p.ProcessDirectory(ctx, dir)

	assert.ErrorIs(t, err, context.Canceled)
}
