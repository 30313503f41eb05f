package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lecture-rag/internal/models"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// PageExtractor returns the text lines of every page of a document, in page
// order. A blank page is returned as an empty slice so page positions are kept.
type PageExtractor interface {
	ExtractPages(ctx context.Context, path string) ([][]string, error)
}

// PDFExtractor extracts page lines from PDF files, keeping the visual line
// layout so that a printed page number stays on its own line.
type PDFExtractor struct{}

// ExtractPages reads every page of the PDF at path
func (e PDFExtractor) ExtractPages(ctx context.Context, path string) (pages [][]string, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	// The parser panics on some malformed content streams
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("failed to parse PDF: %v", rec)
		}
	}()

	total := r.NumPage()
	pages = make([][]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, nil)
			continue
		}

		pages = append(pages, layoutLines(page.Content().Text))
	}

	return pages, nil
}

// PDFProcessor turns lecture PDFs into chunks
type PDFProcessor struct {
	ChunkSize    int
	ChunkOverlap int
	Extractor    PageExtractor

	log *zap.Logger
}

// NewPDFProcessor creates a new PDF processor
func NewPDFProcessor(chunkSize, chunkOverlap int, log *zap.Logger) *PDFProcessor {
	return &PDFProcessor{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Extractor:    PDFExtractor{},
		log:          log,
	}
}

// ProcessPDF chunks a single PDF. A document that cannot be read is logged
// and yields no chunks.
func (p *PDFProcessor) ProcessPDF(ctx context.Context, path string) []models.Chunk {
	pages, err := p.Extractor.ExtractPages(ctx, path)
	if err != nil {
		p.log.Error("Failed to parse PDF", zap.String("file", path), zap.Error(err))
		return nil
	}

	chunks := p.chunkPages(filepath.Base(path), pages)
	p.log.Info("Parsed PDF",
		zap.String("file", path),
		zap.Int("pages", len(pages)),
		zap.Int("chunks", len(chunks)))

	return chunks
}

func (p *PDFProcessor) chunkPages(fileName string, pages [][]string) []models.Chunk {
	var chunks []models.Chunk

	for i, lines := range pages {
		physicalPage := i + 1

		if strings.TrimSpace(strings.Join(lines, "\n")) == "" {
			continue
		}

		logicalPage, ok := DetectPageNumber(lines)
		if !ok {
			logicalPage = physicalPage
		}

		// A trailing page number is layout, not content
		if len(lines) > 0 && isPageNumberLine(lines[len(lines)-1]) {
			lines = lines[:len(lines)-1]
		}

		text := strings.Join(lines, "\n")
		if strings.TrimSpace(text) == "" {
			continue
		}

		for chunkIndex, window := range SplitText(text, p.ChunkSize, p.ChunkOverlap) {
			chunks = append(chunks, models.Chunk{
				ID:           ChunkID(fileName, physicalPage, chunkIndex),
				Text:         window,
				SourceFile:   fileName,
				LogicalPage:  logicalPage,
				PhysicalPage: physicalPage,
			})
		}
	}

	return chunks
}

// ChunkID builds the stable identifier of a chunk
func ChunkID(fileName string, physicalPage, chunkIndex int) string {
	return fmt.Sprintf("%s_page%d_chunk%d", fileName, physicalPage, chunkIndex)
}

// ProcessDirectory chunks every PDF in dir. A missing directory or one without
// PDFs is reported as a warning and produces no chunks.
func (p *PDFProcessor) ProcessDirectory(ctx context.Context, dir string) ([]models.Chunk, error) {
	files, err := findPDFs(dir)
	if err != nil {
		p.log.Warn("PDF directory not readable", zap.String("dir", dir), zap.Error(err))
		return nil, nil
	}
	if len(files) == 0 {
		p.log.Warn("No PDF files found", zap.String("dir", dir))
		return nil, nil
	}

	p.log.Info("Found PDF files", zap.String("dir", dir), zap.Int("count", len(files)))

	var all []models.Chunk
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		all = append(all, p.ProcessPDF(ctx, file)...)
	}

	return all, nil
}

func findPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	return files, nil
}
