package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	indexPDFDir string
	indexClear  bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index lecture PDFs",
	Long: `Chunks every PDF in the directory, embeds the chunks and stores them
in the vector index. With --clear the index is emptied and nothing is read.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexPDFDir, "pdf-dir", "", "directory with lecture PDFs (default PDF_DIR)")
	indexCmd.Flags().BoolVar(&indexClear, "clear", false, "clear the index and exit")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	index, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer index.Close()

	indexer, err := newIndexer(index)
	if err != nil {
		return err
	}

	if indexClear {
		if err := indexer.Clear(ctx); err != nil {
			return err
		}
		cmd.Println("Index cleared")
		return nil
	}

	dir := indexPDFDir
	if dir == "" {
		dir = cfg.Index.PDFDir
	}

	log.Info("Indexing lecture PDFs", zap.String("dir", dir))
	startTime := time.Now()

	n, err := indexer.IndexDirectory(ctx, dir)
	if err != nil {
		return err
	}

	log.Info("Indexing complete", zap.Int("chunks", n), zap.Duration("elapsed", time.Since(startTime)))
	cmd.Printf("Indexed %d chunks, total in index: %d\n", n, indexer.Count(ctx))
	return nil
}
