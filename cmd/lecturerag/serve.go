package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lecture-rag/internal/server"
	"lecture-rag/internal/tracer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the question-answering HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "port to listen on (default APP_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer := tracer.InitTracer(ctx, cfg.Tracing.Enabled, cfg.Tracing.Endpoint, log)
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	index, err := openIndex(ctx)
	if err != nil {
		return err
	}
	defer index.Close()

	service, err := newService(index)
	if err != nil {
		return err
	}

	port := servePort
	if port == "" {
		port = cfg.App.Port
	}

	srv := server.New(service, cfg.App.CorsAllowedOrigins, log)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Index ready", zap.Int("chunks", index.Count(ctx)), zap.String("store", cfg.Index.Store))
	return srv.Run(port)
}
