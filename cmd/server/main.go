package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mkaranin/docask/internal/answer"
	"github.com/mkaranin/docask/internal/api"
	"github.com/mkaranin/docask/internal/config"
	"github.com/mkaranin/docask/internal/docstore"
	"github.com/mkaranin/docask/internal/embed"
	"github.com/mkaranin/docask/internal/index"
	"github.com/mkaranin/docask/internal/ingest"
	"github.com/mkaranin/docask/internal/llm"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize storage.
	docs, err := docstore.New(cfg.DocDir)
	if err != nil {
		log.Error("document store init failed", "error", err)
		os.Exit(1)
	}
	ix, err := index.Open(cfg.IndexDir)
	if err != nil {
		log.Error("vector index init failed", "error", err)
		os.Exit(1)
	}

	// Initialize gateway clients.
	embedder := embed.NewClient(cfg.EmbedBaseURL, cfg.EmbedModel, cfg.EmbedTimeout)
	generator := llm.NewClient(cfg.OllamaURL, cfg.GenModel, cfg.GenTemperature, cfg.GenTimeout)

	// Initialize pipelines.
	pipeline := ingest.New(docs, embedder, ix, cfg.ChunkSize, log)
	answers := answer.New(embedder, ix, generator, cfg.TopK, log)

	// Initialize HTTP server.
	srv := api.NewServer(pipeline, answers, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.GenTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		embedder.Close()
		generator.Close()
		ix.Close()
	}()

	log.Info("starting docask", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
