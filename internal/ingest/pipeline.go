// Package ingest runs the per-file ingestion pipeline:
// store -> extract -> chunk -> embed -> index.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/mkaranin/docask/internal/chunker"
	"github.com/mkaranin/docask/internal/extract"
	"github.com/mkaranin/docask/internal/index"
)

// Embedder converts chunk texts into vectors in one batch call.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)
}

// Indexer appends chunk entries to the vector index.
type Indexer interface {
	Add(ctx context.Context, entries []index.Entry) error
}

// DocStore persists raw uploads and removes them on failure.
type DocStore interface {
	Save(data []byte, ext string) (string, error)
	Remove(name string) error
}

var (
	errEmptyText = errors.New("empty or unreadable text")
	errNoChunks  = errors.New("no chunks produced")
)

// UploadedFile is one file from a multipart upload.
type UploadedFile struct {
	Name string
	Data []byte
}

// Result summarizes one upload batch. Errors holds human-readable
// per-file failure descriptions in upload order, nil when all succeeded.
type Result struct {
	SuccessCount int      `json:"success_count"`
	TotalFiles   int      `json:"total_files"`
	Errors       []string `json:"errors"`
}

// Pipeline orchestrates document ingestion.
type Pipeline struct {
	store     DocStore
	embedder  Embedder
	index     Indexer
	chunkSize int
	log       *slog.Logger
}

func New(store DocStore, embedder Embedder, ix Indexer, chunkSize int, log *slog.Logger) *Pipeline {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultMaxChars
	}
	return &Pipeline{
		store:     store,
		embedder:  embedder,
		index:     ix,
		chunkSize: chunkSize,
		log:       log,
	}
}

// Process ingests each uploaded file independently: one file's failure
// never aborts its siblings, and a failed file leaves nothing behind on
// disk or in the index.
func (p *Pipeline) Process(ctx context.Context, files []UploadedFile) Result {
	res := Result{TotalFiles: len(files)}

	for _, f := range files {
		if !extract.IsSupported(f.Name) {
			res.Errors = append(res.Errors, fmt.Sprintf("%s (неподдерживаемый формат)", f.Name))
			continue
		}

		if err := p.processFile(ctx, f); err != nil {
			res.Errors = append(res.Errors, describeFailure(f.Name, err))
			continue
		}
		res.SuccessCount++
	}

	return res
}

// processFile runs steps 2-7 for a single file. Panics are converted to
// errors here so an unexpected failure stays confined to its file.
func (p *Pipeline) processFile(ctx context.Context, f UploadedFile) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("panic during ingestion", "file", f.Name, "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	ext := strings.ToLower(filepath.Ext(f.Name))
	stored, err := p.store.Save(f.Data, ext)
	if err != nil {
		return err
	}

	text, err := extract.Text(f.Data, f.Name)
	if err != nil {
		p.log.Warn("text extraction failed", "file", f.Name, "error", err)
		text = ""
	}
	if strings.TrimSpace(text) == "" {
		p.cleanup(stored, f.Name)
		return errEmptyText
	}

	chunks := chunker.Split(text, p.chunkSize)
	if len(chunks) == 0 {
		p.cleanup(stored, f.Name)
		return errNoChunks
	}

	vectors, err := p.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		p.cleanup(stored, f.Name)
		return err
	}
	if len(vectors) != len(chunks) {
		p.cleanup(stored, f.Name)
		return fmt.Errorf("expected %d vectors, got %d", len(chunks), len(vectors))
	}

	entries := make([]index.Entry, len(chunks))
	for i := range chunks {
		entries[i] = index.Entry{
			ID:     uuid.New().String(),
			Vector: vectors[i],
			Text:   chunks[i],
			Source: f.Name,
		}
	}
	if err := p.index.Add(ctx, entries); err != nil {
		p.cleanup(stored, f.Name)
		return err
	}

	p.log.Info("document ingested", "file", f.Name, "stored_as", stored, "chunks", len(chunks))
	return nil
}

func (p *Pipeline) cleanup(stored, original string) {
	if err := p.store.Remove(stored); err != nil {
		p.log.Warn("failed to remove stored document", "file", original, "stored_as", stored, "error", err)
	}
}

// describeFailure maps a per-file error to the user-facing message
// recorded in the batch error list.
func describeFailure(name string, err error) string {
	switch {
	case errors.Is(err, errEmptyText):
		return fmt.Sprintf("%s (пустой или нечитаемый)", name)
	case errors.Is(err, errNoChunks):
		return fmt.Sprintf("%s (не удалось разбить на фрагменты)", name)
	default:
		return fmt.Sprintf("%s (ошибка: %s...)", name, truncate(err.Error(), 50))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
