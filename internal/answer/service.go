// Package answer runs the retrieval pipeline for a question: embed,
// retrieve nearest chunks, assemble context, generate.
package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mkaranin/docask/internal/index"
)

// Fixed user-facing answers for the two non-error empty outcomes.
const (
	EmptyKnowledgeBase = "База знаний пуста. Загрузите документы."
	NothingFound       = "Ничего не найдено."
)

// Embedder converts the question into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Searcher retrieves nearest chunks from the vector index.
type Searcher interface {
	IsEmpty(ctx context.Context) (bool, error)
	Query(ctx context.Context, vector []float64, k int) ([]index.Hit, error)
}

// Generator produces answer text from context and question.
// It returns text unconditionally; backend failures arrive as
// descriptive strings, not errors.
type Generator interface {
	Generate(ctx context.Context, contextBlock, question string) string
}

// Response is the query result. Question and Sources are omitted for
// the fixed empty-knowledge-base and nothing-found answers.
type Response struct {
	Question string   `json:"question,omitempty"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources,omitempty"`
}

// Service answers questions against the ingested knowledge base.
type Service struct {
	embedder Embedder
	index    Searcher
	llm      Generator
	topK     int
	log      *slog.Logger
}

func New(embedder Embedder, ix Searcher, llm Generator, topK int, log *slog.Logger) *Service {
	if topK <= 0 {
		topK = 3
	}
	return &Service{
		embedder: embedder,
		index:    ix,
		llm:      llm,
		topK:     topK,
		log:      log,
	}
}

// Ask answers a non-empty question. The caller validates the question;
// an error here means an infrastructure failure (embedding or index),
// not an empty retrieval.
func (s *Service) Ask(ctx context.Context, question string) (Response, error) {
	empty, err := s.index.IsEmpty(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("check index: %w", err)
	}
	if empty {
		return Response{Answer: EmptyKnowledgeBase}, nil
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return Response{}, fmt.Errorf("embed question: %w", err)
	}

	hits, err := s.index.Query(ctx, vector, s.topK)
	if err != nil {
		return Response{}, fmt.Errorf("query index: %w", err)
	}
	if len(hits) == 0 {
		return Response{Answer: NothingFound}, nil
	}

	contextBlock := assembleContext(hits)
	ans := s.llm.Generate(ctx, contextBlock, question)

	s.log.Info("question answered", "chunks", len(hits))

	return Response{
		Question: question,
		Answer:   ans,
		Sources:  dedupSources(hits),
	}, nil
}

// assembleContext concatenates retrieved chunks, each prefixed with its
// source label, most similar first as returned by the index.
func assembleContext(hits []index.Hit) string {
	parts := make([]string, len(hits))
	for i, h := range hits {
		parts[i] = fmt.Sprintf("[Источник: %s]\n%s", h.Source, h.Text)
	}
	return strings.Join(parts, "\n\n")
}

// dedupSources returns each contributing source filename once.
func dedupSources(hits []index.Hit) []string {
	seen := make(map[string]bool, len(hits))
	var sources []string
	for _, h := range hits {
		if !seen[h.Source] {
			seen[h.Source] = true
			sources = append(sources, h.Source)
		}
	}
	return sources
}
