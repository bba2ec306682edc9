package answer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkaranin/docask/internal/index"
)

type fakeEmbedder struct {
	vector []float64
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float64, error) {
	f.calls++
	return f.vector, f.err
}

type fakeSearcher struct {
	empty    bool
	hits     []index.Hit
	queryErr error
	queries  int
}

func (f *fakeSearcher) IsEmpty(context.Context) (bool, error) { return f.empty, nil }

func (f *fakeSearcher) Query(context.Context, []float64, int) ([]index.Hit, error) {
	f.queries++
	return f.hits, f.queryErr
}

type fakeGenerator struct {
	answer   string
	gotCtx   string
	gotQuery string
	calls    int
}

func (f *fakeGenerator) Generate(_ context.Context, contextBlock, question string) string {
	f.calls++
	f.gotCtx = contextBlock
	f.gotQuery = question
	return f.answer
}

func newTestService(emb *fakeEmbedder, ix *fakeSearcher, gen *fakeGenerator) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(emb, ix, gen, 3, log)
}

func TestAsk_EmptyKnowledgeBaseShortCircuits(t *testing.T) {
	emb := &fakeEmbedder{}
	ix := &fakeSearcher{empty: true}
	gen := &fakeGenerator{}

	resp, err := newTestService(emb, ix, gen).Ask(context.Background(), "что такое тест?")
	require.NoError(t, err)

	assert.Equal(t, EmptyKnowledgeBase, resp.Answer)
	assert.Empty(t, resp.Question)
	assert.Empty(t, resp.Sources)
	assert.Zero(t, emb.calls, "embedding must not run against an empty knowledge base")
	assert.Zero(t, ix.queries)
	assert.Zero(t, gen.calls)
}

func TestAsk_NoMatches(t *testing.T) {
	emb := &fakeEmbedder{vector: []float64{1}}
	ix := &fakeSearcher{hits: nil}
	gen := &fakeGenerator{}

	resp, err := newTestService(emb, ix, gen).Ask(context.Background(), "вопрос")
	require.NoError(t, err)

	assert.Equal(t, NothingFound, resp.Answer)
	assert.Zero(t, gen.calls)
}

func TestAsk_AssemblesContextInRankedOrder(t *testing.T) {
	emb := &fakeEmbedder{vector: []float64{1}}
	ix := &fakeSearcher{hits: []index.Hit{
		{Text: "первый фрагмент", Source: "a.txt", Score: 0.9},
		{Text: "второй фрагмент", Source: "b.pdf", Score: 0.7},
	}}
	gen := &fakeGenerator{answer: "сгенерированный ответ"}

	resp, err := newTestService(emb, ix, gen).Ask(context.Background(), "как дела?")
	require.NoError(t, err)

	wantCtx := "[Источник: a.txt]\nпервый фрагмент\n\n[Источник: b.pdf]\nвторой фрагмент"
	assert.Equal(t, wantCtx, gen.gotCtx)
	assert.Equal(t, "как дела?", gen.gotQuery)

	assert.Equal(t, "как дела?", resp.Question)
	assert.Equal(t, "сгенерированный ответ", resp.Answer)
	assert.Equal(t, []string{"a.txt", "b.pdf"}, resp.Sources)
}

func TestAsk_DeduplicatesSources(t *testing.T) {
	emb := &fakeEmbedder{vector: []float64{1}}
	ix := &fakeSearcher{hits: []index.Hit{
		{Text: "фрагмент 1", Source: "manual.pdf"},
		{Text: "фрагмент 2", Source: "manual.pdf"},
		{Text: "фрагмент 3", Source: "faq.md"},
	}}
	gen := &fakeGenerator{answer: "ответ"}

	resp, err := newTestService(emb, ix, gen).Ask(context.Background(), "вопрос")
	require.NoError(t, err)

	assert.Len(t, resp.Sources, 2)
	assert.ElementsMatch(t, []string{"manual.pdf", "faq.md"}, resp.Sources)
}

func TestAsk_GatewayErrorStringIsStillAnAnswer(t *testing.T) {
	emb := &fakeEmbedder{vector: []float64{1}}
	ix := &fakeSearcher{hits: []index.Hit{{Text: "фрагмент", Source: "doc.txt"}}}
	gen := &fakeGenerator{answer: "Ошибка: Ollama не отвечает. Запущен ли он? (connection refused)"}

	resp, err := newTestService(emb, ix, gen).Ask(context.Background(), "вопрос")
	require.NoError(t, err)
	assert.Contains(t, resp.Answer, "Ollama не отвечает")
	assert.Equal(t, []string{"doc.txt"}, resp.Sources)
}

func TestAsk_EmbeddingFailurePropagates(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("embedding backend down")}
	ix := &fakeSearcher{}
	gen := &fakeGenerator{}

	_, err := newTestService(emb, ix, gen).Ask(context.Background(), "вопрос")
	require.Error(t, err)
	assert.Zero(t, gen.calls)
}

func TestAsk_QueryFailurePropagates(t *testing.T) {
	emb := &fakeEmbedder{vector: []float64{1}}
	ix := &fakeSearcher{queryErr: errors.New("index corrupt")}
	gen := &fakeGenerator{}

	_, err := newTestService(emb, ix, gen).Ask(context.Background(), "вопрос")
	require.Error(t, err)
}
