package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Success(t *testing.T) {
	var gotReq generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(`{"response":"  Ответ из контекста.  "}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "qwen2.5:0.5b", 0.2, 5*time.Second)
	got := c.Generate(context.Background(), "[Источник: a.txt]\nконтекст", "вопрос?")

	assert.Equal(t, "Ответ из контекста.", got)
	assert.Equal(t, "qwen2.5:0.5b", gotReq.Model)
	assert.False(t, gotReq.Stream)
	assert.InDelta(t, 0.2, gotReq.Options.Temperature, 1e-9)
	assert.Contains(t, gotReq.Prompt, "[Источник: a.txt]\nконтекст")
	assert.Contains(t, gotReq.Prompt, "Вопрос: вопрос?")
	assert.Contains(t, gotReq.Prompt, "В загруженных документах ответ не найден.")
}

func TestGenerate_UnreachableBackendReturnsAnswerText(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "m", 0.2, 500*time.Millisecond)
	got := c.Generate(context.Background(), "контекст", "вопрос")
	assert.Contains(t, got, "Ошибка: Ollama не отвечает")
}

func TestGenerate_ServerErrorReturnsAnswerText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "m", 0.2, 5*time.Second)
	got := c.Generate(context.Background(), "контекст", "вопрос")
	assert.Contains(t, got, "Ошибка: Ollama не отвечает")
}

func TestGenerate_EmptyResponseField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "m", 0.2, 5*time.Second)
	assert.Equal(t, "Ошибка генерации.", c.Generate(context.Background(), "к", "в"))
}

func TestGenerate_TimeoutIsBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "m", 0.2, 100*time.Millisecond)
	start := time.Now()
	got := c.Generate(context.Background(), "к", "в")
	assert.Less(t, time.Since(start), time.Second, "generation must fail rather than hang")
	assert.Contains(t, got, "Ошибка: Ollama не отвечает")
}
