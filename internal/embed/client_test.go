package embed

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

func TestEmbedBatch_OrderFollowsIndices(t *testing.T) {
	var gotReq embeddingsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		// Respond out of order; the client must reassemble by index.
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"index":1,"embedding":[2,2]},
			{"index":0,"embedding":[1,1]},
			{"index":2,"embedding":[3,3]}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-model", 5*time.Second)
	vectors, err := c.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	assert.Equal(t, "test-model", gotReq.Model)
	assert.Equal(t, []string{"a", "b", "c"}, gotReq.Input)
	require.Len(t, vectors, 3)
	assert.Equal(t, []float64{1, 1}, vectors[0])
	assert.Equal(t, []float64{2, 2}, vectors[1])
	assert.Equal(t, []float64{3, 3}, vectors[2])
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	c := NewClient("http://localhost:1", "m", time.Second)
	vectors, err := c.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestEmbedBatch_ServerErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "missing", 5*time.Second)
	_, err := c.EmbedBatch(context.Background(), []string{"текст"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"index":0,"embedding":[1]}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "m", 5*time.Second)
	_, err := c.EmbedBatch(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2 embeddings")
}

func TestEmbedBatch_UnreachableBackend(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "m", 500*time.Millisecond)
	_, err := c.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err, "transport failures must propagate, not be swallowed")
}

func TestEmbed_SingleText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"index":0,"embedding":[0.5,0.25]}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "m", 5*time.Second)
	v, err := c.Embed(context.Background(), "вопрос")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.25}, v)
}
