package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/medgraph/rag"
)

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions"`
}

func embeddingServer(t *testing.T, dim int) (*httptest.Server, *[]embeddingRequest) {
	t.Helper()
	var seen []embeddingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req embeddingRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		seen = append(seen, req)

		data := make([]map[string]any, len(req.Input))
		for i := range req.Input {
			v := make([]float32, dim)
			v[i%dim] = 1
			data[i] = map[string]any{"object": "embedding", "index": i, "embedding": v}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data, "model": req.Model})
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestNewEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("mock by default", func(t *testing.T) {
		e, err := NewEmbedder(rag.EmbedderConfig{})
		require.NoError(t, err)
		assert.IsType(t, &MockEmbedder{}, e)
		assert.Equal(t, 64, e.GetDimension())

		e, err = NewEmbedder(rag.EmbedderConfig{Provider: EmbedderMock, Dimension: 8})
		require.NoError(t, err)
		assert.Equal(t, 8, e.GetDimension())
	})

	t.Run("openai compatible endpoint", func(t *testing.T) {
		srv, seen := embeddingServer(t, 4)
		e, err := NewEmbedder(rag.EmbedderConfig{
			Provider:  EmbedderOpenAI,
			Model:     "text-embedding-3-small",
			BaseURL:   srv.URL,
			APIKey:    "secret",
			Dimension: 4,
		})
		require.NoError(t, err)
		assert.IsType(t, &rag.LangChainEmbedder{}, e)

		vs, err := e.EmbedDocuments(ctx, []string{"fever", "asthma"})
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}}, vs)
		assert.Equal(t, 4, e.GetDimension())

		require.NotEmpty(t, *seen)
		assert.Equal(t, "text-embedding-3-small", (*seen)[0].Model)
		assert.Equal(t, 4, (*seen)[0].Dimensions)
		assert.Equal(t, []string{"fever", "asthma"}, (*seen)[0].Input)
	})

	t.Run("feeds the vector store", func(t *testing.T) {
		srv, _ := embeddingServer(t, 3)
		e, err := NewEmbedder(rag.EmbedderConfig{Provider: EmbedderOpenAI, BaseURL: srv.URL, APIKey: "secret"})
		require.NoError(t, err)

		vs := NewInMemoryVectorStore(e)
		require.NoError(t, vs.Add(ctx, []rag.Document{
			{ID: "a", Content: "fever is treated with aspirin"},
			{ID: "b", Content: "asthma affects the lungs"},
		}))
		assert.Equal(t, 2, vs.Len())

		q, err := e.EmbedDocument(ctx, "what treats fever")
		require.NoError(t, err)
		res, err := vs.Search(ctx, q, 1)
		require.NoError(t, err)
		require.Len(t, res, 1)
		assert.Equal(t, "a", res[0].Document.ID)
	})

	t.Run("missing key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		_, err := NewEmbedder(rag.EmbedderConfig{Provider: EmbedderOpenAI})
		assert.ErrorIs(t, err, rag.ErrInvalidConfig)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewEmbedder(rag.EmbedderConfig{Provider: "word2vec"})
		assert.ErrorIs(t, err, rag.ErrInvalidConfig)
	})
}
