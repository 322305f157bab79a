package retriever

import (
	"context"
	"fmt"

	"github.com/smallnest/medgraph/rag"
)

// VectorStore stores embedded documents and searches them by vector.
type VectorStore interface {
	Add(ctx context.Context, documents []rag.Document) error
	Search(ctx context.Context, queryEmbedding []float32, k int) ([]rag.DocumentSearchResult, error)
}

// VectorRetriever implements document retrieval using vector similarity
type VectorRetriever struct {
	vectorStore    VectorStore
	embedder       rag.Embedder
	scoreThreshold float64
}

var _ rag.VectorSearcher = (*VectorRetriever)(nil)

// VectorOption configures a VectorRetriever.
type VectorOption func(*VectorRetriever)

// WithScoreThreshold drops results scoring below min.
func WithScoreThreshold(min float64) VectorOption {
	return func(r *VectorRetriever) { r.scoreThreshold = min }
}

// NewVectorRetriever creates a new vector retriever
func NewVectorRetriever(vectorStore VectorStore, embedder rag.Embedder, opts ...VectorOption) *VectorRetriever {
	r := &VectorRetriever{vectorStore: vectorStore, embedder: embedder}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Index embeds chunks and adds them to the store. Each document records its
// position in chunk_index.
func (r *VectorRetriever) Index(ctx context.Context, chunks []string) error {
	if len(chunks) == 0 {
		return nil
	}
	embs, err := r.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embs) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(embs), len(chunks))
	}

	docs := make([]rag.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = rag.Document{
			ID:        fmt.Sprintf("chunk-%d", i),
			Content:   chunk,
			Metadata:  map[string]any{"chunk_index": i},
			Embedding: embs[i],
		}
	}
	return r.vectorStore.Add(ctx, docs)
}

// Search returns the content of the k documents closest to query, best first.
func (r *VectorRetriever) Search(ctx context.Context, query string, k int) ([]string, error) {
	emb, err := r.embedder.EmbedDocument(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	results, err := r.vectorStore.Search(ctx, emb, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	texts := make([]string, 0, len(results))
	for _, res := range results {
		if res.Score < r.scoreThreshold {
			continue
		}
		texts = append(texts, res.Document.Content)
	}
	return texts, nil
}
