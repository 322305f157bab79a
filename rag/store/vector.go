package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/smallnest/medgraph/rag"
)

// InMemoryVectorStore is a simple in-memory vector store implementation
type InMemoryVectorStore struct {
	mu         sync.RWMutex
	documents  []rag.Document
	embeddings [][]float32
	embedder   rag.Embedder
}

// NewInMemoryVectorStore creates a new InMemoryVectorStore
func NewInMemoryVectorStore(embedder rag.Embedder) *InMemoryVectorStore {
	return &InMemoryVectorStore{embedder: embedder}
}

// Add embeds documents that carry no embedding and stores them.
func (s *InMemoryVectorStore) Add(ctx context.Context, documents []rag.Document) error {
	embs := make([][]float32, len(documents))
	var missing []int
	var texts []string
	for i, doc := range documents {
		if len(doc.Embedding) > 0 {
			embs[i] = doc.Embedding
			continue
		}
		missing = append(missing, i)
		texts = append(texts, doc.Content)
	}

	if len(missing) > 0 {
		if s.embedder == nil {
			return fmt.Errorf("no embedder configured and %d documents have no embedding", len(missing))
		}
		vecs, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed documents: %w", err)
		}
		if len(vecs) != len(missing) {
			return fmt.Errorf("embedder returned %d vectors for %d documents", len(vecs), len(missing))
		}
		for j, i := range missing {
			embs[i] = vecs[j]
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = append(s.documents, documents...)
	s.embeddings = append(s.embeddings, embs...)
	return nil
}

// Search performs similarity search
func (s *InMemoryVectorStore) Search(ctx context.Context, queryEmbedding []float32, k int) ([]rag.DocumentSearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]rag.DocumentSearchResult, len(s.documents))
	for i, emb := range s.embeddings {
		results[i] = rag.DocumentSearchResult{
			Document: s.documents[i],
			Score:    cosineSimilarity32(queryEmbedding, emb),
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Delete removes documents by ID
func (s *InMemoryVectorStore) Delete(ctx context.Context, ids []string) error {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.documents[:0]
	embs := s.embeddings[:0]
	for i, doc := range s.documents {
		if !drop[doc.ID] {
			docs = append(docs, doc)
			embs = append(embs, s.embeddings[i])
		}
	}
	s.documents = docs
	s.embeddings = embs
	return nil
}

// Len returns the number of stored documents.
func (s *InMemoryVectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// cosineSimilarity32 calculates cosine similarity between two float32 vectors
func cosineSimilarity32(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct float64
	var normA float64
	var normB float64

	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
