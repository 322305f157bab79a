package rag

import (
	"context"
	"strings"
)

// Document is a loaded or split unit of source text.
type Document struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"embedding,omitempty"`
}

// DocumentSearchResult pairs a document with its similarity score.
type DocumentSearchResult struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}

// Triple is a directed, labeled fact between two entities.
type Triple struct {
	Subject  string `json:"subject"`
	Relation string `json:"relation"`
	Object   string `json:"object"`
}

// String renders the triple as "<subject> <relation> <object>".
func (t Triple) String() string {
	return t.Subject + " " + t.Relation + " " + t.Object
}

// Recognition is one span reported by a named-entity recognizer.
type Recognition struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// VectorSearcher returns the texts most similar to query, best first.
type VectorSearcher interface {
	Search(ctx context.Context, query string, k int) ([]string, error)
}

// GraphQuerier answers free-text queries with "<a> <relation> <b>" strings.
type GraphQuerier interface {
	Query(ctx context.Context, text string, maxResults int) ([]string, error)
}

// Generator produces an answer for a fully composed prompt. Transport and
// quota failures are reported as errors wrapping ErrModel.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChunkSource yields the plain-text chunks of a source document in order.
type ChunkSource interface {
	Chunks(ctx context.Context) ([]string, error)
}

// Recognizer is an optional named-entity recognition capability.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Recognition, error)
}

// Embedder turns text into vectors for the bundled vector store.
type Embedder interface {
	EmbedDocument(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	GetDimension() int
}

// DocumentLoader loads documents from a source.
type DocumentLoader interface {
	Load(ctx context.Context) ([]Document, error)
}

// TextSplitter splits text into chunks.
type TextSplitter interface {
	SplitText(text string) []string
}

// VectorSearchFunc adapts a function to VectorSearcher.
type VectorSearchFunc func(ctx context.Context, query string, k int) ([]string, error)

func (f VectorSearchFunc) Search(ctx context.Context, query string, k int) ([]string, error) {
	return f(ctx, query, k)
}

// GraphQueryFunc adapts a function to GraphQuerier.
type GraphQueryFunc func(ctx context.Context, text string, maxResults int) ([]string, error)

func (f GraphQueryFunc) Query(ctx context.Context, text string, maxResults int) ([]string, error) {
	return f(ctx, text, maxResults)
}

// GenerateFunc adapts a function to Generator.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

func (f GenerateFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// StaticChunks is a ChunkSource over an in-memory list.
type StaticChunks []string

func (s StaticChunks) Chunks(ctx context.Context) ([]string, error) {
	return []string(s), nil
}

// Normalize lower-cases and trims a name. Every node identity goes through it.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
