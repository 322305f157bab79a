package store

import (
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/smallnest/medgraph/rag"
)

// Embedder providers accepted by NewEmbedder.
const (
	EmbedderMock   = "mock"
	EmbedderOpenAI = "openai"
)

// NewEmbedder builds the embedder described by cfg. The openai provider
// talks to any OpenAI-compatible /embeddings endpoint through langchaingo.
func NewEmbedder(cfg rag.EmbedderConfig) (rag.Embedder, error) {
	switch cfg.Provider {
	case "", EmbedderMock:
		return NewMockEmbedder(cfg.Dimension), nil
	case EmbedderOpenAI:
		var opts []openai.Option
		if cfg.APIKey != "" {
			opts = append(opts, openai.WithToken(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		if cfg.Model != "" {
			opts = append(opts, openai.WithEmbeddingModel(cfg.Model))
		}
		if cfg.Dimension > 0 {
			opts = append(opts, openai.WithEmbeddingDimensions(cfg.Dimension))
		}
		client, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: embedder: %w", rag.ErrInvalidConfig, err)
		}
		emb, err := embeddings.NewEmbedder(client)
		if err != nil {
			return nil, fmt.Errorf("embedder: %w", err)
		}
		return rag.NewLangChainEmbedder(emb), nil
	}
	return nil, fmt.Errorf("%w: unknown embedder provider %q", rag.ErrInvalidConfig, cfg.Provider)
}
