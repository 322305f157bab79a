package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

type mockLCEmbedder struct{}

func (m *mockLCEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	res := make([][]float32, len(texts))
	for i := range texts {
		res[i] = []float32{0.1, 0.2}
	}
	return res, nil
}

func (m *mockLCEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

type mockLCLoader struct{}

func (m *mockLCLoader) Load(ctx context.Context) ([]schema.Document, error) {
	return []schema.Document{{PageContent: "asthma affects the lungs", Metadata: map[string]any{"source": "notes.txt"}}}, nil
}

func (m *mockLCLoader) LoadAndSplit(ctx context.Context, s textsplitter.TextSplitter) ([]schema.Document, error) {
	return m.Load(ctx)
}

type mockLLM struct {
	answer string
	err    error
	prompt string
}

func (m *mockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if tc, ok := part.(llms.TextContent); ok {
				m.prompt = tc.Text
			}
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.answer}}}, nil
}

func (m *mockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestLangChainAdapters(t *testing.T) {
	ctx := context.Background()

	t.Run("LLMGenerator", func(t *testing.T) {
		llm := &mockLLM{answer: "Aspirin treats fever."}
		gen := NewLLMGenerator(llm, llms.WithTemperature(0))

		out, err := gen.Generate(ctx, "what treats fever?")
		require.NoError(t, err)
		assert.Equal(t, "Aspirin treats fever.", out)
		assert.Equal(t, "what treats fever?", llm.prompt)
	})

	t.Run("LLMGenerator wraps failures as ErrModel", func(t *testing.T) {
		gen := NewLLMGenerator(&mockLLM{err: errors.New("429 rate limited")})
		_, err := gen.Generate(ctx, "q")
		assert.ErrorIs(t, err, ErrModel)
		assert.Contains(t, err.Error(), "429")

		_, err = NewLLMGenerator(nil).Generate(ctx, "q")
		assert.ErrorIs(t, err, ErrModel)
	})

	t.Run("LangChainDocumentLoader", func(t *testing.T) {
		docs, err := NewLangChainDocumentLoader(&mockLCLoader{}).Load(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "asthma affects the lungs", docs[0].Content)
		assert.Equal(t, "notes.txt", docs[0].ID)
	})

	t.Run("LangChainTextSplitter default chunking", func(t *testing.T) {
		splitter := NewLangChainTextSplitter(nil)
		text := strings.Repeat("Diabetes is treated with insulin. ", 80)
		chunks := splitter.SplitText(text)
		assert.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c), 1000)
		}
	})

	t.Run("LangChainEmbedder", func(t *testing.T) {
		adapter := NewLangChainEmbedder(&mockLCEmbedder{})
		assert.Equal(t, 2, adapter.GetDimension())

		emb, err := adapter.EmbedDocument(ctx, "test")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2}, emb)

		embs, err := adapter.EmbedDocuments(ctx, []string{"a", "b"})
		require.NoError(t, err)
		assert.Len(t, embs, 2)
	})
}

func TestTripleString(t *testing.T) {
	assert.Equal(t, "fever treatments aspirin", Triple{"fever", "treatments", "aspirin"}.String())
	assert.Equal(t, "fever", Normalize("  Fever "))
}
