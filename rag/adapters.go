package rag

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

// LLMGenerator adapts a langchaingo llms.Model to Generator.
type LLMGenerator struct {
	model llms.Model
	opts  []llms.CallOption
}

// NewLLMGenerator wraps model. Call options are applied to every request.
func NewLLMGenerator(model llms.Model, opts ...llms.CallOption) *LLMGenerator {
	return &LLMGenerator{model: model, opts: opts}
}

// Generate sends prompt as a single human message.
func (g *LLMGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.model == nil {
		return "", fmt.Errorf("%w: no model configured", ErrModel)
	}
	out, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, g.opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrModel, err)
	}
	return out, nil
}

// LangChainDocumentLoader adapts langchaingo's documentloaders.Loader to DocumentLoader.
type LangChainDocumentLoader struct {
	loader documentloaders.Loader
}

// NewLangChainDocumentLoader creates a new adapter for langchaingo document loaders
func NewLangChainDocumentLoader(loader documentloaders.Loader) *LangChainDocumentLoader {
	return &LangChainDocumentLoader{loader: loader}
}

// Load loads documents using the underlying langchaingo loader
func (l *LangChainDocumentLoader) Load(ctx context.Context) ([]Document, error) {
	schemaDocs, err := l.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return convertSchemaDocuments(schemaDocs), nil
}

func convertSchemaDocuments(schemaDocs []schema.Document) []Document {
	docs := make([]Document, len(schemaDocs))
	for i, schemaDoc := range schemaDocs {
		md := make(map[string]any, len(schemaDoc.Metadata))
		maps.Copy(md, schemaDoc.Metadata)
		docs[i] = Document{Content: schemaDoc.PageContent, Metadata: md}

		if source, ok := schemaDoc.Metadata["source"]; ok {
			docs[i].ID = fmt.Sprintf("%v", source)
		} else {
			docs[i].ID = fmt.Sprintf("doc_%d", i)
		}
	}
	return docs
}

// LangChainTextSplitter adapts langchaingo's textsplitter.TextSplitter to TextSplitter.
type LangChainTextSplitter struct {
	splitter textsplitter.TextSplitter
}

// NewLangChainTextSplitter wraps splitter. A nil splitter becomes a
// recursive character splitter with 1000/100 chunking.
func NewLangChainTextSplitter(splitter textsplitter.TextSplitter) *LangChainTextSplitter {
	if splitter == nil {
		splitter = textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(1000),
			textsplitter.WithChunkOverlap(100),
		)
	}
	return &LangChainTextSplitter{splitter: splitter}
}

// SplitText splits text, dropping blank chunks. On splitter failure the
// whole text is returned as a single chunk.
func (l *LangChainTextSplitter) SplitText(text string) []string {
	chunks, err := l.splitter.SplitText(text)
	if err != nil {
		chunks = []string{text}
	}
	out := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}

// LangChainEmbedder adapts langchaingo's embeddings.Embedder to Embedder.
type LangChainEmbedder struct {
	embedder  embeddings.Embedder
	dimension int
}

// NewLangChainEmbedder creates a new adapter for langchaingo embedders
func NewLangChainEmbedder(embedder embeddings.Embedder) *LangChainEmbedder {
	return &LangChainEmbedder{embedder: embedder}
}

// EmbedDocument embeds a single text.
func (l *LangChainEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	v, err := l.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	l.dimension = len(v)
	return v, nil
}

// EmbedDocuments embeds texts in one call.
func (l *LangChainEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vs, err := l.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vs) > 0 {
		l.dimension = len(vs[0])
	}
	return vs, nil
}

// GetDimension returns the dimension seen on the last call, probing the
// embedder once if nothing has been embedded yet.
func (l *LangChainEmbedder) GetDimension() int {
	if l.dimension == 0 {
		if v, err := l.embedder.EmbedQuery(context.Background(), "dimension probe"); err == nil {
			l.dimension = len(v)
		}
	}
	return l.dimension
}
