package loader

import (
	"context"
	"fmt"
	"maps"
	"os"

	"github.com/smallnest/medgraph/rag"
)

// Option configures a file loader.
type Option func(*fileLoader)

// WithMetadata sets additional metadata for loaded documents
func WithMetadata(metadata map[string]any) Option {
	return func(l *fileLoader) {
		maps.Copy(l.metadata, metadata)
	}
}

type fileLoader struct {
	filePath string
	metadata map[string]any
}

func newFileLoader(filePath, kind string, opts []Option) fileLoader {
	l := fileLoader{
		filePath: filePath,
		metadata: map[string]any{"source": filePath, "type": kind},
	}
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

func (l fileLoader) document(id, content string, extra map[string]any) rag.Document {
	md := make(map[string]any, len(l.metadata)+len(extra))
	maps.Copy(md, l.metadata)
	maps.Copy(md, extra)
	return rag.Document{ID: id, Content: content, Metadata: md}
}

// TextLoader loads a text or markdown file as a single document.
type TextLoader struct {
	fileLoader
}

// NewTextLoader creates a new TextLoader
func NewTextLoader(filePath string, opts ...Option) *TextLoader {
	return &TextLoader{newFileLoader(filePath, "text", opts)}
}

// Load loads documents from the text file
func (l *TextLoader) Load(ctx context.Context) ([]rag.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", l.filePath, err)
	}
	return []rag.Document{l.document("text_"+l.filePath, string(content), nil)}, nil
}
