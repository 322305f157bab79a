package loader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/smallnest/medgraph/rag"
)

// MarkdownLoader loads a Markdown file as plain text: the file is rendered
// to HTML and reduced to its visible text, so link targets, emphasis
// markers and table pipes do not reach the extractors.
type MarkdownLoader struct {
	fileLoader
	policy *bluemonday.Policy
}

// NewMarkdownLoader creates a new MarkdownLoader
func NewMarkdownLoader(filePath string, opts ...Option) *MarkdownLoader {
	return &MarkdownLoader{
		fileLoader: newFileLoader(filePath, "markdown", opts),
		policy:     bluemonday.StrictPolicy(),
	}
}

// Load returns one document. The first heading becomes the title.
func (l *MarkdownLoader) Load(ctx context.Context) ([]rag.Document, error) {
	src, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", l.filePath, err)
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	page := markdown.Render(p.Parse(src), renderer)

	_, text, err := pageText(bytes.NewReader(page), l.policy)
	if err != nil {
		return nil, fmt.Errorf("failed to render markdown %s: %w", l.filePath, err)
	}

	var extra map[string]any
	if title := firstHeading(string(src)); title != "" {
		extra = map[string]any{"title": title}
	}
	return []rag.Document{l.document("markdown_"+l.filePath, text, extra)}, nil
}

func firstHeading(src string) string {
	for line := range strings.Lines(src) {
		if h, ok := strings.CutPrefix(strings.TrimSpace(line), "#"); ok {
			return strings.TrimSpace(strings.TrimLeft(h, "#"))
		}
	}
	return ""
}
