package loader

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/smallnest/medgraph/rag"
)

const blockElements = "p, div, br, li, tr, h1, h2, h3, h4, h5, h6, section, article"

// HTMLLoader loads the visible text of an HTML page as one document.
type HTMLLoader struct {
	fileLoader
	policy *bluemonday.Policy
}

// NewHTMLLoader creates a new HTMLLoader
func NewHTMLLoader(filePath string, opts ...Option) *HTMLLoader {
	return &HTMLLoader{
		fileLoader: newFileLoader(filePath, "html", opts),
		policy:     bluemonday.StrictPolicy(),
	}
}

// Load parses the page, drops script, style and noscript elements and
// returns the body text. Markup smuggled in as escaped entities is
// stripped as well.
func (l *HTMLLoader) Load(ctx context.Context) ([]rag.Document, error) {
	f, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", l.filePath, err)
	}
	defer f.Close()

	title, text, err := pageText(f, l.policy)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML %s: %w", l.filePath, err)
	}

	var extra map[string]any
	if title != "" {
		extra = map[string]any{"title": title}
	}
	return []rag.Document{l.document("html_"+l.filePath, text, extra)}, nil
}

// pageText returns the <title> and the visible body text of an HTML page,
// with whitespace collapsed.
func pageText(r io.Reader, policy *bluemonday.Policy) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", "", err
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find(blockElements).AppendHtml("\n")

	title = strings.TrimSpace(doc.Find("title").First().Text())
	text = html.UnescapeString(policy.Sanitize(doc.Find("body").Text()))
	return title, strings.Join(strings.Fields(text), " "), nil
}
