package splitter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/smallnest/medgraph/log"
	"github.com/smallnest/medgraph/rag"
)

var (
	spaceRe   = regexp.MustCompile(`\s+`)
	specialRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?-]`)
)

// CleanText collapses whitespace runs to one space, removes characters
// other than letters, digits, underscores, whitespace and .,!?- and trims
// the result.
func CleanText(text string) string {
	text = spaceRe.ReplaceAllString(text, " ")
	text = specialRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Chunks is a rag.ChunkSource that loads documents and splits each one.
type Chunks struct {
	Loader   rag.DocumentLoader
	Splitter rag.TextSplitter
	// Clean runs CleanText over every chunk. Chunks left empty are dropped.
	Clean bool
}

var _ rag.ChunkSource = Chunks{}

// Chunks returns the chunks of every loaded document, in order.
func (c Chunks) Chunks(ctx context.Context) ([]string, error) {
	if c.Loader == nil {
		return nil, fmt.Errorf("no document loader configured")
	}
	split := c.Splitter
	if split == nil {
		split = NewRecursiveCharacterTextSplitter()
	}

	docs, err := c.Loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	var out []string
	for _, doc := range docs {
		for _, chunk := range split.SplitText(doc.Content) {
			if c.Clean {
				chunk = CleanText(chunk)
			}
			if strings.TrimSpace(chunk) == "" {
				continue
			}
			out = append(out, chunk)
		}
	}
	log.Info("created %d chunks from %d documents", len(out), len(docs))
	return out, nil
}
