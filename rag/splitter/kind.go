package splitter

import (
	"fmt"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/smallnest/medgraph/rag"
)

// Splitter kinds accepted by New.
const (
	KindRecursive = "recursive"
	KindLangChain = "langchain"
)

// New returns a splitter of the given kind cutting size-character chunks
// with overlap. An empty kind selects KindRecursive.
func New(kind string, size, overlap int) (rag.TextSplitter, error) {
	switch kind {
	case "", KindRecursive:
		return NewRecursiveCharacterTextSplitter(WithChunkSize(size), WithChunkOverlap(overlap)), nil
	case KindLangChain:
		return rag.NewLangChainTextSplitter(textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
		)), nil
	}
	return nil, fmt.Errorf("%w: unknown splitter %q", rag.ErrInvalidConfig, kind)
}
