package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/smallnest/medgraph/rag"
)

// ForFile picks a loader by file extension. An empty path selects the
// sample corpus.
func ForFile(path string, opts ...Option) (rag.DocumentLoader, error) {
	if path == "" {
		return NewSampleLoader(), nil
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return NewPDFLoader(path, opts...), nil
	case ".html", ".htm":
		return NewHTMLLoader(path, opts...), nil
	case ".md", ".markdown":
		return NewMarkdownLoader(path, opts...), nil
	case ".csv":
		return NewCSVLoader(path, nil, opts...), nil
	case ".txt", ".text", "":
		return NewTextLoader(path, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported document type %q", ext)
	}
}
