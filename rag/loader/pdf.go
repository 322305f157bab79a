package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/smallnest/medgraph/log"
	"github.com/smallnest/medgraph/rag"
)

// PDFLoader loads one document per PDF page with extractable text.
type PDFLoader struct {
	fileLoader
}

// NewPDFLoader creates a new PDFLoader
func NewPDFLoader(filePath string, opts ...Option) *PDFLoader {
	return &PDFLoader{newFileLoader(filePath, "pdf", opts)}
}

// Load extracts the plain text of every page. Pages without text, or whose
// text cannot be decoded, are skipped.
func (l *PDFLoader) Load(ctx context.Context) ([]rag.Document, error) {
	f, reader, err := pdf.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", l.filePath, err)
	}
	defer f.Close()

	total := reader.NumPage()
	docs := make([]rag.Document, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Debug("skipping page %d of %s: %v", i, l.filePath, err)
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		docs = append(docs, l.document(fmt.Sprintf("pdf_%s_%d", l.filePath, i), text, map[string]any{"page": i}))
	}
	log.Info("loaded %d of %d pages from %s", len(docs), total, l.filePath)
	return docs, nil
}
