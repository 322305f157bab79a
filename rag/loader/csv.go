package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/documentloaders"

	"github.com/smallnest/medgraph/rag"
)

// CSVLoader loads one document per data row of a CSV file with a header
// row. Each document reads "column: value" lines.
type CSVLoader struct {
	fileLoader
	columns []string
}

// NewCSVLoader creates a CSVLoader. When columns are given, only those
// columns are kept.
func NewCSVLoader(filePath string, columns []string, opts ...Option) *CSVLoader {
	return &CSVLoader{fileLoader: newFileLoader(filePath, "csv", opts), columns: columns}
}

func (l *CSVLoader) Load(ctx context.Context) ([]rag.Document, error) {
	f, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", l.filePath, err)
	}
	defer f.Close()

	rows, err := rag.NewLangChainDocumentLoader(documentloaders.NewCSV(f, l.columns...)).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv %s: %w", l.filePath, err)
	}
	docs := make([]rag.Document, len(rows))
	for i, row := range rows {
		docs[i] = l.document(fmt.Sprintf("csv_%s_%d", l.filePath, i+1), row.Content, row.Metadata)
	}
	return docs, nil
}
