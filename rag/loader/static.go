package loader

import (
	"context"
	"fmt"

	"github.com/smallnest/medgraph/rag"
)

// SampleMedicalCorpus is a small built-in corpus used when no document is
// configured.
var SampleMedicalCorpus = []string{
	"Aspirin is an effective medication for reducing fever and treating mild to moderate pain.",
	"Paracetamol (acetaminophen) is commonly used to treat headaches and reduce fever in both adults and children.",
	"Type 2 diabetes is a chronic condition that affects blood sugar regulation and can be managed with proper diet and exercise.",
	"Antibiotics are specifically designed to fight bacterial infections but are ineffective against viral infections.",
	"Regular physical exercise helps prevent cardiovascular disease and improves overall health outcomes.",
	"Vitamin D deficiency can lead to bone weakness and is often caused by insufficient sunlight exposure.",
	"Hypertension (high blood pressure) is a major risk factor for heart disease and stroke.",
	"Proper hydration is essential for kidney function and helps maintain optimal body temperature.",
	"Cancer screening programs help detect malignancies in their early stages when treatment is most effective.",
	"Mental health disorders require professional treatment and should not be ignored or self-treated.",
}

// StaticDocumentLoader loads documents from a static list
type StaticDocumentLoader struct {
	Documents []rag.Document
}

// NewStaticDocumentLoader creates a new StaticDocumentLoader
func NewStaticDocumentLoader(documents []rag.Document) *StaticDocumentLoader {
	return &StaticDocumentLoader{Documents: documents}
}

// NewSampleLoader serves SampleMedicalCorpus, one document per sentence.
func NewSampleLoader() *StaticDocumentLoader {
	docs := make([]rag.Document, len(SampleMedicalCorpus))
	for i, text := range SampleMedicalCorpus {
		docs[i] = rag.Document{
			ID:       fmt.Sprintf("sample_%d", i),
			Content:  text,
			Metadata: map[string]any{"source": "sample", "type": "text"},
		}
	}
	return NewStaticDocumentLoader(docs)
}

// Load returns the static list of documents
func (l *StaticDocumentLoader) Load(ctx context.Context) ([]rag.Document, error) {
	return l.Documents, nil
}
