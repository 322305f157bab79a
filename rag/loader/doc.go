// Package loader reads source documents for the knowledge-graph build and
// the vector index: plain text, Markdown, PDF, HTML and a bundled sample corpus.
package loader
