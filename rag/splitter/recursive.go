package splitter

import (
	"fmt"
	"maps"
	"strings"
	"unicode/utf8"

	"github.com/smallnest/medgraph/rag"
)

// RecursiveCharacterTextSplitter splits on the coarsest separator present
// in the text, recursing into pieces that are still too long, then merges
// neighbouring pieces into chunks of at most chunkSize characters that
// share up to chunkOverlap characters.
type RecursiveCharacterTextSplitter struct {
	separators   []string
	chunkSize    int
	chunkOverlap int
	lengthFunc   func(string) int
}

var _ rag.TextSplitter = (*RecursiveCharacterTextSplitter)(nil)

// RecursiveCharacterTextSplitterOption configures the RecursiveCharacterTextSplitter
type RecursiveCharacterTextSplitterOption func(*RecursiveCharacterTextSplitter)

// WithChunkSize sets the chunk size for the splitter
func WithChunkSize(size int) RecursiveCharacterTextSplitterOption {
	return func(s *RecursiveCharacterTextSplitter) {
		s.chunkSize = size
	}
}

// WithChunkOverlap sets the chunk overlap for the splitter
func WithChunkOverlap(overlap int) RecursiveCharacterTextSplitterOption {
	return func(s *RecursiveCharacterTextSplitter) {
		s.chunkOverlap = overlap
	}
}

// WithSeparators sets the custom separators for the splitter
func WithSeparators(separators []string) RecursiveCharacterTextSplitterOption {
	return func(s *RecursiveCharacterTextSplitter) {
		s.separators = separators
	}
}

// WithLengthFunction sets a custom length function
func WithLengthFunction(fn func(string) int) RecursiveCharacterTextSplitterOption {
	return func(s *RecursiveCharacterTextSplitter) {
		s.lengthFunc = fn
	}
}

// NewRecursiveCharacterTextSplitter creates a splitter with chunks of 1000
// characters overlapping by 100.
func NewRecursiveCharacterTextSplitter(opts ...RecursiveCharacterTextSplitterOption) *RecursiveCharacterTextSplitter {
	s := &RecursiveCharacterTextSplitter{
		separators:   []string{"\n\n", "\n", " ", ""},
		chunkSize:    1000,
		chunkOverlap: 100,
		lengthFunc:   utf8.RuneCountInString,
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.chunkOverlap >= s.chunkSize {
		s.chunkOverlap = s.chunkSize / 2
	}

	return s
}

// SplitText splits text into chunks
func (s *RecursiveCharacterTextSplitter) SplitText(text string) []string {
	return s.split(text, s.separators)
}

// SplitDocuments splits documents into chunks. Each chunk keeps its
// parent's metadata plus parent_id, chunk_index and chunk_total.
func (s *RecursiveCharacterTextSplitter) SplitDocuments(docs []rag.Document) []rag.Document {
	var chunks []rag.Document
	for _, doc := range docs {
		parts := s.SplitText(doc.Content)
		for i, part := range parts {
			md := make(map[string]any, len(doc.Metadata)+3)
			maps.Copy(md, doc.Metadata)
			md["parent_id"] = doc.ID
			md["chunk_index"] = i
			md["chunk_total"] = len(parts)
			chunks = append(chunks, rag.Document{
				ID:       fmt.Sprintf("%s_chunk_%d", doc.ID, i),
				Content:  part,
				Metadata: md,
			})
		}
	}
	return chunks
}

func (s *RecursiveCharacterTextSplitter) split(text string, separators []string) []string {
	separator := ""
	var rest []string
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	if separator == "" {
		pieces = strings.Split(text, "")
	} else {
		pieces = strings.Split(text, separator)
	}

	var out, small []string
	for _, p := range pieces {
		if p == "" {
			continue
		}
		if s.lengthFunc(p) < s.chunkSize {
			small = append(small, p)
			continue
		}
		if len(small) > 0 {
			out = append(out, s.merge(small, separator)...)
			small = nil
		}
		if len(rest) == 0 {
			out = append(out, p)
		} else {
			out = append(out, s.split(p, rest)...)
		}
	}
	if len(small) > 0 {
		out = append(out, s.merge(small, separator)...)
	}
	return out
}

// merge packs pieces into chunks, carrying trailing pieces over as overlap.
func (s *RecursiveCharacterTextSplitter) merge(pieces []string, separator string) []string {
	sepLen := s.lengthFunc(separator)
	var chunks, current []string
	total := 0

	for _, p := range pieces {
		n := s.lengthFunc(p)
		join := 0
		if len(current) > 0 {
			join = sepLen
		}
		if total+n+join > s.chunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, separator)); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for len(current) > 0 && (total > s.chunkOverlap || total+n+sepLen > s.chunkSize) {
				total -= s.lengthFunc(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, p)
		total += n
	}

	if chunk := strings.TrimSpace(strings.Join(current, separator)); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}
