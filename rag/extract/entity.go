package extract

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/smallnest/medgraph/log"
	"github.com/smallnest/medgraph/rag"
	"github.com/smallnest/medgraph/rag/kgraph"
)

// Entities maps an extraction category to sorted, distinct entity names.
type Entities map[kgraph.Category][]string

// Contains reports whether name appears under any category. Names are
// compared after normalization and need not be sorted.
func (e Entities) Contains(name string) bool {
	name = rag.Normalize(name)
	for _, names := range e {
		if slices.ContainsFunc(names, func(n string) bool { return rag.Normalize(n) == name }) {
			return true
		}
	}
	return false
}

// Len returns the number of (category, entity) pairs.
func (e Entities) Len() int {
	n := 0
	for _, names := range e {
		n += len(names)
	}
	return n
}

// EntityExtractor turns text into categorized entities. Extraction never
// fails; an extractor with nothing to report returns an empty map.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) Entities
}

// PatternExtractor extracts entities with fixed lexical patterns.
type PatternExtractor struct{}

var _ EntityExtractor = PatternExtractor{}

func NewPatternExtractor() PatternExtractor { return PatternExtractor{} }

// Extract matches every category's patterns against the lower-cased text.
// Matches shorter than three characters are dropped.
func (PatternExtractor) Extract(ctx context.Context, text string) Entities {
	lower := strings.ToLower(text)
	out := make(Entities)
	for _, cat := range kgraph.ExtractedCategories {
		seen := make(map[string]struct{})
		for _, re := range entityPatterns[cat] {
			for _, m := range re.FindAllString(lower, -1) {
				m = strings.TrimSpace(m)
				if utf8.RuneCountInString(m) < kgraph.MinNameLength {
					continue
				}
				seen[m] = struct{}{}
			}
		}
		if len(seen) > 0 {
			out[cat] = sortedKeys(seen)
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// MapLabel maps a recognizer label to an extraction category by substring.
// Unmapped labels report false.
func MapLabel(label string) (kgraph.Category, bool) {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "disease"), strings.Contains(l, "disorder"):
		return kgraph.Diseases, true
	case strings.Contains(l, "drug"), strings.Contains(l, "medication"):
		return kgraph.Treatments, true
	case strings.Contains(l, "symptom"):
		return kgraph.Symptoms, true
	case strings.Contains(l, "anatomy"), strings.Contains(l, "body"):
		return kgraph.Anatomy, true
	}
	return "", false
}

// ModelExtractor runs a Recognizer and falls back to patterns on any
// recognizer failure.
type ModelExtractor struct {
	recognizer rag.Recognizer
	fallback   EntityExtractor
	timeout    time.Duration
	fallbacks  atomic.Int64
}

var _ EntityExtractor = (*ModelExtractor)(nil)

// ModelOption configures a ModelExtractor.
type ModelOption func(*ModelExtractor)

// WithTimeout bounds each recognizer call. Zero disables the bound.
func WithTimeout(d time.Duration) ModelOption {
	return func(m *ModelExtractor) { m.timeout = d }
}

// WithFallback replaces the pattern extractor used on failure.
func WithFallback(e EntityExtractor) ModelOption {
	return func(m *ModelExtractor) { m.fallback = e }
}

// NewModelExtractor wraps recognizer, which may be nil.
func NewModelExtractor(recognizer rag.Recognizer, opts ...ModelOption) *ModelExtractor {
	m := &ModelExtractor{
		recognizer: recognizer,
		fallback:   PatternExtractor{},
		timeout:    5 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fallbacks returns how many calls used the fallback extractor.
func (m *ModelExtractor) Fallbacks() int64 { return m.fallbacks.Load() }

// Extract returns the recognizer's entities mapped into categories, or the
// fallback's result if the recognizer is unavailable or fails.
func (m *ModelExtractor) Extract(ctx context.Context, text string) Entities {
	recs, err := m.recognize(ctx, text)
	if err != nil {
		m.fallbacks.Add(1)
		log.Debug("entity recognizer unavailable, using patterns: %v", err)
		return m.fallback.Extract(ctx, text)
	}

	sets := make(map[kgraph.Category]map[string]struct{})
	for _, r := range recs {
		cat, ok := MapLabel(r.Label)
		if !ok {
			continue
		}
		name := rag.Normalize(r.Text)
		if utf8.RuneCountInString(name) < kgraph.MinNameLength {
			continue
		}
		if sets[cat] == nil {
			sets[cat] = make(map[string]struct{})
		}
		sets[cat][name] = struct{}{}
	}
	out := make(Entities, len(sets))
	for cat, set := range sets {
		out[cat] = sortedKeys(set)
	}
	return out
}

type recognizeResult struct {
	recs []rag.Recognition
	err  error
}

func (m *ModelExtractor) recognize(ctx context.Context, text string) ([]rag.Recognition, error) {
	if m.recognizer == nil {
		return nil, rag.ErrRecognizerUnavailable
	}
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	done := make(chan recognizeResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- recognizeResult{err: fmt.Errorf("recognizer panic: %v", r)}
			}
		}()
		recs, err := m.recognizer.Recognize(ctx, text)
		done <- recognizeResult{recs: recs, err: err}
	}()

	select {
	case res := <-done:
		return res.recs, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
