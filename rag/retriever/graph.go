package retriever

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/smallnest/medgraph/log"
	"github.com/smallnest/medgraph/rag"
	"github.com/smallnest/medgraph/rag/kgraph"
)

const (
	// DefaultMaxResults is used when Query is called with maxResults <= 0.
	DefaultMaxResults = 5
	// MaxRelevantNodes caps how many matching nodes are expanded per query.
	MaxRelevantNodes = 15
)

var stopWords = map[string]bool{
	"what": true, "is": true, "are": true, "the": true,
	"for": true, "about": true, "tell": true, "me": true,
}

// GraphRetriever answers free-text queries from a knowledge graph with
// one-hop "<subject> <relation> <object>" strings.
type GraphRetriever struct {
	graph *kgraph.Graph
}

var _ rag.GraphQuerier = (*GraphRetriever)(nil)

// NewGraphRetriever creates a new graph retriever
func NewGraphRetriever(g *kgraph.Graph) *GraphRetriever {
	return &GraphRetriever{graph: g}
}

// Query matches nodes against the keywords of text and expands each match
// into its incoming and outgoing edges. Results keep first-seen order, are
// distinct, and hold at most maxResults entries. Matching is boolean; no
// result is ranked above another.
func (r *GraphRetriever) Query(ctx context.Context, text string, maxResults int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if r.graph == nil || r.graph.Len() == 0 || strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	nodes := r.relevantNodes(text)

	seen := make(map[string]struct{})
	results := make([]string, 0, maxResults)
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		results = append(results, s)
	}
	for _, node := range nodes {
		for _, nb := range r.graph.NeighborsOut(node) {
			add(rag.Triple{Subject: node, Relation: nb.Relation, Object: nb.Name}.String())
		}
		for _, nb := range r.graph.NeighborsIn(node) {
			add(rag.Triple{Subject: nb.Name, Relation: nb.Relation, Object: node}.String())
		}
	}

	log.Debug("graph query %q: %d relevant nodes, %d triples", text, len(nodes), len(results))
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results, nil
}

// relevantNodes returns up to MaxRelevantNodes node names, in insertion order.
func (r *GraphRetriever) relevantNodes(text string) []string {
	keywords := Keywords(text)
	query := strings.ToLower(text)

	var nodes []string
	for _, name := range r.graph.Names() {
		if len(nodes) == MaxRelevantNodes {
			break
		}
		if matches(name, query, keywords) {
			nodes = append(nodes, name)
		}
	}
	return nodes
}

func matches(node, query string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(node, k) || strings.Contains(k, node) {
			return true
		}
	}
	return strings.Contains(node, query) || strings.Contains(query, node)
}

// Keywords lower-cases and splits text on whitespace, trims trailing
// ".,?!" and drops stop words and tokens of two characters or fewer.
func Keywords(text string) []string {
	var out []string
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.TrimRight(tok, ".,?!")
		if utf8.RuneCountInString(tok) <= 2 || stopWords[tok] {
			continue
		}
		out = append(out, tok)
	}
	return out
}
