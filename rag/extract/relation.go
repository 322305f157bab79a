package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/smallnest/medgraph/rag"
	"github.com/smallnest/medgraph/rag/kgraph"
)

// RelationExtractor finds (subject, relation, object) triples with
// subject-verb-object templates.
type RelationExtractor struct {
	templates []relationTemplate
}

func NewRelationExtractor() *RelationExtractor {
	return &RelationExtractor{templates: relationTemplates}
}

// Extract applies every template, in order, to the lower-cased text. A
// candidate is kept only when its subject or object is among entities.
// Repeated phrases yield repeated triples.
func (r *RelationExtractor) Extract(text string, entities Entities) []rag.Triple {
	lower := strings.ToLower(text)
	var out []rag.Triple
	for _, tpl := range r.templates {
		for _, m := range tpl.pattern.FindAllStringSubmatch(lower, -1) {
			subj, obj := m[1], m[2]
			if tpl.swap {
				subj, obj = obj, subj
			}
			if !usable(subj) || !usable(obj) || subj == obj {
				continue
			}
			if !entities.Contains(subj) && !entities.Contains(obj) {
				continue
			}
			out = append(out, rag.Triple{Subject: subj, Relation: tpl.relation, Object: obj})
		}
	}
	return out
}

func usable(term string) bool {
	return utf8.RuneCountInString(term) >= kgraph.MinNameLength && !fillers[term]
}
