package curated

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/smallnest/medgraph/log"
	"github.com/smallnest/medgraph/rag"
)

// ErrNoCorpus is returned by ConvertFiles when none of the inputs exist.
var ErrNoCorpus = errors.New("curated: no corpus files found")

// minAnnotationLength is the shortest annotation text kept in a document's
// ID map.
const minAnnotationLength = 3

// Collection is a BioC JSON collection.
type Collection struct {
	Source    string        `json:"source,omitempty"`
	Documents []BioDocument `json:"documents"`
}

// BioDocument is one annotated document.
type BioDocument struct {
	ID        string        `json:"id"`
	Passages  []Passage     `json:"passages"`
	Relations []BioRelation `json:"relations"`
}

// Passage holds the annotations of one passage.
type Passage struct {
	Annotations []Annotation `json:"annotations"`
}

// Annotation maps a local entity ID to its surface text. Identifier is the
// normalized concept ID (for BioRED, a MeSH or NCBI Gene ID) when present.
type Annotation struct {
	ID     string           `json:"id"`
	Text   string           `json:"text"`
	Infons AnnotationInfons `json:"infons"`
}

// AnnotationInfons carries annotation metadata.
type AnnotationInfons struct {
	Identifier string `json:"identifier,omitempty"`
	Type       string `json:"type,omitempty"`
}

// BioRelation links two entity IDs.
type BioRelation struct {
	ID     string         `json:"id,omitempty"`
	Infons RelationInfons `json:"infons"`
}

// RelationInfons names the related entities and the relation type.
type RelationInfons struct {
	Entity1 string `json:"entity1"`
	Entity2 string `json:"entity2"`
	Type    string `json:"type"`
}

// ConvertReport summarizes a conversion run.
type ConvertReport struct {
	Files     []string       `json:"files"`
	Documents int            `json:"documents"`
	Relations int            `json:"relations"`
	Skipped   int            `json:"skipped"`
	Entities  int            `json:"entities"`
	Buckets   map[string]int `json:"buckets"`
}

// Classify maps a BioC relation type to a bucket. The first matching rule
// wins: treat/therapy/drug, then cause/induce, then symptom/sign.
func Classify(relType string) string {
	t := strings.ToLower(relType)
	switch {
	case containsAny(t, "treat", "therapy", "drug"):
		return BucketTreatments
	case containsAny(t, "cause", "induce"):
		return BucketCauses
	case containsAny(t, "symptom", "sign"):
		return BucketSymptoms
	}
	return BucketRelatedTo
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Converter accumulates curated records across documents.
type Converter struct {
	acc    map[string]map[string]map[string]struct{}
	report ConvertReport
}

// NewConverter returns an empty converter.
func NewConverter() *Converter {
	return &Converter{
		acc:    make(map[string]map[string]map[string]struct{}),
		report: ConvertReport{Buckets: make(map[string]int)},
	}
}

// Add processes every document of coll.
func (c *Converter) Add(coll Collection) {
	for _, doc := range coll.Documents {
		c.AddDocument(doc)
	}
}

// AddDocument resolves the document's relations through its own
// annotations and files each one into a bucket. Relations whose endpoints
// do not resolve are skipped.
func (c *Converter) AddDocument(doc BioDocument) {
	c.report.Documents++

	names := make(map[string]string)
	for _, p := range doc.Passages {
		for _, a := range p.Annotations {
			text := rag.Normalize(a.Text)
			if utf8.RuneCountInString(text) < minAnnotationLength {
				continue
			}
			if a.ID != "" {
				names[a.ID] = text
			}
			// BioRED relations reference concept identifiers, not
			// annotation IDs. The first surface form wins.
			for _, id := range strings.Split(a.Infons.Identifier, ",") {
				id = strings.TrimSpace(id)
				if id == "" {
					continue
				}
				if _, ok := names[id]; !ok {
					names[id] = text
				}
			}
		}
	}

	for _, rel := range doc.Relations {
		subj := strings.TrimSpace(names[rel.Infons.Entity1])
		obj := strings.TrimSpace(names[rel.Infons.Entity2])
		if utf8.RuneCountInString(subj) < MinTargetLength || utf8.RuneCountInString(obj) < MinTargetLength {
			c.report.Skipped++
			continue
		}

		bucket := Classify(rel.Infons.Type)
		if bucket == BucketCauses {
			// "X causes Y" is a cause of Y.
			subj, obj = obj, subj
		}
		c.add(subj, bucket, obj)
		c.report.Relations++
	}
}

func (c *Converter) add(entity, bucket, target string) {
	if c.acc[entity] == nil {
		c.acc[entity] = make(map[string]map[string]struct{})
	}
	if c.acc[entity][bucket] == nil {
		c.acc[entity][bucket] = make(map[string]struct{})
	}
	c.acc[entity][bucket][target] = struct{}{}
}

// Records returns the accumulated records with sorted, distinct targets.
// Entities without any target are left out.
func (c *Converter) Records() Records {
	out := make(Records, len(c.acc))
	for entity, buckets := range c.acc {
		clean := make(map[string][]string)
		for bucket, set := range buckets {
			targets := make([]string, 0, len(set))
			for t := range set {
				if utf8.RuneCountInString(t) >= MinTargetLength {
					targets = append(targets, t)
				}
			}
			if len(targets) == 0 {
				continue
			}
			slices.Sort(targets)
			clean[bucket] = targets
		}
		if len(clean) > 0 {
			out[entity] = clean
		}
	}
	return out
}

// Report returns the run summary, with bucket counts taken from Records.
func (c *Converter) Report() ConvertReport {
	rep := c.report
	rep.Files = slices.Clone(c.report.Files)
	rep.Buckets = make(map[string]int)
	recs := c.Records()
	rep.Entities = len(recs)
	for _, buckets := range recs {
		for b, targets := range buckets {
			rep.Buckets[b] += len(targets)
		}
	}
	return rep
}

// Convert runs a one-shot conversion over in-memory collections.
func Convert(colls ...Collection) Records {
	c := NewConverter()
	for _, coll := range colls {
		c.Add(coll)
	}
	return c.Records()
}

// ConvertFiles converts BioC JSON files such as Train.BioC.JSON,
// Dev.BioC.JSON and Test.BioC.JSON. Missing files are skipped with a
// warning; a file that exists but does not parse is an error.
func ConvertFiles(ctx context.Context, paths ...string) (Records, ConvertReport, error) {
	c := NewConverter()
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, c.Report(), err
		}
		coll, err := readCollection(path)
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("corpus file %s not found, skipping", path)
			continue
		}
		if err != nil {
			return nil, c.Report(), err
		}
		if len(coll.Documents) == 0 {
			log.Warn("no documents found in %s", path)
		}
		log.Info("processing %s: %d documents", path, len(coll.Documents))
		c.Add(coll)
		c.report.Files = append(c.report.Files, path)
	}
	if len(c.report.Files) == 0 {
		return nil, c.Report(), ErrNoCorpus
	}
	return c.Records(), c.Report(), nil
}

func readCollection(path string) (Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return Collection{}, err
	}
	defer f.Close()

	var coll Collection
	if err := json.NewDecoder(f).Decode(&coll); err != nil {
		return Collection{}, fmt.Errorf("parse BioC file %s: %w", path, err)
	}
	return coll, nil
}
