package curated

import (
	"errors"
	"fmt"
	"slices"

	"github.com/smallnest/medgraph/log"
	"github.com/smallnest/medgraph/rag/kgraph"
)

// InversePrefix is prepended to a bucket name to label the reverse edge.
const InversePrefix = "inverse_"

// MergeResult reports what a merge added.
type MergeResult struct {
	Entities int `json:"entities"`
	Edges    int `json:"edges"`
	// Skipped counts facts whose names are too short to be graph nodes.
	Skipped int `json:"skipped"`
	// Duplicates counts edges left out because they already existed. Only
	// non-zero with WithDedupe.
	Duplicates int `json:"duplicates"`
}

type mergeOptions struct {
	dedupe bool
}

// MergeOption configures Merge.
type MergeOption func(*mergeOptions)

// WithDedupe skips edges whose (source, label, target) already exists,
// making repeated merges idempotent.
func WithDedupe(on bool) MergeOption {
	return func(o *mergeOptions) { o.dedupe = on }
}

// Merge adds the curated facts to g. For every entity -> bucket -> target
// it tags entity as medical_entity and target as related_entity (both
// external), then adds entity --bucket--> target and
// target --inverse_bucket--> entity.
//
// Without WithDedupe, merging the same records twice duplicates every edge.
func Merge(g *kgraph.Graph, recs Records, opts ...MergeOption) (MergeResult, error) {
	var o mergeOptions
	for _, opt := range opts {
		opt(&o)
	}

	var res MergeResult
	for _, entity := range recs.Entities() {
		if _, err := g.AddNode(entity, kgraph.MedicalEntity, kgraph.ProvenanceExternal); err != nil {
			if errors.Is(err, kgraph.ErrInvalidName) {
				res.Skipped++
				log.Debug("curated entity %q skipped: %v", entity, err)
				continue
			}
			return res, fmt.Errorf("merge entity %q: %w", entity, err)
		}
		res.Entities++

		buckets := make([]string, 0, len(recs[entity]))
		for b := range recs[entity] {
			buckets = append(buckets, b)
		}
		slices.Sort(buckets)

		for _, bucket := range buckets {
			for _, target := range recs[entity][bucket] {
				if _, err := g.AddNode(target, kgraph.RelatedEntity, kgraph.ProvenanceExternal); err != nil {
					if errors.Is(err, kgraph.ErrInvalidName) {
						res.Skipped++
						continue
					}
					return res, fmt.Errorf("merge target %q: %w", target, err)
				}
				for _, e := range [][3]string{
					{entity, bucket, target},
					{target, InversePrefix + bucket, entity},
				} {
					if o.dedupe && g.HasEdge(e[0], e[1], e[2]) {
						res.Duplicates++
						continue
					}
					if err := g.AddEdge(e[0], e[1], e[2]); err != nil {
						return res, fmt.Errorf("merge edge %s %s %s: %w", e[0], e[1], e[2], err)
					}
					res.Edges++
				}
			}
		}
	}
	return res, nil
}
