package curated

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/smallnest/medgraph/rag/kgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	t.Run("forward and inverse edges", func(t *testing.T) {
		g := kgraph.New()
		res, err := Merge(g, Records{"fever": {BucketTreatments: {"aspirin"}}})
		require.NoError(t, err)
		assert.Equal(t, MergeResult{Entities: 1, Edges: 2}, res)

		assert.Equal(t, []kgraph.Neighbor{{Relation: "treatments", Name: "aspirin"}}, g.NeighborsOut("fever"))
		assert.Equal(t, []kgraph.Neighbor{{Relation: "inverse_treatments", Name: "fever"}}, g.NeighborsOut("aspirin"))

		fever, err := g.Node("fever")
		require.NoError(t, err)
		aspirin, err := g.Node("aspirin")
		require.NoError(t, err)
		assert.Equal(t, kgraph.MedicalEntity, fever.Category)
		assert.Equal(t, kgraph.RelatedEntity, aspirin.Category)
		assert.Equal(t, kgraph.ProvenanceExternal, aspirin.Provenance)
	})

	t.Run("repeated merge duplicates edges", func(t *testing.T) {
		g := kgraph.New()
		recs := Records{"fever": {BucketTreatments: {"aspirin"}}}
		_, err := Merge(g, recs)
		require.NoError(t, err)
		before := g.EdgeCount()

		_, err = Merge(g, recs)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, g.EdgeCount(), before)
		assert.Equal(t, 4, g.EdgeCount())
		assert.Equal(t, 2, g.Len())
	})

	t.Run("dedupe makes merge idempotent", func(t *testing.T) {
		g := kgraph.New()
		recs := Records{"fever": {BucketTreatments: {"aspirin"}, BucketSymptoms: {"chills"}}}
		_, err := Merge(g, recs, WithDedupe(true))
		require.NoError(t, err)
		res, err := Merge(g, recs, WithDedupe(true))
		require.NoError(t, err)
		assert.Equal(t, 4, g.EdgeCount())
		assert.Equal(t, 4, res.Duplicates)
		assert.Equal(t, 0, res.Edges)
	})

	t.Run("skips names too short for nodes", func(t *testing.T) {
		g := kgraph.New()
		res, err := Merge(g, Records{"hb": {BucketRelatedTo: {"anemia"}}, "fever": {BucketRelatedTo: {"ng"}}})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Skipped)
		assert.Equal(t, 0, g.EdgeCount())
	})

	t.Run("frozen graph", func(t *testing.T) {
		g := kgraph.New()
		g.Freeze()
		_, err := Merge(g, Records{"fever": {BucketTreatments: {"aspirin"}}})
		assert.ErrorIs(t, err, kgraph.ErrFrozen)
	})
}

func TestRecordsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medical_relations.json")
	recs := Records{
		"fever":       {BucketTreatments: {"aspirin", "paracetamol"}},
		"lung cancer": {BucketCauses: {"smoking"}},
	}

	require.NoError(t, WriteFile(path, recs))
	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, recs, got)
	assert.Equal(t, 3, got.Facts())
	assert.Equal(t, []string{"fever", "lung cancer"}, got.Entities())

	t.Run("invalid records are rejected", func(t *testing.T) {
		bad := []Records{
			{"fever": {BucketTreatments: {}}},
			{"fever": {"cures": {"aspirin"}}},
			{"fever": {BucketTreatments: {"aspirin", "aspirin"}}},
			{"fever": {BucketTreatments: {"a"}}},
			{"fever": {BucketTreatments: {"é"}}},
			{"胃": {BucketTreatments: {"aspirin"}}},
		}
		for _, r := range bad {
			assert.ErrorIs(t, r.Validate(), ErrInvalidRecords)
			assert.Error(t, WriteFile(path, r))
		}
	})

	t.Run("read rejects invalid file", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{"fever":{"treatments":[]}}`), 0o644))
		_, err := ReadFile(bad)
		assert.ErrorIs(t, err, ErrInvalidRecords)
	})
}
