package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/medgraph/rag"
	"github.com/smallnest/medgraph/rag/curated"
	"github.com/smallnest/medgraph/rag/extract"
	"github.com/smallnest/medgraph/rag/kgraph"
	"github.com/smallnest/medgraph/store/memory"
)

var sampleChunks = rag.StaticChunks{
	"Diabetes is treated with insulin.",
	"Smoking causes cancer.",
}

var sampleCurated = curated.Records{"fever": {curated.BucketTreatments: {"aspirin"}}}

type failingChunks struct{}

func (failingChunks) Chunks(ctx context.Context) ([]string, error) {
	return nil, errors.New("chunk source must not be read")
}

func TestBuilder_Fresh(t *testing.T) {
	ctx := context.Background()
	s := memory.NewMemorySnapshotStore()
	b := &Builder{Store: s, Curated: sampleCurated}

	g, rep, err := b.Build(ctx, sampleChunks)
	require.NoError(t, err)
	assert.False(t, rep.FromCache)
	assert.Equal(t, 2, rep.Chunks)
	assert.Equal(t, 3, rep.Entities)
	assert.Equal(t, 2, rep.Triples)
	assert.Equal(t, 2, rep.Merge.Edges)
	assert.True(t, g.Frozen())

	assert.True(t, g.HasEdge("diabetes", "treated_with", "insulin"))
	assert.True(t, g.HasEdge("smoking", "causes", "cancer"))
	assert.True(t, g.HasEdge("aspirin", "inverse_treatments", "fever"))

	diabetes, err := g.Node("diabetes")
	require.NoError(t, err)
	assert.Equal(t, kgraph.Diseases, diabetes.Category)
	assert.Equal(t, kgraph.ProvenancePDF, diabetes.Provenance)

	st := g.Stats()
	assert.Equal(t, 6, st.NodeCount)
	assert.Equal(t, 4, st.EdgeCount)
	assert.Equal(t, 1, st.CategoryBreakdown[kgraph.Unknown])

	t.Run("snapshot holds the merged graph", func(t *testing.T) {
		cached, err := kgraph.Load(ctx, s, DefaultSnapshotKey)
		require.NoError(t, err)
		assert.Equal(t, st, cached.Stats())
		assert.True(t, cached.HasEdge("fever", "treatments", "aspirin"))
		assert.True(t, cached.HasEdge("aspirin", "inverse_treatments", "fever"))
	})

	t.Run("second build loads the snapshot and merges again", func(t *testing.T) {
		g2, rep2, err := b.Build(ctx, failingChunks{})
		require.NoError(t, err)
		assert.True(t, rep2.FromCache)
		assert.Zero(t, rep2.Chunks)
		assert.Equal(t, 2, rep2.Merge.Edges)
		assert.Equal(t, st.NodeCount, g2.Stats().NodeCount)
		assert.Equal(t, st.EdgeCount+2, g2.Stats().EdgeCount)

		cached, err := kgraph.Load(ctx, s, DefaultSnapshotKey)
		require.NoError(t, err)
		assert.Equal(t, g2.Stats(), cached.Stats())
	})

	t.Run("dedupe keeps reloads stable", func(t *testing.T) {
		deduped := *b
		deduped.DedupeMerge = true
		before, err := kgraph.Load(ctx, s, DefaultSnapshotKey)
		require.NoError(t, err)

		g3, rep3, err := deduped.Build(ctx, failingChunks{})
		require.NoError(t, err)
		assert.Zero(t, rep3.Merge.Edges)
		assert.Equal(t, 2, rep3.Merge.Duplicates)
		assert.Equal(t, before.Stats(), g3.Stats())
	})

	t.Run("force extracts again", func(t *testing.T) {
		forced := *b
		forced.Force = true
		_, rep3, err := forced.Build(ctx, sampleChunks)
		require.NoError(t, err)
		assert.False(t, rep3.FromCache)
		assert.Equal(t, 2, rep3.Chunks)
	})

	t.Run("frozen graph rejects writes", func(t *testing.T) {
		assert.ErrorIs(t, g.AddEdge("fever", "treatments", "rest"), kgraph.ErrFrozen)
	})
}

func TestBuilder_CorruptSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("fail loudly", func(t *testing.T) {
		s := memory.NewMemorySnapshotStore()
		require.NoError(t, s.Put(ctx, DefaultSnapshotKey, []byte("not a graph")))
		b := &Builder{Store: s}
		_, _, err := b.Build(ctx, sampleChunks)
		assert.ErrorIs(t, err, rag.ErrCacheCorrupt)
	})

	t.Run("rebuild", func(t *testing.T) {
		s := memory.NewMemorySnapshotStore()
		require.NoError(t, s.Put(ctx, DefaultSnapshotKey, []byte("not a graph")))
		b := &Builder{Store: s, CacheFailure: Rebuild}
		g, rep, err := b.Build(ctx, sampleChunks)
		require.NoError(t, err)
		assert.True(t, rep.Rebuilt)
		assert.Equal(t, 4, g.Len())

		cached, err := kgraph.Load(ctx, s, DefaultSnapshotKey)
		require.NoError(t, err)
		assert.Equal(t, g.Stats(), cached.Stats())
	})
}

func TestBuilder_Invalidate(t *testing.T) {
	ctx := context.Background()
	s := memory.NewMemorySnapshotStore()
	b := &Builder{Store: s, Key: "kg_test.json"}

	_, _, err := b.Build(ctx, sampleChunks)
	require.NoError(t, err)
	ok, err := s.Exists(ctx, "kg_test.json")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, b.Invalidate(ctx))
	ok, err = s.Exists(ctx, "kg_test.json")
	require.NoError(t, err)
	assert.False(t, ok)

	_, rep, err := b.Build(ctx, sampleChunks)
	require.NoError(t, err)
	assert.False(t, rep.FromCache)
}

func TestBuilder_WorkersAreDeterministic(t *testing.T) {
	ctx := context.Background()
	var chunks rag.StaticChunks
	for i := 0; i < 40; i++ {
		chunks = append(chunks,
			fmt.Sprintf("Patient %d: hypertension affects the kidneys.", i),
			"Asthma symptoms include wheezing and cough.",
			"Pneumonia is treated with antibiotics.",
		)
	}

	seq, _, err := (&Builder{Workers: 1}).Build(ctx, chunks)
	require.NoError(t, err)
	par, _, err := (&Builder{Workers: 8}).Build(ctx, chunks)
	require.NoError(t, err)

	assert.Equal(t, seq.Names(), par.Names())
	assert.Equal(t, seq.Stats(), par.Stats())
	assert.Equal(t, seq.NeighborsOut("hypertension"), par.NeighborsOut("hypertension"))
}

func TestBuilder_ModelFallbacks(t *testing.T) {
	b := &Builder{Entities: extract.NewModelExtractor(nil)}
	g, rep, err := b.Build(context.Background(), sampleChunks)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rep.Fallbacks)
	assert.True(t, g.Has("diabetes"))
}

func TestBuilder_Errors(t *testing.T) {
	ctx := context.Background()

	_, _, err := (&Builder{}).Build(ctx, failingChunks{})
	assert.ErrorContains(t, err, "chunk source must not be read")

	_, _, err = (&Builder{}).Build(ctx, nil)
	assert.Error(t, err)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = (&Builder{}).Build(cctx, sampleChunks)
	assert.ErrorIs(t, err, context.Canceled)
}
