package kgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddNode(t *testing.T) {
	t.Run("normalizes identity", func(t *testing.T) {
		g := New()
		a, err := g.AddNode("  Fever ", Symptoms, ProvenancePDF)
		require.NoError(t, err)
		b, err := g.AddNode("fever", Symptoms, ProvenancePDF)
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Equal(t, 1, g.Len())
		assert.True(t, g.Has("FEVER"))
	})

	t.Run("last write wins on attributes", func(t *testing.T) {
		g := New()
		_, _ = g.AddNode("aspirin", Treatments, ProvenancePDF)
		_, _ = g.AddNode("aspirin", RelatedEntity, ProvenanceExternal)

		n, err := g.Node("aspirin")
		require.NoError(t, err)
		assert.Equal(t, RelatedEntity, n.Category)
		assert.Equal(t, ProvenanceExternal, n.Provenance)
	})

	t.Run("rejects short names", func(t *testing.T) {
		g := New()
		_, err := g.AddNode(" ab ", Diseases, ProvenancePDF)
		assert.ErrorIs(t, err, ErrInvalidName)
		assert.Equal(t, 0, g.Len())
	})

	t.Run("length counts characters", func(t *testing.T) {
		g := New()
		for _, name := range []string{"胃", "éa", "肝炎"} {
			_, err := g.AddNode(name, Anatomy, ProvenanceExternal)
			assert.ErrorIs(t, err, ErrInvalidName, name)
		}
		assert.Equal(t, 0, g.Len())

		_, err := g.AddNode("胃溃疡", Diseases, ProvenanceExternal)
		require.NoError(t, err)
		_, err = g.AddNode("fièvre", Symptoms, ProvenanceExternal)
		require.NoError(t, err)
		assert.Equal(t, 2, g.Len())
	})
}

func TestGraph_ParallelEdges(t *testing.T) {
	g := New()
	require.NoError(t, g.AddEdge("smoking", "causes", "cancer"))
	require.NoError(t, g.AddEdge("smoking", "related_to", "cancer"))
	require.NoError(t, g.AddEdge("smoking", "causes", "cancer"))

	assert.Equal(t, 3, g.EdgeCount())
	assert.Equal(t, 2, g.Len())

	out := g.NeighborsOut("smoking")
	assert.Equal(t, []Neighbor{
		{Relation: "causes", Name: "cancer"},
		{Relation: "related_to", Name: "cancer"},
		{Relation: "causes", Name: "cancer"},
	}, out)

	in := g.NeighborsIn("cancer")
	assert.Len(t, in, 3)
	assert.Equal(t, "smoking", in[1].Name)

	assert.True(t, g.HasEdge("smoking", "related_to", "cancer"))
	assert.False(t, g.HasEdge("cancer", "causes", "smoking"))
	assert.Nil(t, g.NeighborsOut("unknown-node"))
}

func TestGraph_AddEdgeValidation(t *testing.T) {
	g := New()
	assert.ErrorIs(t, g.AddEdge("fever", "", "aspirin"), ErrInvalidRelation)
	assert.ErrorIs(t, g.AddEdge("fever", "treatments", "x"), ErrInvalidName)

	require.NoError(t, g.AddEdge("fever", "treatments", "aspirin"))
	n, err := g.Node("aspirin")
	require.NoError(t, err)
	assert.Equal(t, Category(""), n.Category)
}

func TestGraph_Freeze(t *testing.T) {
	g := New()
	_, _ = g.AddNode("fever", Symptoms, ProvenancePDF)
	g.Freeze()

	_, err := g.AddNode("cough", Symptoms, ProvenancePDF)
	assert.ErrorIs(t, err, ErrFrozen)
	assert.ErrorIs(t, g.AddEdge("fever", "affects", "body"), ErrFrozen)
	assert.True(t, g.Frozen())
}

func TestGraph_Stats(t *testing.T) {
	g := New()
	_, _ = g.AddNode("diabetes", Diseases, ProvenancePDF)
	_, _ = g.AddNode("insulin", Treatments, ProvenancePDF)
	_, _ = g.AddNode("fever", MedicalEntity, ProvenanceExternal)
	require.NoError(t, g.AddEdge("diabetes", "treated_with", "insulin"))
	require.NoError(t, g.AddEdge("diabetes", "affects", "pancreas"))

	st := g.Stats()
	assert.Equal(t, 4, st.NodeCount)
	assert.Equal(t, 2, st.EdgeCount)
	assert.Equal(t, 4, st.DistinctCategories)
	assert.Equal(t, map[string]int{"diseases": 1, "treatments": 1, "medical_entity": 1, "unknown": 1}, st.CategoryBreakdown)
	assert.Equal(t, map[string]int{"pdf": 2, "external": 1, "unknown": 1}, st.ProvenanceBreakdown)

	ext := st.External()
	assert.Equal(t, 4, ext.Nodes)
	assert.Equal(t, 2, ext.Edges)
	assert.Equal(t, 4, ext.NodeTypes)
	assert.Equal(t, st.CategoryBreakdown, ext.TypeBreakdown)
}
