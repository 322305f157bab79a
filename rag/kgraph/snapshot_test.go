package kgraph

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/smallnest/medgraph/rag"
	"github.com/smallnest/medgraph/store/file"
	"github.com/smallnest/medgraph/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph(t *testing.T) *Graph {
	t.Helper()
	g := New()
	_, _ = g.AddNode("fever", MedicalEntity, ProvenanceExternal)
	_, _ = g.AddNode("aspirin", RelatedEntity, ProvenanceExternal)
	_, _ = g.AddNode("diabetes", Diseases, ProvenancePDF)
	require.NoError(t, g.AddEdge("fever", "treatments", "aspirin"))
	require.NoError(t, g.AddEdge("aspirin", "inverse_treatments", "fever"))
	require.NoError(t, g.AddEdge("fever", "treatments", "aspirin"))
	require.NoError(t, g.AddEdge("diabetes", "affects", "pancreas"))
	return g
}

func TestSnapshot_RoundTrip(t *testing.T) {
	g := sampleGraph(t)

	var buf bytes.Buffer
	require.NoError(t, g.Encode(&buf))
	assert.Contains(t, buf.String(), `"format":"medgraph.kgraph"`)
	assert.Contains(t, buf.String(), `"version":1`)

	loaded, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, g.Stats(), loaded.Stats())
	assert.Equal(t, g.Names(), loaded.Names())
	assert.Equal(t, g.NeighborsOut("fever"), loaded.NeighborsOut("fever"))
	assert.Equal(t, g.NeighborsIn("fever"), loaded.NeighborsIn("fever"))
	assert.False(t, loaded.Frozen())
}

func TestSnapshot_Corrupt(t *testing.T) {
	cases := map[string]string{
		"not json":       "\x80\x04pickle",
		"foreign format": `{"format":"other","version":1}`,
		"future version": `{"format":"medgraph.kgraph","version":99}`,
		"bad edge":       `{"format":"medgraph.kgraph","version":1,"nodes":[{"name":"fever"}],"edges":[{"s":0,"r":"x","t":4}]}`,
		"bad name":       `{"format":"medgraph.kgraph","version":1,"nodes":[{"name":"Fever"}]}`,
		"duplicate name": `{"format":"medgraph.kgraph","version":1,"nodes":[{"name":"fever"},{"name":"fever"}]}`,
		"trailing bytes": `{"format":"medgraph.kgraph","version":1,"nodes":[{"name":"fever"}]}{"garbage":true}`,
		"trailing text":  "{\"format\":\"medgraph.kgraph\",\"version\":1}\nxyz",
	}
	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(blob))
			assert.ErrorIs(t, err, rag.ErrCacheCorrupt)
		})
	}
}

func TestSnapshot_SaveLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("memory backend", func(t *testing.T) {
		s := memory.NewMemorySnapshotStore()
		_, err := Load(ctx, s, "kg_cache.json")
		assert.ErrorIs(t, err, rag.ErrSnapshotNotFound)

		g := sampleGraph(t)
		require.NoError(t, g.Save(ctx, s, "kg_cache.json"))
		loaded, err := Load(ctx, s, "kg_cache.json")
		require.NoError(t, err)
		assert.Equal(t, g.Stats(), loaded.Stats())
	})

	t.Run("file backend", func(t *testing.T) {
		s, err := file.NewFileSnapshotStore(t.TempDir())
		require.NoError(t, err)

		g := sampleGraph(t)
		require.NoError(t, g.Save(ctx, s, "kg_cache.json"))
		loaded, err := Load(ctx, s, "kg_cache.json")
		require.NoError(t, err)
		assert.Equal(t, g.Stats(), loaded.Stats())
	})

	t.Run("corrupt blob", func(t *testing.T) {
		s := memory.NewMemorySnapshotStore()
		require.NoError(t, s.Put(ctx, "kg_cache.json", []byte("garbage")))
		_, err := Load(ctx, s, "kg_cache.json")
		assert.ErrorIs(t, err, rag.ErrCacheCorrupt)
	})
}
