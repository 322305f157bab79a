package kgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/smallnest/medgraph/rag"
	"github.com/smallnest/medgraph/store"
)

const (
	// SnapshotFormat identifies medgraph graph snapshots.
	SnapshotFormat = "medgraph.kgraph"
	// SnapshotVersion is the current snapshot layout version.
	SnapshotVersion = 1
)

type snapshot struct {
	Format  string         `json:"format"`
	Version int            `json:"version"`
	Nodes   []snapshotNode `json:"nodes"`
	Edges   []snapshotEdge `json:"edges"`
}

type snapshotNode struct {
	Name       string     `json:"name"`
	Category   Category   `json:"category,omitempty"`
	Provenance Provenance `json:"provenance,omitempty"`
}

type snapshotEdge struct {
	Source   int    `json:"s"`
	Relation string `json:"r"`
	Target   int    `json:"t"`
}

// Encode writes the whole graph, edges in insertion order, as a versioned
// JSON snapshot.
func (g *Graph) Encode(w io.Writer) error {
	snap := snapshot{
		Format:  SnapshotFormat,
		Version: SnapshotVersion,
		Nodes:   make([]snapshotNode, len(g.nodes)),
		Edges:   make([]snapshotEdge, len(g.edges)),
	}
	for i, n := range g.nodes {
		snap.Nodes[i] = snapshotNode{Name: n.Name, Category: n.Category, Provenance: n.Provenance}
	}
	for i, e := range g.edges {
		snap.Edges[i] = snapshotEdge{Source: e.Source, Relation: e.Relation, Target: e.Target}
	}
	return json.NewEncoder(w).Encode(snap)
}

// Decode reads a snapshot written by Encode. Any malformed, foreign or
// future-version input yields an error wrapping rag.ErrCacheCorrupt.
func Decode(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", rag.ErrCacheCorrupt, err)
	}
	if snap.Format != SnapshotFormat {
		return nil, fmt.Errorf("%w: unexpected format %q", rag.ErrCacheCorrupt, snap.Format)
	}
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", rag.ErrCacheCorrupt, snap.Version)
	}

	g := New()
	for i, n := range snap.Nodes {
		name, err := normalizeName(n.Name)
		if err != nil || name != n.Name {
			return nil, fmt.Errorf("%w: node %d has invalid name %q", rag.ErrCacheCorrupt, i, n.Name)
		}
		if _, dup := g.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate node %q", rag.ErrCacheCorrupt, name)
		}
		g.insert(name, n.Category, n.Provenance)
	}
	for i, e := range snap.Edges {
		if e.Source < 0 || e.Source >= len(g.nodes) || e.Target < 0 || e.Target >= len(g.nodes) || e.Relation == "" {
			return nil, fmt.Errorf("%w: edge %d is invalid", rag.ErrCacheCorrupt, i)
		}
		g.link(e.Source, e.Relation, e.Target)
	}
	return g, nil
}

// Save encodes the graph and stores it under key.
func (g *Graph) Save(ctx context.Context, s store.SnapshotStore, key string) error {
	var buf bytes.Buffer
	if err := g.Encode(&buf); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	if err := s.Put(ctx, key, buf.Bytes()); err != nil {
		return fmt.Errorf("persist graph %s: %w", key, err)
	}
	return nil
}

// Load restores the graph stored under key. A missing snapshot yields
// rag.ErrSnapshotNotFound, an unreadable one rag.ErrCacheCorrupt.
func Load(ctx context.Context, s store.SnapshotStore, key string) (*Graph, error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", rag.ErrSnapshotNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", key, err)
	}
	g, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", key, err)
	}
	return g, nil
}
