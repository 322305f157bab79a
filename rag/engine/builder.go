package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/smallnest/medgraph/log"
	"github.com/smallnest/medgraph/rag"
	"github.com/smallnest/medgraph/rag/curated"
	"github.com/smallnest/medgraph/rag/extract"
	"github.com/smallnest/medgraph/rag/kgraph"
	"github.com/smallnest/medgraph/store"
)

// DefaultSnapshotKey names the graph snapshot when Builder.Key is empty.
const DefaultSnapshotKey = "kg_cache.json"

// CacheFailurePolicy decides what Build does with an unreadable snapshot.
type CacheFailurePolicy int

const (
	// FailLoudly returns an error wrapping rag.ErrCacheCorrupt.
	FailLoudly CacheFailurePolicy = iota
	// Rebuild logs a warning, extracts from scratch and overwrites the snapshot.
	Rebuild
)

func (p CacheFailurePolicy) String() string {
	if p == Rebuild {
		return "rebuild"
	}
	return "fail"
}

// BuildReport describes one Build call.
type BuildReport struct {
	Key       string              `json:"key"`
	FromCache bool                `json:"from_cache"`
	Rebuilt   bool                `json:"rebuilt"`
	Chunks    int                 `json:"chunks"`
	Entities  int                 `json:"entities"`
	Triples   int                 `json:"triples"`
	Fallbacks int64               `json:"fallbacks"`
	Merge     curated.MergeResult `json:"merge"`
	Stats     kgraph.Stats        `json:"stats"`
	Duration  time.Duration       `json:"duration"`
}

// Builder produces the query-time graph. The graph is loaded from Store
// when a snapshot exists, or extracted from chunks otherwise. The curated
// records are merged on both paths, the result is frozen and saved back.
//
// Loading a snapshot that already holds the curated facts and merging again
// duplicates their edges unless DedupeMerge is set.
type Builder struct {
	// Store persists snapshots. With a nil Store every Build extracts.
	Store store.SnapshotStore
	Key   string

	Entities  extract.EntityExtractor
	Relations *extract.RelationExtractor
	Curated   curated.Records

	// Workers shards extraction across goroutines. Results are applied in
	// chunk order regardless.
	Workers int
	// Force skips the snapshot and always extracts.
	Force        bool
	DedupeMerge  bool
	CacheFailure CacheFailurePolicy
}

type chunkResult struct {
	entities extract.Entities
	triples  []rag.Triple
}

type fallbackCounter interface {
	Fallbacks() int64
}

func (b *Builder) key() string {
	if b.Key == "" {
		return DefaultSnapshotKey
	}
	return b.Key
}

// Build returns a frozen graph. Ingestion errors are returned, not hidden.
func (b *Builder) Build(ctx context.Context, src rag.ChunkSource) (*kgraph.Graph, BuildReport, error) {
	start := time.Now()
	rep := BuildReport{Key: b.key()}

	ctx, span := tracer.Start(ctx, "medgraph.builder.build")
	defer span.End()

	g, err := b.build(ctx, src, &rep)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, rep, err
	}

	rep.Stats = g.Stats()
	rep.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Bool("medgraph.from_cache", rep.FromCache),
		attribute.Int("medgraph.chunks", rep.Chunks),
		attribute.Int("medgraph.nodes", rep.Stats.NodeCount),
		attribute.Int("medgraph.edges", rep.Stats.EdgeCount),
	)
	span.SetStatus(codes.Ok, "")
	log.Info("knowledge graph ready: %d nodes, %d edges (cache=%t, %s)",
		rep.Stats.NodeCount, rep.Stats.EdgeCount, rep.FromCache, rep.Duration.Round(time.Millisecond))
	return g, rep, nil
}

func (b *Builder) build(ctx context.Context, src rag.ChunkSource, rep *BuildReport) (*kgraph.Graph, error) {
	g, err := b.loadCached(ctx, rep)
	if err != nil {
		return nil, err
	}

	if g == nil {
		if src == nil {
			return nil, errors.New("no chunk source to build the knowledge graph from")
		}
		g = kgraph.New()
		if err := b.extract(ctx, src, g, rep); err != nil {
			return nil, err
		}
	}

	if len(b.Curated) > 0 {
		rep.Merge, err = curated.Merge(g, b.Curated, curated.WithDedupe(b.DedupeMerge))
		if err != nil {
			return nil, fmt.Errorf("merge curated relations: %w", err)
		}
		log.Info("merged %d curated entities, %d edges", rep.Merge.Entities, rep.Merge.Edges)
	}

	g.Freeze()
	if b.Store != nil {
		if err := g.Save(ctx, b.Store, rep.Key); err != nil {
			return nil, err
		}
		log.Info("knowledge graph saved to snapshot %s", rep.Key)
	}
	return g, nil
}

// loadCached returns nil, nil when extraction should run.
func (b *Builder) loadCached(ctx context.Context, rep *BuildReport) (*kgraph.Graph, error) {
	if b.Store == nil || b.Force {
		return nil, nil
	}
	g, err := kgraph.Load(ctx, b.Store, rep.Key)
	switch {
	case err == nil:
		rep.FromCache = true
		log.Info("loaded knowledge graph from snapshot %s", rep.Key)
		return g, nil
	case errors.Is(err, rag.ErrSnapshotNotFound):
		log.Info("no snapshot %s, building knowledge graph", rep.Key)
		return nil, nil
	case errors.Is(err, rag.ErrCacheCorrupt) && b.CacheFailure == Rebuild:
		log.Warn("snapshot %s unreadable, rebuilding: %v", rep.Key, err)
		rep.Rebuilt = true
		return nil, nil
	}
	return nil, err
}

func (b *Builder) extract(ctx context.Context, src rag.ChunkSource, g *kgraph.Graph, rep *BuildReport) error {
	chunks, err := src.Chunks(ctx)
	if err != nil {
		return fmt.Errorf("load chunks: %w", err)
	}

	entities := b.Entities
	if entities == nil {
		entities = extract.NewPatternExtractor()
	}
	relations := b.Relations
	if relations == nil {
		relations = extract.NewRelationExtractor()
	}
	var before int64
	fc, counting := entities.(fallbackCounter)
	if counting {
		before = fc.Fallbacks()
	}

	results := make([]chunkResult, len(chunks))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(b.Workers, 1))
	for i, chunk := range chunks {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			ents := entities.Extract(egctx, chunk)
			results[i] = chunkResult{entities: ents, triples: relations.Extract(chunk, ents)}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("extract chunks: %w", err)
	}

	for _, res := range results {
		if err := apply(g, res, rep); err != nil {
			return err
		}
	}

	rep.Chunks = len(chunks)
	buildChunks.Add(float64(len(chunks)))
	if counting {
		rep.Fallbacks = fc.Fallbacks() - before
		buildFallbacks.Add(float64(rep.Fallbacks))
	}
	log.Debug("extracted %d entities and %d triples from %d chunks", rep.Entities, rep.Triples, rep.Chunks)
	return nil
}

func apply(g *kgraph.Graph, res chunkResult, rep *BuildReport) error {
	for _, cat := range kgraph.ExtractedCategories {
		for _, name := range res.entities[cat] {
			if _, err := g.AddNode(name, cat, kgraph.ProvenancePDF); err != nil {
				if errors.Is(err, kgraph.ErrInvalidName) {
					continue
				}
				return fmt.Errorf("add entity %q: %w", name, err)
			}
			rep.Entities++
		}
	}
	for _, t := range res.triples {
		if err := g.AddEdge(t.Subject, t.Relation, t.Object); err != nil {
			if errors.Is(err, kgraph.ErrInvalidName) {
				continue
			}
			return fmt.Errorf("add relation %s: %w", t, err)
		}
		rep.Triples++
	}
	return nil
}

// Invalidate deletes the snapshot so the next Build extracts again.
func (b *Builder) Invalidate(ctx context.Context) error {
	if b.Store == nil {
		return nil
	}
	if err := b.Store.Delete(ctx, b.key()); err != nil {
		return fmt.Errorf("invalidate snapshot %s: %w", b.key(), err)
	}
	log.Info("snapshot %s invalidated", b.key())
	return nil
}
