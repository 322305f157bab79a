package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smallnest/medgraph/log"
	"github.com/smallnest/medgraph/rag"
	"github.com/smallnest/medgraph/rag/curated"
	"github.com/smallnest/medgraph/rag/engine"
	"github.com/smallnest/medgraph/rag/retriever"
	ragstore "github.com/smallnest/medgraph/rag/store"
)

func newConvertCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "convert [bioc files...]",
		Short: "Convert BioC JSON corpora into a curated relation file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = a.cfg.CuratedFile
			}
			recs, rep, err := curated.ConvertFiles(cmd.Context(), args...)
			if err != nil {
				return err
			}
			if err := curated.WriteFile(out, recs); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			title(w, "Curated relations")
			field(w, "Files", strings.Join(rep.Files, ", "))
			field(w, "Documents", rep.Documents)
			field(w, "Relations", rep.Relations)
			field(w, "Skipped", rep.Skipped)
			field(w, "Entities", rep.Entities)
			for _, bucket := range curated.Buckets {
				field(w, "  "+bucket, rep.Buckets[bucket])
			}
			field(w, "Written to", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: curated_file from the config)")
	return cmd
}

func newBuildCmd(a *app) *cobra.Command {
	var (
		f   buildFlags
		doc string
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the knowledge graph, or load it from the snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if doc != "" {
				a.cfg.Document = doc
			}
			_, rep, err := a.buildGraph(cmd.Context(), f)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			title(w, "Knowledge graph")
			field(w, "Snapshot", a.cfg.SnapshotURL+" "+rep.Key)
			switch {
			case rep.FromCache:
				field(w, "Source", "snapshot")
			case rep.Rebuilt:
				field(w, "Source", "rebuilt after corrupt snapshot")
			default:
				field(w, "Source", "extracted")
				field(w, "Chunks", rep.Chunks)
				field(w, "Entities", rep.Entities)
				field(w, "Triples", rep.Triples)
			}
			if rep.Fallbacks > 0 {
				field(w, "Recognizer fallbacks", rep.Fallbacks)
			}
			field(w, "Curated edges", rep.Merge.Edges)
			field(w, "Nodes", rep.Stats.NodeCount)
			field(w, "Edges", rep.Stats.EdgeCount)
			field(w, "Took", rep.Duration.Round(1e6))
			return nil
		},
	}
	cmd.Flags().BoolVar(&f.force, "force", false, "ignore the snapshot and extract again")
	cmd.Flags().BoolVar(&f.rebuildOnCorrupt, "rebuild-on-corrupt", false, "rebuild instead of failing on a corrupt snapshot")
	cmd.Flags().StringVar(&doc, "doc", "", "source document (pdf, html or text; default: sample corpus)")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print graph statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := a.buildGraph(cmd.Context(), buildFlags{})
			if err != nil {
				return err
			}
			stats := g.Stats().External()

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}
			title(w, "Graph statistics")
			field(w, "Nodes", stats.Nodes)
			field(w, "Edges", stats.Edges)
			field(w, "Node types", stats.NodeTypes)
			for _, k := range sortedKeys(stats.TypeBreakdown) {
				field(w, "  "+k, stats.TypeBreakdown[k])
			}
			title(w, "Sources")
			for _, k := range sortedKeys(stats.SourceBreakdown) {
				field(w, "  "+k, stats.SourceBreakdown[k])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newQueryCmd(a *app) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "List graph relationships relevant to a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := a.buildGraph(cmd.Context(), buildFlags{})
			if err != nil {
				return err
			}
			results, err := retriever.NewGraphRetriever(g).Query(cmd.Context(), strings.Join(args, " "), n)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			title(w, "Relationships")
			if len(results) == 0 {
				fmt.Fprintln(w, "No relationships found.")
			}
			for _, r := range results {
				fmt.Fprintf(w, "- %s\n", r)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "max", "n", retriever.DefaultMaxResults, "maximum number of results")
	return cmd
}

func newAskCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question with hybrid vector and graph retrieval",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			g, _, err := a.buildGraph(ctx, buildFlags{})
			if err != nil {
				return err
			}
			vector, closeVector, err := a.vectorSearcher(cmd)
			if err != nil {
				return err
			}
			defer closeVector()

			llm, err := a.llm()
			if err != nil {
				return err
			}
			router := engine.NewRouter(vector, retriever.NewGraphRetriever(g), rag.NewLLMGenerator(llm),
				engine.WithVectorK(a.cfg.VectorK),
				engine.WithGraphMaxResults(a.cfg.GraphMaxResults),
				engine.WithVectorTimeout(a.cfg.Timeouts.Vector),
				engine.WithGraphTimeout(a.cfg.Timeouts.Graph),
				engine.WithGenerateTimeout(a.cfg.Timeouts.Generate),
			)
			answer, details := router.Process(ctx, strings.Join(args, " "))

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Answer  string               `json:"answer"`
					Sources engine.SourceDetails `json:"sources"`
				}{answer, details})
			}
			fmt.Fprintf(w, "%s %s\n\n", titleStyle.Render("Answer"), routeBadge(details.Route))
			fmt.Fprintln(w, answer)
			fmt.Fprintln(w)
			field(w, "Document chunks", len(details.VectorResults))
			field(w, "Graph relationships", len(details.GraphResults))
			for _, r := range details.GraphResults {
				fmt.Fprintf(w, "- %s\n", r)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the answer and sources as JSON")
	return cmd
}

func newInvalidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate",
		Short: "Delete the graph snapshot so the next build extracts again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			b := &engine.Builder{Store: s, Key: a.cfg.SnapshotKey}
			if err := b.Invalidate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s removed from %s\n", a.cfg.SnapshotKey, a.cfg.SnapshotURL)
			return nil
		},
	}
}

// vectorSearcher indexes the document at the vector chunk size, in qdrant
// when an address is configured and in memory otherwise.
func (a *app) vectorSearcher(cmd *cobra.Command) (rag.VectorSearcher, func(), error) {
	ctx := cmd.Context()
	src, err := a.chunks(a.cfg.VectorChunkSize, a.cfg.VectorChunkOverlap, false)
	if err != nil {
		return nil, nil, err
	}
	chunks, err := src.Chunks(ctx)
	if err != nil {
		return nil, nil, err
	}
	emb, err := ragstore.NewEmbedder(a.cfg.Embedder)
	if err != nil {
		return nil, nil, err
	}

	if a.cfg.Qdrant.Addr != "" {
		q, err := ragstore.NewQdrantSearcher(ragstore.QdrantOptions{
			Addr:       a.cfg.Qdrant.Addr,
			Collection: a.cfg.Qdrant.Collection,
			PayloadKey: a.cfg.Qdrant.PayloadKey,
		}, emb)
		if err != nil {
			return nil, nil, err
		}
		if err := q.Index(ctx, chunks); err != nil {
			q.Close()
			return nil, nil, err
		}
		log.Info("indexed %d chunks into qdrant collection %s", len(chunks), a.cfg.Qdrant.Collection)
		return q, func() { q.Close() }, nil
	}

	r := retriever.NewVectorRetriever(ragstore.NewInMemoryVectorStore(emb), emb)
	if err := r.Index(ctx, chunks); err != nil {
		return nil, nil, err
	}
	log.Debug("indexed %d chunks in memory", len(chunks))
	return r, func() {}, nil
}

func sortedKeys(m map[string]int) []string {
	return slices.Sorted(maps.Keys(m))
}
