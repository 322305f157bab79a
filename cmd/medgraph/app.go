package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/smallnest/medgraph/llms/groq"
	"github.com/smallnest/medgraph/log"
	"github.com/smallnest/medgraph/rag"
	"github.com/smallnest/medgraph/rag/curated"
	"github.com/smallnest/medgraph/rag/engine"
	"github.com/smallnest/medgraph/rag/extract"
	"github.com/smallnest/medgraph/rag/kgraph"
	"github.com/smallnest/medgraph/rag/loader"
	"github.com/smallnest/medgraph/rag/splitter"
	ragstore "github.com/smallnest/medgraph/rag/store"
	"github.com/smallnest/medgraph/store"
)

// app carries the global flags and the loaded configuration.
type app struct {
	configPath string
	logLevel   string
	snapshot   string

	cfg rag.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "medgraph",
		Short:        "Medical knowledge graph with hybrid retrieval",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "medgraph.yaml", "config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "debug, info, warn, error or none")
	root.PersistentFlags().StringVar(&a.snapshot, "snapshot", "", "snapshot store URL, overrides the config")

	root.AddCommand(
		newConvertCmd(a),
		newBuildCmd(a),
		newStatsCmd(a),
		newQueryCmd(a),
		newAskCmd(a),
		newInvalidateCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	level, err := log.ParseLevel(a.logLevel)
	if err != nil {
		return err
	}
	log.SetDefaultLogger(log.NewCLILogger(cmd.ErrOrStderr(), level))

	cfg, err := rag.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.snapshot != "" {
		cfg.SnapshotURL = a.snapshot
	}
	a.cfg = cfg
	return nil
}

// curatedRecords reads the curated file. A missing file yields no records.
func (a *app) curatedRecords() (curated.Records, error) {
	if a.cfg.CuratedFile == "" {
		return nil, nil
	}
	recs, err := curated.ReadFile(a.cfg.CuratedFile)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("curated file %s not found, continuing without curated facts", a.cfg.CuratedFile)
		return nil, nil
	}
	return recs, err
}

func (a *app) chunks(size, overlap int, clean bool) (rag.ChunkSource, error) {
	l, err := loader.ForFile(a.cfg.Document)
	if err != nil {
		return nil, err
	}
	sp, err := splitter.New(a.cfg.Splitter, size, overlap)
	if err != nil {
		return nil, err
	}
	return splitter.Chunks{Loader: l, Splitter: sp, Clean: clean}, nil
}

func (a *app) llm() (*groq.LLM, error) {
	return groq.New(
		groq.WithAPIKey(a.cfg.LLM.APIKey),
		groq.WithModel(a.cfg.LLM.Model),
		groq.WithBaseURL(a.cfg.LLM.BaseURL),
		groq.WithTemperature(float32(a.cfg.LLM.Temperature)),
	)
}

func (a *app) entityExtractor() (extract.EntityExtractor, error) {
	if !a.cfg.UseRecognizer {
		return extract.NewPatternExtractor(), nil
	}
	llm, err := a.llm()
	if err != nil {
		return nil, fmt.Errorf("entity recognizer: %w", err)
	}
	return extract.NewModelExtractor(
		extract.NewLLMRecognizer(llm),
		extract.WithTimeout(a.cfg.Timeouts.Recognizer),
		extract.WithFallback(extract.NewPatternExtractor()),
	), nil
}

func (a *app) openStore(ctx context.Context) (store.SnapshotStore, error) {
	s, err := ragstore.NewSnapshotStore(ctx, a.cfg.SnapshotURL)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store %s: %w", a.cfg.SnapshotURL, err)
	}
	return s, nil
}

type buildFlags struct {
	force            bool
	rebuildOnCorrupt bool
}

func (a *app) builder(s store.SnapshotStore, f buildFlags) (*engine.Builder, error) {
	ents, err := a.entityExtractor()
	if err != nil {
		return nil, err
	}
	recs, err := a.curatedRecords()
	if err != nil {
		return nil, err
	}
	policy := engine.FailLoudly
	if f.rebuildOnCorrupt || a.cfg.RebuildOnCorrupt {
		policy = engine.Rebuild
	}
	return &engine.Builder{
		Store:        s,
		Key:          a.cfg.SnapshotKey,
		Entities:     ents,
		Relations:    extract.NewRelationExtractor(),
		Curated:      recs,
		Workers:      a.cfg.Workers,
		Force:        f.force,
		DedupeMerge:  a.cfg.DedupeMerge,
		CacheFailure: policy,
	}, nil
}

// buildGraph returns the query-time graph, loading the snapshot when one
// exists.
func (a *app) buildGraph(ctx context.Context, f buildFlags) (*kgraph.Graph, engine.BuildReport, error) {
	s, err := a.openStore(ctx)
	if err != nil {
		return nil, engine.BuildReport{}, err
	}
	defer s.Close()

	b, err := a.builder(s, f)
	if err != nil {
		return nil, engine.BuildReport{}, err
	}
	src, err := a.chunks(a.cfg.ChunkSize, a.cfg.ChunkOverlap, true)
	if err != nil {
		return nil, engine.BuildReport{}, err
	}
	return b.Build(ctx, src)
}
