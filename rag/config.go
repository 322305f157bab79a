package rag

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings for building and querying the medical graph.
type Config struct {
	// SnapshotURL selects the graph cache backend, e.g. "file://.",
	// "redis://localhost:6379/0", "sqlite://kg.db" or "memory://".
	SnapshotURL string `json:"snapshot_url" yaml:"snapshot_url"`
	SnapshotKey string `json:"snapshot_key" yaml:"snapshot_key"`

	// Document is the source document. Empty means the bundled sample corpus.
	Document    string `json:"document" yaml:"document"`
	CuratedFile string `json:"curated_file" yaml:"curated_file"`

	// Chunking for graph extraction and for the vector index.
	ChunkSize          int `json:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap       int `json:"chunk_overlap" yaml:"chunk_overlap"`
	VectorChunkSize    int `json:"vector_chunk_size" yaml:"vector_chunk_size"`
	VectorChunkOverlap int `json:"vector_chunk_overlap" yaml:"vector_chunk_overlap"`
	// Splitter is "recursive" (built in) or "langchain".
	Splitter string `json:"splitter" yaml:"splitter"`

	VectorK         int `json:"vector_k" yaml:"vector_k"`
	GraphMaxResults int `json:"graph_max_results" yaml:"graph_max_results"`

	// Workers shards chunk extraction. 1 keeps the build sequential.
	Workers int `json:"workers" yaml:"workers"`

	DedupeMerge      bool `json:"dedupe_merge" yaml:"dedupe_merge"`
	RebuildOnCorrupt bool `json:"rebuild_on_corrupt" yaml:"rebuild_on_corrupt"`
	UseRecognizer    bool `json:"use_recognizer" yaml:"use_recognizer"`

	Timeouts TimeoutConfig  `json:"timeouts" yaml:"timeouts"`
	LLM      LLMConfig      `json:"llm" yaml:"llm"`
	Qdrant   QdrantConfig   `json:"qdrant" yaml:"qdrant"`
	Embedder EmbedderConfig `json:"embedder" yaml:"embedder"`
}

// TimeoutConfig bounds each external capability call.
type TimeoutConfig struct {
	Vector     time.Duration `json:"vector" yaml:"vector"`
	Graph      time.Duration `json:"graph" yaml:"graph"`
	Generate   time.Duration `json:"generate" yaml:"generate"`
	Recognizer time.Duration `json:"recognizer" yaml:"recognizer"`
}

// LLMConfig configures the OpenAI-compatible generation endpoint.
type LLMConfig struct {
	Model       string  `json:"model" yaml:"model"`
	BaseURL     string  `json:"base_url" yaml:"base_url"`
	APIKey      string  `json:"api_key" yaml:"api_key"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// QdrantConfig enables the Qdrant vector backend when Addr is set.
type QdrantConfig struct {
	Addr       string `json:"addr" yaml:"addr"`
	Collection string `json:"collection" yaml:"collection"`
	PayloadKey string `json:"payload_key" yaml:"payload_key"`
}

// EmbedderConfig selects the embedding model of the vector channel.
type EmbedderConfig struct {
	// Provider is "mock" for offline hash vectors or "openai" for any
	// OpenAI-compatible /embeddings endpoint.
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model" yaml:"model"`
	BaseURL  string `json:"base_url" yaml:"base_url"`
	// APIKey falls back to $OPENAI_API_KEY.
	APIKey    string `json:"api_key" yaml:"api_key"`
	Dimension int    `json:"dimension" yaml:"dimension"`
}

// DefaultConfig returns the settings of the reference deployment.
func DefaultConfig() Config {
	return Config{
		SnapshotURL:        "file://.",
		SnapshotKey:        "kg_cache.json",
		CuratedFile:        "medical_relations.json",
		ChunkSize:          1000,
		ChunkOverlap:       100,
		VectorChunkSize:    500,
		VectorChunkOverlap: 50,
		Splitter:           "recursive",
		VectorK:            5,
		GraphMaxResults:    5,
		Workers:            1,
		Timeouts: TimeoutConfig{
			Vector:     10 * time.Second,
			Graph:      5 * time.Second,
			Generate:   60 * time.Second,
			Recognizer: 5 * time.Second,
		},
		LLM: LLMConfig{
			Model:   "llama3-8b-8192",
			BaseURL: "https://api.groq.com/openai/v1",
		},
		Qdrant: QdrantConfig{
			Collection: "medical_docs",
			PayloadKey: "text",
		},
		Embedder: EmbedderConfig{
			Provider:  "mock",
			Dimension: 64,
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig. A missing file yields
// the defaults. MEDGRAPH_SNAPSHOT_URL and GROQ_API_KEY override the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("MEDGRAPH_SNAPSHOT_URL"); v != "" {
		cfg.SnapshotURL = v
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v
	}
	return cfg, cfg.Validate()
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch {
	case c.SnapshotKey == "":
		return fmt.Errorf("%w: snapshot_key is empty", ErrInvalidConfig)
	case c.ChunkSize <= 0 || c.VectorChunkSize <= 0:
		return fmt.Errorf("%w: chunk sizes must be positive", ErrInvalidConfig)
	case c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize:
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size)", ErrInvalidConfig)
	case c.VectorChunkOverlap < 0 || c.VectorChunkOverlap >= c.VectorChunkSize:
		return fmt.Errorf("%w: vector_chunk_overlap must be in [0, vector_chunk_size)", ErrInvalidConfig)
	case c.VectorK <= 0 || c.GraphMaxResults <= 0:
		return fmt.Errorf("%w: vector_k and graph_max_results must be positive", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.Splitter != "" && c.Splitter != "recursive" && c.Splitter != "langchain":
		return fmt.Errorf("%w: unknown splitter %q", ErrInvalidConfig, c.Splitter)
	case c.Embedder.Provider != "" && c.Embedder.Provider != "mock" && c.Embedder.Provider != "openai":
		return fmt.Errorf("%w: unknown embedder provider %q", ErrInvalidConfig, c.Embedder.Provider)
	case c.Embedder.Dimension < 0:
		return fmt.Errorf("%w: embedder dimension must not be negative", ErrInvalidConfig)
	}
	return nil
}
