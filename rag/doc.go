// Package rag holds the types shared by the medgraph packages: documents,
// triples, the capability interfaces the engine depends on (VectorSearcher,
// GraphQuerier, Generator, Recognizer, ChunkSource), sentinel errors and
// the YAML configuration.
//
// Adapters connect langchaingo components to these interfaces, so any
// langchaingo model, document loader, text splitter or embedder can back
// the engine:
//
//	gen := rag.NewLLMGenerator(model)
//	emb := rag.NewLangChainEmbedder(embedder)
package rag
