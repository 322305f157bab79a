// Package medgraph is a medical question-answering core that combines a
// knowledge graph extracted from clinical documents with vector search over
// the same documents.
//
// The graph is built once from a source document (PDF, HTML, plain text or
// the bundled sample corpus): the text is split into chunks, medical
// entities are recognized by pattern lists or an optional language model,
// and relation templates turn sentences into (entity, relation, entity)
// facts. Curated facts converted from BioC corpora are merged on top, and
// the result is cached as a snapshot in a file, redis, sqlite, postgres or
// in-memory store.
//
// At query time the Router asks the vector index and the graph in parallel,
// names the route that produced evidence (both, vector_only, graph_only or
// none), composes a prompt and asks a language model for the answer.
//
// # Packages
//
//   - rag: shared types, configuration and capability interfaces
//   - rag/kgraph: the in-memory labeled multigraph and its snapshot format
//   - rag/extract: entity and relation extraction
//   - rag/curated: BioC conversion and curated fact merging
//   - rag/engine: the graph Builder and the query Router
//   - rag/retriever: graph and vector retrieval
//   - rag/loader, rag/splitter: document loading and chunking
//   - rag/store: vector stores and snapshot store selection
//   - store: snapshot store backends
//   - llms/groq: the Groq chat model
//   - log: leveled logging
//
// # Quick Start
//
//	medgraph convert --out medical_relations.json Train.BioC.JSON Dev.BioC.JSON
//	medgraph build --doc handbook.pdf
//	medgraph query "What treats fever?"
//	GROQ_API_KEY=... medgraph ask "What treats fever?"
//
// From Go:
//
//	g, _, err := (&engine.Builder{
//		Store:     snapshots,
//		Entities:  extract.NewPatternExtractor(),
//		Relations: extract.NewRelationExtractor(),
//		Curated:   records,
//	}).Build(ctx, splitter.Chunks{Loader: loader.NewSampleLoader(), Clean: true})
//	if err != nil {
//		return err
//	}
//	router := engine.NewRouter(vectors, retriever.NewGraphRetriever(g), rag.NewLLMGenerator(llm))
//	answer, details := router.Process(ctx, "What treats fever?")
package medgraph
