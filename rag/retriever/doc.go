// Package retriever implements the two retrieval channels the hybrid router
// fuses: GraphRetriever over the knowledge graph and VectorRetriever over an
// embedded chunk store.
package retriever
