// Package store holds the storage pieces the RAG pipeline plugs in: an
// in-memory cosine vector store, a qdrant-backed searcher, a deterministic
// mock embedder, and NewSnapshotStore, which opens a graph snapshot backend
// from a URL.
package store
