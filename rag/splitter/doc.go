// Package splitter cuts loaded documents into overlapping chunks and adapts
// a loader plus a splitter into a rag.ChunkSource.
package splitter
