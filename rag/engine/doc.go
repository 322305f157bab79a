// Package engine wires the knowledge-graph core together. Builder produces
// the frozen graph from document chunks, a snapshot and the curated
// records. Router answers questions by fusing vector and graph retrieval
// into one generation prompt, and contains every failure of those
// capabilities.
package engine
