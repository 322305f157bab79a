// Package kgraph is the in-memory medical knowledge multigraph.
//
// Nodes are medical terms identified by their normalized name (lower-case,
// trimmed, at least three characters). Edges are directed and labeled, and
// the graph is a multigraph: the same ordered pair may be linked any number
// of times, with the same or different labels, and every parallel edge is
// kept and enumerated.
//
// # Storage
//
// Nodes and edges live in two arenas. Each node holds the indexes of its
// outgoing and incoming edges, so there are no pointer cycles and a
// snapshot can be written as flat lists:
//
//	g := kgraph.New()
//	g.AddNode("fever", kgraph.Symptoms, kgraph.ProvenancePDF)
//	g.AddEdge("fever", "treatments", "aspirin")
//	g.AddEdge("aspirin", "inverse_treatments", "fever")
//
// # Lifecycle
//
// A graph is built once (from a snapshot or by extraction, followed by the
// curated merge), then frozen. Frozen graphs reject writes and are safe for
// concurrent readers without locking. Building is single-writer.
package kgraph
