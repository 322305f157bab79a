// Package sqlite stores knowledge-graph snapshots in a local SQLite file.
//
//	s, err := sqlite.NewSqliteSnapshotStore(sqlite.SqliteOptions{Path: "./medgraph.db"})
//
// The table is created on open. List reports stored keys with their sizes.
package sqlite
