// Package store persists knowledge-graph snapshots.
//
// A snapshot is the whole graph encoded as one opaque blob (see
// rag/kgraph). Loading is all-or-nothing: when a blob exists under the
// configured key the graph is restored from it and extraction is skipped.
//
// Backends:
//   - file: one file per key, written to a temp file and renamed into place
//   - memory: process-local map, for tests and throwaway runs
//   - redis: one string key per snapshot, via go-redis
//   - sqlite: a snapshots table in a local database file
//   - postgres: the same table on PostgreSQL through pgx
//
// Every backend implements SnapshotStore:
//
//	type SnapshotStore interface {
//	    Put(ctx context.Context, key string, data []byte) error
//	    Get(ctx context.Context, key string) ([]byte, error)
//	    Exists(ctx context.Context, key string) (bool, error)
//	    Delete(ctx context.Context, key string) error
//	    Close() error
//	}
//
// Get returns ErrNotFound for a missing key. rag/store.NewSnapshotStore
// opens a backend from a URL such as "file://./cache" or
// "redis://localhost:6379/0".
package store
