package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no snapshot is stored under a key.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot describes a stored blob without its payload.
type Snapshot struct {
	Key       string    `json:"key"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SnapshotStore persists opaque blobs by key. Put must replace an existing
// value atomically, so a concurrent Get never observes a partial write.
type SnapshotStore interface {
	// Put stores data under key, replacing any previous value
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the blob stored under key or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether key holds a blob
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources
	Close() error
}
