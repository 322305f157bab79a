package rag

import "errors"

var (
	// ErrModel marks transport or quota failures of a language model.
	ErrModel = errors.New("medgraph: model error")

	// ErrRecognizerUnavailable is returned when no NER capability is configured.
	ErrRecognizerUnavailable = errors.New("medgraph: entity recognizer unavailable")

	// ErrCacheCorrupt marks an unreadable or unrecognized graph snapshot.
	ErrCacheCorrupt = errors.New("medgraph: graph cache corrupt")

	// ErrSnapshotNotFound is returned when no graph snapshot exists yet.
	ErrSnapshotNotFound = errors.New("medgraph: graph snapshot not found")

	// ErrEmptyQuery is returned for blank queries.
	ErrEmptyQuery = errors.New("medgraph: empty query")

	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("medgraph: invalid config")
)
