package kgraph

import "errors"

var (
	// ErrInvalidName is returned for names shorter than MinNameLength after normalization.
	ErrInvalidName = errors.New("kgraph: invalid node name")

	// ErrInvalidRelation is returned for an empty edge label.
	ErrInvalidRelation = errors.New("kgraph: invalid relation")

	// ErrFrozen is returned when writing to a frozen graph.
	ErrFrozen = errors.New("kgraph: graph is frozen")

	// ErrNodeNotFound is returned by lookups of unknown names.
	ErrNodeNotFound = errors.New("kgraph: node not found")
)
