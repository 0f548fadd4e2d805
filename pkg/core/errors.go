package core

import "errors"

// Typed store failures. Broken-invariant conditions propagate to the caller
// wrapped around one of these sentinels; environmental unavailability
// (network, storage at startup) is absorbed by the stores instead.
var (
	// ErrNotFound is returned when an update targets a missing entity.
	// Deletes of missing entities are idempotent no-ops, not errors.
	ErrNotFound = errors.New("not found")

	// ErrInvalidReference is returned when a note points at a notebook that
	// does not exist.
	ErrInvalidReference = errors.New("invalid notebook reference")
)
