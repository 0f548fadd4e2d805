// Package storage provides the durable local key-value namespace the stores
// persist into. Each store owns exactly one fixed key and never touches
// another store's key.
package storage

import (
	"context"
	"errors"

	"github.com/whispernotes/whisper/pkg/core"
)

// ErrNotExist is returned by Read when the key has never been written or was
// deleted. Startup reads treat it as "fresh install", not as a failure.
var ErrNotExist = errors.New("storage key does not exist")

// Store is the contract for durable local storage. Values are opaque blobs;
// serialization is the caller's concern so every entity field round-trips
// losslessly.
type Store interface {
	// Read returns the blob stored under key, or ErrNotExist.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write persists the blob under key. The write must be atomic: a crash
	// mid-write never leaves a partially written blob behind.
	Write(ctx context.Context, key string, data []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Watchable is implemented by stores that can observe external changes to
// their keys (e.g. another process editing the state files).
type Watchable interface {
	// Watch emits an event for every key matching pattern that changes
	// behind the application's back. The channel closes when ctx ends.
	Watch(ctx context.Context, pattern string) (<-chan core.Event, error)
}
