package storage

import (
	"github.com/aretw0/introspection"
)

// FSState exposes internal state for observability.
type FSState struct {
	Dir           string `json:"dir"`
	WatcherActive bool   `json:"watcher_active"`
	KeysWritten   int    `json:"keys_written"`
}

// State implements introspection.Introspectable.
func (f *FS) State() any {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return FSState{
		Dir:           f.config.Dir,
		WatcherActive: f.watcherActive,
		KeysWritten:   len(f.lastWrite),
	}
}

// ComponentType implements introspection.Component.
func (f *FS) ComponentType() string {
	return "storage-fs"
}

var _ introspection.Introspectable = (*FS)(nil)
var _ introspection.Component = (*FS)(nil)
