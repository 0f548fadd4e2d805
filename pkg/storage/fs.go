package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// blobExt is the on-disk extension for state blobs. The key is the filename
// without it, so Watch can map file events back to keys.
const blobExt = ".json"

// FSConfig holds the configuration for the filesystem store.
type FSConfig struct {
	Dir       string
	MustExist bool
	Logger    *slog.Logger
	// ErrorHandler receives runtime watcher failures which are otherwise
	// only logged.
	ErrorHandler func(error)
}

// FS implements Store on a directory with one file per key. Writes go
// through a temp-file-then-rename swap so a crash never corrupts a blob.
type FS struct {
	config FSConfig

	mu            sync.RWMutex
	watcherActive bool
	lastWrite     map[string]time.Time
}

// NewFS creates a filesystem-backed store rooted at config.Dir.
func NewFS(config FSConfig) *FS {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &FS{
		config:    config,
		lastWrite: make(map[string]time.Time),
	}
}

// Initialize ensures the state directory is ready.
func (f *FS) Initialize(ctx context.Context) error {
	if f.config.MustExist {
		info, err := os.Stat(f.config.Dir)
		if os.IsNotExist(err) {
			return fmt.Errorf("state directory does not exist: %s", f.config.Dir)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("state path is not a directory: %s", f.config.Dir)
		}
		return nil
	}
	if err := os.MkdirAll(f.config.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return nil
}

// Read returns the blob stored under key.
func (f *FS) Read(ctx context.Context, key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Write persists the blob under key atomically.
func (f *FS) Write(ctx context.Context, key string, data []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(f.config.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := writeFileAtomic(f.path(key), data, 0644); err != nil {
		return err
	}
	f.recordWrite(key)
	return nil
}

// Delete removes the key. Absence is not an error.
func (f *FS) Delete(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	f.recordWrite(key)
	return nil
}

func (f *FS) path(key string) string {
	return filepath.Join(f.config.Dir, key+blobExt)
}

// validKey rejects keys that would escape the state directory or collide
// with temp files.
func validKey(key string) error {
	if key == "" {
		return fmt.Errorf("storage key cannot be empty")
	}
	if strings.ContainsAny(key, "/\\") || key != filepath.Base(key) {
		return fmt.Errorf("storage key must be a bare name: %q", key)
	}
	if strings.HasPrefix(key, TempFilePrefix) {
		return fmt.Errorf("storage key collides with temp prefix: %q", key)
	}
	return nil
}

// recordWrite remembers when we last touched a key, so the watcher can tell
// our own writes apart from external ones.
func (f *FS) recordWrite(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastWrite[key] = time.Now()
}

// isOwnWrite reports whether a file event for key is plausibly an echo of a
// write this process just issued.
func (f *FS) isOwnWrite(key string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.lastWrite[key]
	return ok && time.Since(t) < selfEventWindow
}

func (f *FS) setWatcherActive(active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watcherActive = active
}
