package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/whispernotes/whisper/pkg/core"
)

// selfEventWindow is how long after one of our own writes a matching file
// event is treated as an echo rather than an external change.
const selfEventWindow = 500 * time.Millisecond

// Watch observes the state directory for changes made behind the
// application's back (another process, a sync tool, a stray editor) and
// emits one event per affected key matching pattern. Pattern syntax is
// doublestar glob, matched against the bare key.
//
// Events caused by this process's own writes are filtered out; the stores
// already updated their in-memory state before persisting.
func (f *FS) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern: %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(f.config.Dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch state directory: %w", err)
	}

	events := make(chan core.Event, core.DefaultEventBuffer)
	f.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer watcher.Close()
		defer f.setWatcherActive(false)
		return f.watchLoop(ctx, watcher, pattern, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		if f.config.ErrorHandler != nil {
			f.config.ErrorHandler(err)
		} else {
			f.config.Logger.Error("storage watcher failed", "error", err)
		}
	}))

	return events, nil
}

func (f *FS) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, pattern string, events chan<- core.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			f.handleFileEvent(ctx, event, pattern, events)

		case wErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.config.Logger.Error("fsnotify error", "error", wErr)
			if f.config.ErrorHandler != nil {
				f.config.ErrorHandler(wErr)
			}
		}
	}
}

func (f *FS) handleFileEvent(ctx context.Context, event fsnotify.Event, pattern string, events chan<- core.Event) {
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, blobExt) || strings.HasPrefix(name, TempFilePrefix) {
		return
	}
	key := strings.TrimSuffix(name, blobExt)

	if ok, err := doublestar.Match(pattern, key); err != nil || !ok {
		return
	}

	eType := mapEventType(event)
	if eType == "" {
		return
	}

	if f.isOwnWrite(key) {
		f.config.Logger.Debug("ignoring own write", "key", key)
		return
	}

	f.config.Logger.Debug("external change detected", "key", key, "op", event.Op.String())

	select {
	case events <- core.Event{Type: eType, ID: key, Timestamp: time.Now().Unix()}:
	case <-ctx.Done():
	}
}

// mapEventType translates fsnotify ops into store events. Renames of the
// atomic-write temp file arrive as Create on the target.
func mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	default:
		return ""
	}
}
