package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whispernotes/whisper/pkg/core"
)

func TestFS_WatchSeesExternalWrite(t *testing.T) {
	dir := t.TempDir()
	store := NewFS(FSConfig{Dir: dir})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, store.Initialize(ctx))

	events, err := store.Watch(ctx, "whisper_*")
	require.NoError(t, err)

	// Simulate another process touching the state directory.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "whisper_notes.json"), []byte(`[]`), 0644))

	select {
	case e := <-events:
		assert.Equal(t, "whisper_notes", e.ID)
		assert.Contains(t, []core.EventType{core.EventCreate, core.EventModify}, e.Type)
	case <-time.After(3 * time.Second):
		t.Fatal("no event for external write")
	}
}

func TestFS_WatchFiltersOwnWrites(t *testing.T) {
	dir := t.TempDir()
	store := NewFS(FSConfig{Dir: dir})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, store.Initialize(ctx))

	events, err := store.Watch(ctx, "*")
	require.NoError(t, err)

	require.NoError(t, store.Write(ctx, "whisper_theme", []byte(`{}`)))

	select {
	case e, ok := <-events:
		if ok {
			t.Fatalf("own write surfaced as event: %+v", e)
		}
	case <-time.After(700 * time.Millisecond):
	}
}

func TestFS_WatchIgnoresNonMatchingKeys(t *testing.T) {
	dir := t.TempDir()
	store := NewFS(FSConfig{Dir: dir})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, store.Initialize(ctx))

	events, err := store.Watch(ctx, "whisper_*")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.json"), []byte(`{}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a blob"), 0644))

	select {
	case e, ok := <-events:
		if ok {
			t.Fatalf("unexpected event: %+v", e)
		}
	case <-time.After(700 * time.Millisecond):
	}
}

func TestFS_WatchRejectsBadPattern(t *testing.T) {
	store := NewFS(FSConfig{Dir: t.TempDir()})
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx))

	_, err := store.Watch(ctx, "[")
	assert.Error(t, err)
}

func TestFS_WatchStopsOnCancel(t *testing.T) {
	store := NewFS(FSConfig{Dir: t.TempDir()})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, store.Initialize(ctx))

	events, err := store.Watch(ctx, "*")
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok, "event channel should close after cancel")
	case <-time.After(3 * time.Second):
		t.Fatal("event channel did not close")
	}
}
