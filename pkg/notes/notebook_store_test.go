package notes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whispernotes/whisper/pkg/core"
	"github.com/whispernotes/whisper/pkg/storage"
)

func TestNotebookStore_CreateAndGet(t *testing.T) {
	_, notebooks, mem := setupStores(t)
	ctx := context.Background()

	nb, err := notebooks.Create(ctx, "Travel")
	require.NoError(t, err)
	assert.NotEmpty(t, nb.ID)
	assert.Equal(t, "Travel", nb.Name)

	got, ok := notebooks.Get(nb.ID)
	require.True(t, ok)
	assert.Equal(t, nb, got)
	assert.True(t, notebooks.Exists(nb.ID))
	assert.False(t, notebooks.Exists("no-such-id"))

	_, err = mem.Read(ctx, NotebooksKey)
	assert.NoError(t, err, "collection should be persisted")
}

func TestNotebookStore_DuplicateNamesAllowed(t *testing.T) {
	_, notebooks, _ := setupStores(t)
	ctx := context.Background()

	a, err := notebooks.Create(ctx, "Journal")
	require.NoError(t, err)
	b, err := notebooks.Create(ctx, "Journal")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, notebooks.All(), 2)
}

func TestNotebookStore_Rename(t *testing.T) {
	_, notebooks, _ := setupStores(t)
	ctx := context.Background()

	nb, err := notebooks.Create(ctx, "Travle")
	require.NoError(t, err)

	renamed, err := notebooks.Rename(ctx, nb.ID, "Travel")
	require.NoError(t, err)
	assert.Equal(t, "Travel", renamed.Name)
	assert.Equal(t, nb.CreatedAt, renamed.CreatedAt)

	_, err = notebooks.Rename(ctx, "no-such-id", "x")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestNotebookStore_DeleteDetachesNotes(t *testing.T) {
	notes, notebooks, _ := setupStores(t)
	ctx := context.Background()

	nb, err := notebooks.Create(ctx, "Travel")
	require.NoError(t, err)
	inside, err := notes.Create(ctx, Draft{Title: "Kyoto", NotebookID: nb.ID})
	require.NoError(t, err)
	outside, err := notes.Create(ctx, Draft{Title: "Groceries"})
	require.NoError(t, err)

	require.NoError(t, notebooks.Delete(ctx, nb.ID, core.CascadeDetach))

	assert.False(t, notebooks.Exists(nb.ID))

	// The note survives, detached.
	got, ok := notes.Get(inside.ID)
	require.True(t, ok)
	assert.Empty(t, got.NotebookID)

	// Unrelated notes untouched.
	_, ok = notes.Get(outside.ID)
	assert.True(t, ok)
}

func TestNotebookStore_DeleteCascadesNotes(t *testing.T) {
	notes, notebooks, _ := setupStores(t)
	ctx := context.Background()

	nb, err := notebooks.Create(ctx, "Travel")
	require.NoError(t, err)
	inside, err := notes.Create(ctx, Draft{Title: "Kyoto", NotebookID: nb.ID})
	require.NoError(t, err)
	outside, err := notes.Create(ctx, Draft{Title: "Groceries"})
	require.NoError(t, err)

	require.NoError(t, notebooks.Delete(ctx, nb.ID, core.CascadeDelete))

	assert.False(t, notebooks.Exists(nb.ID))
	_, ok := notes.Get(inside.ID)
	assert.False(t, ok, "notes in the notebook should be gone")
	_, ok = notes.Get(outside.ID)
	assert.True(t, ok, "unrelated notes must survive")
}

func TestNotebookStore_DeleteAbsentIsNoOp(t *testing.T) {
	_, notebooks, _ := setupStores(t)

	assert.NoError(t, notebooks.Delete(context.Background(), "no-such-id", core.CascadeDetach))
}

func TestNotebookStore_NoDanglingReferenceAfterDelete(t *testing.T) {
	notes, notebooks, _ := setupStores(t)
	ctx := context.Background()

	nb, err := notebooks.Create(ctx, "Travel")
	require.NoError(t, err)
	for _, title := range []string{"Kyoto", "Osaka", "Nara"} {
		_, err := notes.Create(ctx, Draft{Title: title, NotebookID: nb.ID})
		require.NoError(t, err)
	}

	require.NoError(t, notebooks.Delete(ctx, nb.ID, core.CascadeDetach))

	for _, n := range notes.All() {
		if n.NotebookID != "" {
			assert.True(t, notebooks.Exists(n.NotebookID),
				"note %q references missing notebook %q", n.ID, n.NotebookID)
		}
	}
}

// TestJournalingSession walks the full journaling flow end to end: group,
// write, find, clean up.
func TestJournalingSession(t *testing.T) {
	notes, notebooks, _ := setupStores(t)
	ctx := context.Background()

	travel, err := notebooks.Create(ctx, "Travel")
	require.NoError(t, err)

	kyoto, err := notes.Create(ctx, Draft{
		Title:      "Kyoto",
		Body:       "temples",
		NotebookID: travel.ID,
	})
	require.NoError(t, err)

	found := notes.Search("kyoto")
	require.Len(t, found, 1)
	assert.Equal(t, kyoto.ID, found[0].ID)

	listed := notes.ListByNotebook(travel.ID)
	require.Len(t, listed, 1)
	assert.Equal(t, kyoto.ID, listed[0].ID)

	require.NoError(t, notebooks.Delete(ctx, travel.ID, core.CascadeDelete))

	assert.Empty(t, notes.ListByNotebook(travel.ID))
	assert.Empty(t, notes.Search("kyoto"))
	assert.False(t, notebooks.Exists(travel.ID))
}

func TestNotebookStore_CollectionSurvivesRestart(t *testing.T) {
	mem := storage.NewMemory()
	ctx := context.Background()

	nb1 := NewNotebookStore(NotebookConfig{Storage: mem})
	require.NoError(t, nb1.Initialize(ctx))
	created, err := nb1.Create(ctx, "Travel")
	require.NoError(t, err)
	nb1.Close()

	nb2 := NewNotebookStore(NotebookConfig{Storage: mem})
	require.NoError(t, nb2.Initialize(ctx))
	defer nb2.Close()

	got, ok := nb2.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Travel", got.Name)
}

func TestNotebookStore_Events(t *testing.T) {
	_, notebooks, _ := setupStores(t)
	ctx := context.Background()

	events, cancel := notebooks.Subscribe()
	defer cancel()

	nb, err := notebooks.Create(ctx, "Travel")
	require.NoError(t, err)

	e := <-events
	assert.Equal(t, core.EventCreate, e.Type)
	assert.Equal(t, nb.ID, e.ID)

	_, err = notebooks.Rename(ctx, nb.ID, "Trips")
	require.NoError(t, err)
	e = <-events
	assert.Equal(t, core.EventModify, e.Type)

	require.NoError(t, notebooks.Delete(ctx, nb.ID, core.CascadeDetach))
	e = <-events
	assert.Equal(t, core.EventDelete, e.Type)
}
