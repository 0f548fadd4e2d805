package notes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whispernotes/whisper/pkg/core"
	"github.com/whispernotes/whisper/pkg/storage"
)

func setupStores(t *testing.T) (*NoteStore, *NotebookStore, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory()
	ctx := context.Background()

	notebooks := NewNotebookStore(NotebookConfig{Storage: mem})
	require.NoError(t, notebooks.Initialize(ctx))
	notes := NewNoteStore(NoteConfig{Storage: mem}, notebooks)
	require.NoError(t, notes.Initialize(ctx))
	notebooks.BindNotes(notes)

	t.Cleanup(func() {
		notes.Close()
		notebooks.Close()
	})
	return notes, notebooks, mem
}

func TestNoteStore_CreateAndGet(t *testing.T) {
	notes, _, mem := setupStores(t)
	ctx := context.Background()

	created, err := notes.Create(ctx, Draft{
		Title: "Kyoto",
		Body:  "Visited the temples in the rain.",
		Tags:  []string{"travel", "japan"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, ok := notes.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, created, got)

	_, err = mem.Read(ctx, NotesKey)
	assert.NoError(t, err, "collection should be persisted")
}

func TestNoteStore_CreateRejectsMissingNotebook(t *testing.T) {
	notes, _, _ := setupStores(t)

	_, err := notes.Create(context.Background(), Draft{Title: "x", NotebookID: "no-such-notebook"})
	assert.ErrorIs(t, err, core.ErrInvalidReference)
	assert.Empty(t, notes.All())
}

func TestNoteStore_Update(t *testing.T) {
	notes, notebooks, _ := setupStores(t)
	ctx := context.Background()

	nb, err := notebooks.Create(ctx, "Travel")
	require.NoError(t, err)
	created, err := notes.Create(ctx, Draft{Title: "Kyoto", Body: "draft"})
	require.NoError(t, err)

	t.Run("merges only the provided fields", func(t *testing.T) {
		body := "Visited the temples."
		updated, err := notes.Update(ctx, created.ID, core.NotePatch{Body: &body, NotebookID: &nb.ID})
		require.NoError(t, err)
		assert.Equal(t, "Kyoto", updated.Title)
		assert.Equal(t, "Visited the temples.", updated.Body)
		assert.Equal(t, nb.ID, updated.NotebookID)
		assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	})

	t.Run("empty notebook id detaches", func(t *testing.T) {
		empty := ""
		updated, err := notes.Update(ctx, created.ID, core.NotePatch{NotebookID: &empty})
		require.NoError(t, err)
		assert.Empty(t, updated.NotebookID)
	})

	t.Run("missing note", func(t *testing.T) {
		title := "x"
		_, err := notes.Update(ctx, "no-such-note", core.NotePatch{Title: &title})
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("missing notebook leaves note untouched", func(t *testing.T) {
		before, _ := notes.Get(created.ID)
		bad := "no-such-notebook"
		_, err := notes.Update(ctx, created.ID, core.NotePatch{NotebookID: &bad})
		assert.ErrorIs(t, err, core.ErrInvalidReference)
		after, _ := notes.Get(created.ID)
		assert.Equal(t, before, after)
	})
}

func TestNoteStore_DeleteIsIdempotent(t *testing.T) {
	notes, _, _ := setupStores(t)
	ctx := context.Background()

	created, err := notes.Create(ctx, Draft{Title: "gone soon"})
	require.NoError(t, err)

	require.NoError(t, notes.Delete(ctx, created.ID))
	require.NoError(t, notes.Delete(ctx, created.ID))
	require.NoError(t, notes.Delete(ctx, "never-existed"))

	_, ok := notes.Get(created.ID)
	assert.False(t, ok)
}

func TestNoteStore_AllKeepsInsertionOrder(t *testing.T) {
	notes, _, _ := setupStores(t)
	ctx := context.Background()

	first, err := notes.Create(ctx, Draft{Title: "first"})
	require.NoError(t, err)
	second, err := notes.Create(ctx, Draft{Title: "second"})
	require.NoError(t, err)

	// Touch the first note afterwards; canonical order must not change.
	title := "first, revised"
	_, err = notes.Update(ctx, first.ID, core.NotePatch{Title: &title})
	require.NoError(t, err)

	all := notes.All()
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
}

func TestNoteStore_Search(t *testing.T) {
	notes, _, _ := setupStores(t)
	ctx := context.Background()

	older, err := notes.Create(ctx, Draft{Title: "Kyoto trip", Body: "temples"})
	require.NoError(t, err)
	_, err = notes.Create(ctx, Draft{Title: "Groceries", Body: "milk, eggs"})
	require.NoError(t, err)
	newer, err := notes.Create(ctx, Draft{Title: "Dream log", Body: "walking through KYOTO again"})
	require.NoError(t, err)

	t.Run("case insensitive over title and body", func(t *testing.T) {
		got := notes.Search("kyoto")
		require.Len(t, got, 2)
		ids := []string{got[0].ID, got[1].ID}
		assert.Contains(t, ids, older.ID)
		assert.Contains(t, ids, newer.ID)
	})

	t.Run("most recently updated first", func(t *testing.T) {
		body := "temples and gardens"
		_, err := notes.Update(ctx, older.ID, core.NotePatch{Body: &body})
		require.NoError(t, err)

		got := notes.Search("kyoto")
		require.Len(t, got, 2)
		assert.Equal(t, older.ID, got[0].ID, "freshly updated note should rank first")
	})

	t.Run("empty query matches everything", func(t *testing.T) {
		assert.Len(t, notes.Search(""), 3)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, notes.Search("laputa"))
	})

	t.Run("search does not disturb canonical order", func(t *testing.T) {
		notes.Search("kyoto")
		all := notes.All()
		assert.Equal(t, older.ID, all[0].ID)
	})
}

func TestNoteStore_ReturnedNotesAreCopies(t *testing.T) {
	notes, _, _ := setupStores(t)
	ctx := context.Background()

	created, err := notes.Create(ctx, Draft{Title: "tagged", Tags: []string{"a"}})
	require.NoError(t, err)

	got, _ := notes.Get(created.ID)
	got.Tags[0] = "tampered"

	again, _ := notes.Get(created.ID)
	assert.Equal(t, []string{"a"}, again.Tags)
}

func TestNoteStore_CollectionSurvivesRestart(t *testing.T) {
	mem := storage.NewMemory()
	ctx := context.Background()

	notebooks1 := NewNotebookStore(NotebookConfig{Storage: mem})
	notes1 := NewNoteStore(NoteConfig{Storage: mem}, notebooks1)
	notebooks1.BindNotes(notes1)
	require.NoError(t, notebooks1.Initialize(ctx))
	require.NoError(t, notes1.Initialize(ctx))

	created, err := notes1.Create(ctx, Draft{Title: "durable"})
	require.NoError(t, err)
	notes1.Close()
	notebooks1.Close()

	notebooks2 := NewNotebookStore(NotebookConfig{Storage: mem})
	notes2 := NewNoteStore(NoteConfig{Storage: mem}, notebooks2)
	notebooks2.BindNotes(notes2)
	require.NoError(t, notebooks2.Initialize(ctx))
	require.NoError(t, notes2.Initialize(ctx))
	defer notes2.Close()
	defer notebooks2.Close()

	got, ok := notes2.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, "durable", got.Title)
}

func TestNoteStore_CorruptBlobStartsEmpty(t *testing.T) {
	mem := storage.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.Write(ctx, NotesKey, []byte("not json")))

	notebooks := NewNotebookStore(NotebookConfig{Storage: mem})
	notes := NewNoteStore(NoteConfig{Storage: mem}, notebooks)
	require.NoError(t, notes.Initialize(ctx))
	defer notes.Close()
	defer notebooks.Close()

	assert.Empty(t, notes.All())
}

func TestNoteStore_Events(t *testing.T) {
	notes, _, _ := setupStores(t)
	ctx := context.Background()

	events, cancel := notes.Subscribe()
	defer cancel()

	created, err := notes.Create(ctx, Draft{Title: "evented"})
	require.NoError(t, err)

	e := <-events
	assert.Equal(t, core.EventCreate, e.Type)
	assert.Equal(t, created.ID, e.ID)
	assert.InDelta(t, time.Now().Unix(), e.Timestamp, 5)

	require.NoError(t, notes.Delete(ctx, created.ID))
	e = <-events
	assert.Equal(t, core.EventDelete, e.Type)
}
