package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/google/uuid"

	"github.com/whispernotes/whisper/pkg/core"
	"github.com/whispernotes/whisper/pkg/storage"
)

// NotesKey is the durable storage key owned by the note store.
const NotesKey = "whisper_notes"

// NoteConfig holds the dependencies of the note store.
type NoteConfig struct {
	Storage     storage.Store
	Logger      *slog.Logger
	EventBuffer int
}

// Draft is the caller-supplied part of a new note.
type Draft struct {
	Title      string
	Body       string
	NotebookID string
	Tags       []string
}

// NoteStore holds the canonical note collection. The canonical ordering is
// insertion order; recency ordering is applied per search result, never to
// the collection itself, so repeated searches are deterministic.
type NoteStore struct {
	storage   storage.Store
	logger    *slog.Logger
	broker    *core.Broker
	notebooks *NotebookStore

	mu    sync.RWMutex
	notes []core.Note
}

// NewNoteStore creates the note store. The notebook store validates
// membership references.
func NewNoteStore(cfg NoteConfig, notebooks *NotebookStore) *NoteStore {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &NoteStore{
		storage:   cfg.Storage,
		logger:    cfg.Logger,
		broker:    core.NewBroker(cfg.EventBuffer),
		notebooks: notebooks,
	}
}

// Initialize restores the persisted collection. A corrupt blob is logged
// and replaced with an empty collection.
func (s *NoteStore) Initialize(ctx context.Context) error {
	data, err := s.storage.Read(ctx, NotesKey)
	if err != nil {
		if err != storage.ErrNotExist {
			s.logger.Warn("failed to read persisted notes, starting empty", "error", err)
		}
		return nil
	}

	var notes []core.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		s.logger.Warn("persisted notes are corrupt, starting empty", "error", err)
		return nil
	}

	s.mu.Lock()
	s.notes = notes
	s.mu.Unlock()
	return nil
}

// Create appends a new note. A non-empty NotebookID must reference an
// existing notebook or the call fails with core.ErrInvalidReference.
func (s *NoteStore) Create(ctx context.Context, draft Draft) (core.Note, error) {
	if draft.NotebookID != "" && !s.notebooks.Exists(draft.NotebookID) {
		return core.Note{}, fmt.Errorf("notebook %q: %w", draft.NotebookID, core.ErrInvalidReference)
	}

	now := time.Now().UTC()
	note := core.Note{
		ID:         uuid.NewString(),
		Title:      draft.Title,
		Body:       draft.Body,
		NotebookID: draft.NotebookID,
		Tags:       append([]string(nil), draft.Tags...),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = append(s.notes, note)
	if err := s.persistLocked(ctx); err != nil {
		s.notes = s.notes[:len(s.notes)-1]
		return core.Note{}, err
	}

	s.broker.Publish(core.Event{Type: core.EventCreate, ID: note.ID, Timestamp: now.Unix()})
	return note, nil
}

// Update merges the non-nil fields of patch into the note and refreshes
// UpdatedAt. Fails with core.ErrNotFound for a missing id and with
// core.ErrInvalidReference for a patch pointing at a missing notebook; in
// both cases the collection is left unchanged. Setting NotebookID to the
// empty string detaches the note.
func (s *NoteStore) Update(ctx context.Context, id string, patch core.NotePatch) (core.Note, error) {
	if patch.NotebookID != nil && *patch.NotebookID != "" && !s.notebooks.Exists(*patch.NotebookID) {
		return core.Note{}, fmt.Errorf("notebook %q: %w", *patch.NotebookID, core.ErrInvalidReference)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return core.Note{}, fmt.Errorf("note %q: %w", id, core.ErrNotFound)
	}

	previous := s.notes[idx]
	updated := previous
	if patch.Title != nil {
		updated.Title = *patch.Title
	}
	if patch.Body != nil {
		updated.Body = *patch.Body
	}
	if patch.NotebookID != nil {
		updated.NotebookID = *patch.NotebookID
	}
	if patch.Tags != nil {
		updated.Tags = append([]string(nil), (*patch.Tags)...)
	}
	updated.UpdatedAt = time.Now().UTC()

	s.notes[idx] = updated
	if err := s.persistLocked(ctx); err != nil {
		s.notes[idx] = previous
		return core.Note{}, err
	}

	s.broker.Publish(core.Event{Type: core.EventModify, ID: id, Timestamp: updated.UpdatedAt.Unix()})
	return updated, nil
}

// Delete removes a note. Deleting an absent id is an idempotent no-op.
func (s *NoteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil
	}

	previous := s.notes
	remaining := make([]core.Note, 0, len(previous)-1)
	remaining = append(remaining, previous[:idx]...)
	remaining = append(remaining, previous[idx+1:]...)
	s.notes = remaining
	if err := s.persistLocked(ctx); err != nil {
		s.notes = previous
		return err
	}

	s.broker.Publish(core.Event{Type: core.EventDelete, ID: id, Timestamp: time.Now().Unix()})
	return nil
}

// Get returns a note by id.
func (s *NoteStore) Get(id string) (core.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return core.Note{}, false
	}
	return s.copyLocked(idx), true
}

// Search returns notes whose title or body contains query, case
// insensitively. The empty query matches everything. Results are a copy
// ordered most-recently-updated first; the canonical insertion order is
// untouched, so repeated searches are independent of prior calls.
func (s *NoteStore) Search(query string) []core.Note {
	needle := strings.ToLower(query)

	s.mu.RLock()
	var matches []core.Note
	for i, n := range s.notes {
		if needle == "" ||
			strings.Contains(strings.ToLower(n.Title), needle) ||
			strings.Contains(strings.ToLower(n.Body), needle) {
			matches = append(matches, s.copyLocked(i))
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].UpdatedAt.After(matches[j].UpdatedAt)
	})
	return matches
}

// ListByNotebook returns the notes belonging to a notebook, in insertion
// order.
func (s *NoteStore) ListByNotebook(notebookID string) []core.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Note
	for i, n := range s.notes {
		if n.NotebookID == notebookID {
			out = append(out, s.copyLocked(i))
		}
	}
	return out
}

// All returns the collection in its canonical insertion order.
func (s *NoteStore) All() []core.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Note, 0, len(s.notes))
	for i := range s.notes {
		out = append(out, s.copyLocked(i))
	}
	return out
}

// Subscribe registers a consumer of collection-change events.
func (s *NoteStore) Subscribe() (<-chan core.Event, func()) {
	return s.broker.Subscribe()
}

// Reload re-reads the persisted collection after an external change to the
// notes key.
func (s *NoteStore) Reload(ctx context.Context) error {
	data, err := s.storage.Read(ctx, NotesKey)
	if err != nil && err != storage.ErrNotExist {
		return err
	}

	var notes []core.Note
	if data != nil {
		if err := json.Unmarshal(data, &notes); err != nil {
			s.logger.Warn("persisted notes are corrupt, keeping in-memory state", "error", err)
			return nil
		}
	}

	s.mu.Lock()
	s.notes = notes
	s.mu.Unlock()

	s.broker.Publish(core.Event{Type: core.EventModify, ID: NotesKey, Timestamp: time.Now().Unix()})
	return nil
}

// Close tears down subscriptions.
func (s *NoteStore) Close() {
	s.broker.Close()
}

// deleteByNotebook removes every note in the notebook. Called by the
// notebook store under the CascadeDelete policy.
func (s *NoteStore) deleteByNotebook(ctx context.Context, notebookID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.notes
	var remaining []core.Note
	var removed []string
	for _, n := range previous {
		if n.NotebookID == notebookID {
			removed = append(removed, n.ID)
			continue
		}
		remaining = append(remaining, n)
	}
	if len(removed) == 0 {
		return nil
	}

	s.notes = remaining
	if err := s.persistLocked(ctx); err != nil {
		s.notes = previous
		return err
	}

	now := time.Now().Unix()
	for _, id := range removed {
		s.broker.Publish(core.Event{Type: core.EventDelete, ID: id, Timestamp: now})
	}
	return nil
}

// detachNotebook clears NotebookID on every note in the notebook. Called by
// the notebook store under the CascadeDetach policy.
func (s *NoteStore) detachNotebook(ctx context.Context, notebookID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := make([]core.Note, len(s.notes))
	copy(previous, s.notes)

	var detached []string
	now := time.Now().UTC()
	for i := range s.notes {
		if s.notes[i].NotebookID == notebookID {
			s.notes[i].NotebookID = ""
			s.notes[i].UpdatedAt = now
			detached = append(detached, s.notes[i].ID)
		}
	}
	if len(detached) == 0 {
		return nil
	}

	if err := s.persistLocked(ctx); err != nil {
		s.notes = previous
		return err
	}

	for _, id := range detached {
		s.broker.Publish(core.Event{Type: core.EventModify, ID: id, Timestamp: now.Unix()})
	}
	return nil
}

func (s *NoteStore) indexLocked(id string) int {
	for i, n := range s.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// copyLocked returns a defensive copy of the note at idx, including its
// tags slice.
func (s *NoteStore) copyLocked(idx int) core.Note {
	n := s.notes[idx]
	n.Tags = append([]string(nil), n.Tags...)
	return n
}

func (s *NoteStore) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.notes)
	if err != nil {
		return fmt.Errorf("failed to serialize notes: %w", err)
	}
	if err := s.storage.Write(ctx, NotesKey, data); err != nil {
		return fmt.Errorf("failed to persist notes: %w", err)
	}
	return nil
}

// NoteStoreState exposes internal state for observability.
type NoteStoreState struct {
	Notes int `json:"notes"`
}

// State implements introspection.Introspectable.
func (s *NoteStore) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NoteStoreState{Notes: len(s.notes)}
}

// ComponentType implements introspection.Component.
func (s *NoteStore) ComponentType() string {
	return "note-store"
}

var _ introspection.Introspectable = (*NoteStore)(nil)
var _ introspection.Component = (*NoteStore)(nil)
