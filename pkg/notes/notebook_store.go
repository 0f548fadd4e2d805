// Package notes owns the journal collection: notes and the notebooks that
// group them. The two stores live together because deleting a notebook must
// stay consistent with the notes referencing it, and nothing outside the
// store layer enforces that.
package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	"github.com/google/uuid"

	"github.com/whispernotes/whisper/pkg/core"
	"github.com/whispernotes/whisper/pkg/storage"
)

// NotebooksKey is the durable storage key owned by the notebook store.
const NotebooksKey = "whisper_notebooks"

// NotebookConfig holds the dependencies of the notebook store.
type NotebookConfig struct {
	Storage     storage.Store
	Logger      *slog.Logger
	EventBuffer int
}

// NotebookStore holds the canonical notebook collection in insertion order.
type NotebookStore struct {
	storage storage.Store
	logger  *slog.Logger
	broker  *core.Broker

	mu        sync.RWMutex
	notebooks []core.Notebook

	// notes is bound by the factory after both stores exist; Delete needs it
	// to run the cascade policy before the notebook itself goes away.
	notes *NoteStore
}

// NewNotebookStore creates the notebook store. Call Initialize to restore
// the persisted collection, and BindNotes before the first Delete.
func NewNotebookStore(cfg NotebookConfig) *NotebookStore {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &NotebookStore{
		storage: cfg.Storage,
		logger:  cfg.Logger,
		broker:  core.NewBroker(cfg.EventBuffer),
	}
}

// BindNotes wires the note store for delete coordination.
func (s *NotebookStore) BindNotes(notes *NoteStore) {
	s.notes = notes
}

// Initialize restores the persisted collection. A corrupt blob is logged
// and replaced with an empty collection.
func (s *NotebookStore) Initialize(ctx context.Context) error {
	data, err := s.storage.Read(ctx, NotebooksKey)
	if err != nil {
		if err != storage.ErrNotExist {
			s.logger.Warn("failed to read persisted notebooks, starting empty", "error", err)
		}
		return nil
	}

	var notebooks []core.Notebook
	if err := json.Unmarshal(data, &notebooks); err != nil {
		s.logger.Warn("persisted notebooks are corrupt, starting empty", "error", err)
		return nil
	}

	s.mu.Lock()
	s.notebooks = notebooks
	s.mu.Unlock()
	return nil
}

// Create adds a notebook. Duplicate names are allowed; uniqueness is a UI
// concern, not a model one.
func (s *NotebookStore) Create(ctx context.Context, name string) (core.Notebook, error) {
	nb := core.Notebook{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.notebooks = append(s.notebooks, nb)
	if err := s.persistLocked(ctx); err != nil {
		s.notebooks = s.notebooks[:len(s.notebooks)-1]
		return core.Notebook{}, err
	}

	s.broker.Publish(core.Event{Type: core.EventCreate, ID: nb.ID, Timestamp: time.Now().Unix()})
	return nb, nil
}

// Rename changes a notebook's name. Fails with core.ErrNotFound if the id
// does not exist.
func (s *NotebookStore) Rename(ctx context.Context, id, name string) (core.Notebook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return core.Notebook{}, fmt.Errorf("notebook %q: %w", id, core.ErrNotFound)
	}

	previous := s.notebooks[idx].Name
	s.notebooks[idx].Name = name
	if err := s.persistLocked(ctx); err != nil {
		s.notebooks[idx].Name = previous
		return core.Notebook{}, err
	}

	s.broker.Publish(core.Event{Type: core.EventModify, ID: id, Timestamp: time.Now().Unix()})
	return s.notebooks[idx], nil
}

// Delete removes a notebook after applying the cascade policy to its notes,
// so no note ever references a nonexistent notebook once the call returns.
// Deleting an absent id is an idempotent no-op.
//
// The note collection and the notebook collection persist as separate
// blobs; a crash between the two writes can leave an orphan-free note set
// alongside a still-present notebook, which the next Delete repairs. There
// is no cross-store transaction.
func (s *NotebookStore) Delete(ctx context.Context, id string, policy core.CascadePolicy) error {
	s.mu.RLock()
	exists := s.indexLocked(id) >= 0
	s.mu.RUnlock()
	if !exists {
		return nil
	}

	if s.notes == nil {
		return fmt.Errorf("notebook store has no bound note store")
	}

	// Notes first: between the two persists the worst observable state is a
	// notebook with no notes, never a note pointing nowhere.
	switch policy {
	case core.CascadeDelete:
		if err := s.notes.deleteByNotebook(ctx, id); err != nil {
			return fmt.Errorf("failed to cascade-delete notes: %w", err)
		}
	case core.CascadeDetach:
		if err := s.notes.detachNotebook(ctx, id); err != nil {
			return fmt.Errorf("failed to detach notes: %w", err)
		}
	default:
		return fmt.Errorf("unknown cascade policy: %d", policy)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil
	}
	previous := s.notebooks
	remaining := make([]core.Notebook, 0, len(previous)-1)
	remaining = append(remaining, previous[:idx]...)
	remaining = append(remaining, previous[idx+1:]...)
	s.notebooks = remaining
	if err := s.persistLocked(ctx); err != nil {
		s.notebooks = previous
		return err
	}

	s.broker.Publish(core.Event{Type: core.EventDelete, ID: id, Timestamp: time.Now().Unix()})
	return nil
}

// Get returns a notebook by id.
func (s *NotebookStore) Get(id string) (core.Notebook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return core.Notebook{}, false
	}
	return s.notebooks[idx], true
}

// Exists reports whether a notebook id is present.
func (s *NotebookStore) Exists(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// All returns the collection in insertion order.
func (s *NotebookStore) All() []core.Notebook {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Notebook, len(s.notebooks))
	copy(out, s.notebooks)
	return out
}

// Subscribe registers a consumer of collection-change events.
func (s *NotebookStore) Subscribe() (<-chan core.Event, func()) {
	return s.broker.Subscribe()
}

// Reload re-reads the persisted collection after an external change to the
// notebooks key.
func (s *NotebookStore) Reload(ctx context.Context) error {
	data, err := s.storage.Read(ctx, NotebooksKey)
	if err != nil && err != storage.ErrNotExist {
		return err
	}

	var notebooks []core.Notebook
	if data != nil {
		if err := json.Unmarshal(data, &notebooks); err != nil {
			s.logger.Warn("persisted notebooks are corrupt, keeping in-memory state", "error", err)
			return nil
		}
	}

	s.mu.Lock()
	s.notebooks = notebooks
	s.mu.Unlock()

	s.broker.Publish(core.Event{Type: core.EventModify, ID: NotebooksKey, Timestamp: time.Now().Unix()})
	return nil
}

// Close tears down subscriptions.
func (s *NotebookStore) Close() {
	s.broker.Close()
}

func (s *NotebookStore) indexLocked(id string) int {
	for i, nb := range s.notebooks {
		if nb.ID == id {
			return i
		}
	}
	return -1
}

func (s *NotebookStore) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.notebooks)
	if err != nil {
		return fmt.Errorf("failed to serialize notebooks: %w", err)
	}
	if err := s.storage.Write(ctx, NotebooksKey, data); err != nil {
		return fmt.Errorf("failed to persist notebooks: %w", err)
	}
	return nil
}

// NotebookStoreState exposes internal state for observability.
type NotebookStoreState struct {
	Notebooks int `json:"notebooks"`
}

// State implements introspection.Introspectable.
func (s *NotebookStore) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return NotebookStoreState{Notebooks: len(s.notebooks)}
}

// ComponentType implements introspection.Component.
func (s *NotebookStore) ComponentType() string {
	return "notebook-store"
}

var _ introspection.Introspectable = (*NotebookStore)(nil)
var _ introspection.Component = (*NotebookStore)(nil)
