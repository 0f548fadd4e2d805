package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/introspection"

	"github.com/whispernotes/whisper/pkg/core"
	"github.com/whispernotes/whisper/pkg/storage"
	"github.com/whispernotes/whisper/pkg/surface"
)

// StorageKey is the durable storage key owned by the theme store.
const StorageKey = "whisper_theme"

// Config holds the dependencies of the theme store.
type Config struct {
	Storage     storage.Store
	Surface     surface.Surface
	Logger      *slog.Logger
	EventBuffer int
}

// Store owns the active theme. Every selection change is persisted and then
// published to the document surface in one deterministic step, so the
// surface never drifts from the snapshot.
type Store struct {
	storage storage.Store
	surface surface.Surface
	logger  *slog.Logger
	broker  *core.Broker

	mu      sync.RWMutex
	current core.Theme
	loading bool
}

// NewStore creates the theme store. Call Initialize to restore the persisted
// selection and publish the initial surface state.
func NewStore(cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Surface == nil {
		cfg.Surface = surface.Noop{}
	}
	return &Store{
		storage: cfg.Storage,
		surface: cfg.Surface,
		logger:  cfg.Logger,
		broker:  core.NewBroker(cfg.EventBuffer),
		current: catalog[0],
		loading: true,
	}
}

// Initialize restores the persisted selection and applies the side effects
// once. A missing or corrupt blob silently falls back to the catalog head;
// that is a recoverable condition, never surfaced to the user.
func (s *Store) Initialize(ctx context.Context) error {
	restored := s.restore(ctx)

	s.mu.Lock()
	s.current = restored
	s.loading = false
	s.mu.Unlock()

	s.apply(restored)
	return nil
}

// restore reads the persisted theme and normalizes it against the catalog:
// the persisted ID picks the entry, the persisted DarkMode carries over.
// This keeps the invariant that the active theme is always a catalog entry
// modulo the DarkMode flag, and preserves a toggled dark mode across
// restarts.
func (s *Store) restore(ctx context.Context) core.Theme {
	data, err := s.storage.Read(ctx, StorageKey)
	if err != nil {
		if err != storage.ErrNotExist {
			s.logger.Warn("failed to read persisted theme, using default", "error", err)
		}
		return catalog[0]
	}

	var persisted core.Theme
	if err := json.Unmarshal(data, &persisted); err != nil {
		s.logger.Warn("persisted theme is corrupt, using default", "error", err)
		return catalog[0]
	}

	entry, ok := lookup(persisted.ID)
	if !ok {
		s.logger.Warn("persisted theme not in catalog, using default", "id", persisted.ID)
		return catalog[0]
	}
	entry.DarkMode = persisted.DarkMode
	return entry
}

// Themes returns the immutable catalog, always in the same order.
func (s *Store) Themes() []core.Theme {
	return Catalog()
}

// Current returns the active theme.
func (s *Store) Current() core.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Loading reports whether the initial restore is still pending.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Select makes t the active theme, persists the full theme object and
// synchronously applies the document side effects. The theme must be a
// catalog entry (its DarkMode flag may differ); anything else fails with
// core.ErrNotFound.
func (s *Store) Select(ctx context.Context, t core.Theme) error {
	entry, ok := lookup(t.ID)
	if !ok {
		return fmt.Errorf("theme %q: %w", t.ID, core.ErrNotFound)
	}
	entry.DarkMode = t.DarkMode

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to serialize theme: %w", err)
	}
	if err := s.storage.Write(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("failed to persist theme: %w", err)
	}

	s.mu.Lock()
	s.current = entry
	s.mu.Unlock()

	s.apply(entry)
	s.broker.Publish(core.Event{Type: core.EventModify, ID: entry.ID, Timestamp: time.Now().Unix()})
	return nil
}

// SetDarkMode produces a copy of the active theme with DarkMode set and runs
// the same selection path as Select, so the round-trip law holds: toggling
// dark mode on and off restores the original color values exactly.
func (s *Store) SetDarkMode(ctx context.Context, dark bool) error {
	s.mu.RLock()
	t := s.current
	s.mu.RUnlock()

	t.DarkMode = dark
	return s.Select(ctx, t)
}

// Subscribe registers a consumer of selection-change events.
func (s *Store) Subscribe() (<-chan core.Event, func()) {
	return s.broker.Subscribe()
}

// Reload re-reads the persisted selection after an external change to the
// theme key and republishes state if it differs.
func (s *Store) Reload(ctx context.Context) error {
	restored := s.restore(ctx)

	s.mu.Lock()
	changed := restored != s.current
	s.current = restored
	s.mu.Unlock()

	if changed {
		s.apply(restored)
		s.broker.Publish(core.Event{Type: core.EventModify, ID: restored.ID, Timestamp: time.Now().Unix()})
	}
	return nil
}

// Close tears down subscriptions.
func (s *Store) Close() {
	s.broker.Close()
}

// apply publishes the theme to the document surface. Idempotent: applying
// the same theme twice produces identical published state, and switching
// themes leaves no stale marker behind.
func (s *Store) apply(t core.Theme) {
	s.surface.SetVariable(surface.VarPrimary, t.PrimaryColor)
	s.surface.SetVariable(surface.VarSecondary, t.SecondaryColor)
	s.surface.SetVariable(surface.VarAccent, t.AccentColor)
	s.surface.SetDark(t.DarkMode)
	s.surface.SetThemeMarker(t.ID)
}

// StoreState exposes internal state for observability.
type StoreState struct {
	ActiveTheme string `json:"active_theme"`
	DarkMode    bool   `json:"dark_mode"`
	Loading     bool   `json:"loading"`
	CatalogSize int    `json:"catalog_size"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StoreState{
		ActiveTheme: s.current.ID,
		DarkMode:    s.current.DarkMode,
		Loading:     s.loading,
		CatalogSize: len(catalog),
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "theme-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
