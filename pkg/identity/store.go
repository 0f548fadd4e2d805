// Package identity owns the signed-in user and the session lifecycle.
//
// Sign-in and sign-up follow a network-then-fallback contract: if the auth
// backend is unreachable or rejects the call, the store synthesizes a local
// identity and still reports success. Running with no backend at all is the
// expected common case for this client, not an error.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/introspection"

	"github.com/whispernotes/whisper/pkg/core"
	"github.com/whispernotes/whisper/pkg/storage"
)

// StorageKey is the durable storage key owned by the identity store. It
// holds the serialized User, and is absent while signed out.
const StorageKey = "whisper_user"

// fallbackSignInID is the deterministic identity used when sign-in falls
// back to a local session.
const fallbackSignInID = "demo-user-1"

// AuthClient is the remote side of the identity store. *authapi.Client
// implements it; tests substitute their own.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (core.User, error)
	Signup(ctx context.Context, name, email, password string) (core.User, error)
	UpdateProfile(ctx context.Context, update core.ProfileUpdate) (core.User, error)
}

// Config holds the dependencies of the identity store.
type Config struct {
	Storage     storage.Store
	Client      AuthClient
	Logger      *slog.Logger
	EventBuffer int
}

// Snapshot is the immutable view handed to consumers.
type Snapshot struct {
	User       *core.User
	Loading    bool
	Provenance core.Provenance
}

// IsAuthenticated reports whether a user is signed in.
func (s Snapshot) IsAuthenticated() bool {
	return s.User != nil
}

// Store holds the canonical in-memory identity and persists it on every
// mutation. Operations are not serialized against each other beyond the
// snapshot lock: two overlapping UpdateProfile calls resolve
// last-writer-wins, which is acceptable for a single-user local client.
type Store struct {
	storage storage.Store
	client  AuthClient
	logger  *slog.Logger
	broker  *core.Broker

	mu         sync.RWMutex
	user       *core.User
	provenance core.Provenance
	loading    bool
}

// NewStore creates the identity store. Call Initialize to restore any
// persisted session.
func NewStore(cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		storage: cfg.Storage,
		client:  cfg.Client,
		logger:  cfg.Logger,
		broker:  core.NewBroker(cfg.EventBuffer),
		loading: true,
	}
}

// Initialize restores the persisted session, if any. A corrupt blob is
// logged and discarded; the user simply starts signed out.
func (s *Store) Initialize(ctx context.Context) error {
	defer s.setLoading(false)

	data, err := s.storage.Read(ctx, StorageKey)
	if err != nil {
		if err != storage.ErrNotExist {
			s.logger.Warn("failed to read persisted session", "error", err)
		}
		return nil
	}

	var u core.User
	if err := json.Unmarshal(data, &u); err != nil || u.ID == "" {
		s.logger.Warn("persisted session is corrupt, discarding", "error", err)
		return nil
	}

	s.mu.Lock()
	s.user = &u
	s.provenance = core.ProvenanceRestored
	s.mu.Unlock()
	return nil
}

// SignIn authenticates against the backend. On any network failure or
// non-success response it synthesizes a deterministic local identity
// instead of failing: the returned user then has the email's local part as
// its name. Callers cannot tell the two outcomes apart from the result
// alone; Snapshot().Provenance records the branch taken.
func (s *Store) SignIn(ctx context.Context, email, password string) (core.User, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	u, err := s.client.Login(ctx, email, password)
	provenance := core.ProvenanceServer
	if err != nil {
		s.logger.Warn("auth backend unavailable, using local session", "error", err)
		u = core.User{
			ID:        fallbackSignInID,
			Email:     email,
			Name:      localPart(email),
			CreatedAt: time.Now().UTC(),
		}
		provenance = core.ProvenanceLocal
	}

	if err := s.replace(ctx, u, provenance); err != nil {
		return core.User{}, err
	}
	return u, nil
}

// SignUp registers a new account with the same network-then-fallback
// contract. The fallback identity gets a fresh timestamp-based ID so it
// cannot collide with a prior local session.
func (s *Store) SignUp(ctx context.Context, name, email, password string) (core.User, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	u, err := s.client.Signup(ctx, name, email, password)
	provenance := core.ProvenanceServer
	if err != nil {
		s.logger.Warn("auth backend unavailable, using local session", "error", err)
		u = core.User{
			ID:        fmt.Sprintf("demo-user-%d", time.Now().UnixMilli()),
			Email:     email,
			Name:      name,
			CreatedAt: time.Now().UTC(),
		}
		provenance = core.ProvenanceLocal
	}

	if err := s.replace(ctx, u, provenance); err != nil {
		return core.User{}, err
	}
	return u, nil
}

// SignOut clears the in-memory user and removes the persisted record. It
// always succeeds and is idempotent; a storage hiccup is logged, not
// surfaced.
func (s *Store) SignOut(ctx context.Context) {
	s.mu.Lock()
	had := s.user != nil
	var id string
	if had {
		id = s.user.ID
	}
	s.user = nil
	s.provenance = core.ProvenanceNone
	s.mu.Unlock()

	if err := s.storage.Delete(ctx, StorageKey); err != nil {
		s.logger.Warn("failed to remove persisted session", "error", err)
	}
	if had {
		s.broker.Publish(core.Event{Type: core.EventDelete, ID: id, Timestamp: time.Now().Unix()})
	}
}

// UpdateProfile applies a field-level partial update. With no user signed
// in it is a no-op. It attempts the network PATCH first; on failure the
// non-nil fields are merged into the current record locally, preserving
// everything omitted. Concurrent calls are not queued: the last writer
// wins.
func (s *Store) UpdateProfile(ctx context.Context, update core.ProfileUpdate) (core.User, error) {
	s.mu.RLock()
	current := s.user
	s.mu.RUnlock()
	if current == nil {
		return core.User{}, nil
	}

	s.setLoading(true)
	defer s.setLoading(false)

	u, err := s.client.UpdateProfile(ctx, update)
	provenance := core.ProvenanceServer
	if err != nil {
		s.logger.Warn("auth backend unavailable, merging profile locally", "error", err)
		u = merge(*current, update)
		provenance = core.ProvenanceLocal
	}

	if err := s.replace(ctx, u, provenance); err != nil {
		return core.User{}, err
	}
	return u, nil
}

// Snapshot returns the current immutable view.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Loading: s.loading, Provenance: s.provenance}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Subscribe registers a consumer of session-change events.
func (s *Store) Subscribe() (<-chan core.Event, func()) {
	return s.broker.Subscribe()
}

// Reload re-reads the persisted session after an external change to the
// identity key.
func (s *Store) Reload(ctx context.Context) error {
	data, err := s.storage.Read(ctx, StorageKey)
	if err != nil {
		if err != storage.ErrNotExist {
			return err
		}
		s.SignOut(ctx)
		return nil
	}

	var u core.User
	if err := json.Unmarshal(data, &u); err != nil || u.ID == "" {
		s.logger.Warn("persisted session is corrupt, discarding", "error", err)
		return nil
	}

	s.mu.Lock()
	s.user = &u
	s.provenance = core.ProvenanceRestored
	s.mu.Unlock()

	s.broker.Publish(core.Event{Type: core.EventModify, ID: u.ID, Timestamp: time.Now().Unix()})
	return nil
}

// Close tears down subscriptions.
func (s *Store) Close() {
	s.broker.Close()
}

// replace installs u as the signed-in user and persists it before reporting
// success.
func (s *Store) replace(ctx context.Context, u core.User, provenance core.Provenance) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to serialize user: %w", err)
	}
	if err := s.storage.Write(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.user = &u
	s.provenance = provenance
	s.mu.Unlock()

	s.broker.Publish(core.Event{Type: core.EventModify, ID: u.ID, Timestamp: time.Now().Unix()})
	return nil
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// merge applies the non-nil fields of update onto u.
func merge(u core.User, update core.ProfileUpdate) core.User {
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Avatar != nil {
		u.Avatar = *update.Avatar
	}
	return u
}

// localPart extracts the name portion of an email address.
func localPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// StoreState exposes internal state for observability.
type StoreState struct {
	Authenticated bool            `json:"authenticated"`
	UserID        string          `json:"user_id,omitempty"`
	Provenance    core.Provenance `json:"provenance,omitempty"`
	Loading       bool            `json:"loading"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := StoreState{
		Authenticated: s.user != nil,
		Provenance:    s.provenance,
		Loading:       s.loading,
	}
	if s.user != nil {
		state.UserID = s.user.ID
	}
	return state
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "identity-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
