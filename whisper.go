package whisper

import (
	"log/slog"
	"net/http"

	"github.com/whispernotes/whisper/internal/platform"
	"github.com/whispernotes/whisper/pkg/core"
	"github.com/whispernotes/whisper/pkg/identity"
	"github.com/whispernotes/whisper/pkg/notes"
	"github.com/whispernotes/whisper/pkg/storage"
	"github.com/whispernotes/whisper/pkg/surface"
	"github.com/whispernotes/whisper/pkg/theme"
)

// --- Types ---

// App is the assembled state layer: identity, theme, notebook and note
// stores wired over one storage namespace.
type App = platform.App

// User, Theme, Note and Notebook are the domain entities.
type (
	User     = core.User
	Theme    = core.Theme
	Note     = core.Note
	Notebook = core.Notebook
)

// Draft is the caller-supplied part of a new note.
type Draft = notes.Draft

// ProfileUpdate and NotePatch are field-level partial updates; nil fields
// are left untouched.
type (
	ProfileUpdate = core.ProfileUpdate
	NotePatch     = core.NotePatch
)

// CascadePolicy decides what happens to notes referencing a deleted
// notebook.
type CascadePolicy = core.CascadePolicy

const (
	CascadeDetach = core.CascadeDetach
	CascadeDelete = core.CascadeDelete
)

// FileConfig is the optional YAML configuration the CLI reads.
type FileConfig = platform.FileConfig

// --- Configuration ---

// Option defines a functional option for configuring the app.
type Option = platform.Option

// WithLogger sets the logger for all stores.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStorage injects a custom durable storage adapter.
func WithStorage(store storage.Store) Option {
	return platform.WithStorage(store)
}

// WithSurface sets the document surface the theme store publishes into.
func WithSurface(s surface.Surface) Option {
	return platform.WithSurface(s)
}

// WithBaseURL sets the auth backend base URL.
func WithBaseURL(url string) Option {
	return platform.WithBaseURL(url)
}

// WithHTTPClient sets the HTTP client used for auth calls.
func WithHTTPClient(client *http.Client) Option {
	return platform.WithHTTPClient(client)
}

// WithAuthClient injects a custom auth client.
func WithAuthClient(client identity.AuthClient) Option {
	return platform.WithAuthClient(client)
}

// WithEventBuffer sets the per-subscriber event channel buffer size.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// WithForceTemp forces the state directory into a temporary location
// (useful for testing and demos).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist requires the state directory to already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithWatch reconciles external edits to the state files back into the
// in-memory stores.
func WithWatch(enabled bool) Option {
	return platform.WithWatch(enabled)
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// New assembles the state layer over the state directory at dir.
func New(dir string, opts ...Option) (*App, error) {
	return platform.New(dir, opts...)
}

// LoadConfig reads the optional YAML config file; a missing file yields the
// zero config.
func LoadConfig(path string) (FileConfig, error) {
	return platform.LoadConfig(path)
}

// --- Safety & Utils ---

// ResolveStateDir determines the actual state directory based on safety
// rules.
func ResolveStateDir(userPath string, forceTemp bool) string {
	return platform.ResolveStateDir(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or
// `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// Catalog returns the built-in theme catalog in its fixed order.
func Catalog() []Theme {
	return theme.Catalog()
}
