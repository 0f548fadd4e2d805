package platform

import (
	"log/slog"
	"net/http"

	"github.com/whispernotes/whisper/pkg/core"
	"github.com/whispernotes/whisper/pkg/identity"
	"github.com/whispernotes/whisper/pkg/storage"
	"github.com/whispernotes/whisper/pkg/surface"
)

// options holds the internal configuration for the whisper app.
type options struct {
	logger      *slog.Logger
	storage     storage.Store
	surface     surface.Surface
	authClient  identity.AuthClient
	httpClient  *http.Client
	baseURL     string
	eventBuffer int
	forceTemp   bool
	mustExist   bool
	watch       bool
	watchErrors func(error)
}

// Option defines a functional option for configuring the app.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		eventBuffer: core.DefaultEventBuffer,
	}
}

// WithLogger sets the logger for all stores.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStorage injects a custom durable storage adapter (e.g. the in-memory
// one). If provided, the default filesystem adapter is skipped.
func WithStorage(store storage.Store) Option {
	return func(o *options) {
		o.storage = store
	}
}

// WithSurface sets the document surface the theme store publishes into.
// Defaults to an in-memory document.
func WithSurface(s surface.Surface) Option {
	return func(o *options) {
		o.surface = s
	}
}

// WithBaseURL sets the auth backend base URL (e.g. "http://localhost:8799").
// An empty base URL still produces a working app: every auth call fails fast
// and the identity store falls back to local sessions.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithHTTPClient sets the HTTP client used for auth calls. Defaults to one
// with a 10s timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithAuthClient injects a custom auth client, bypassing BaseURL/HTTPClient.
func WithAuthClient(client identity.AuthClient) Option {
	return func(o *options) {
		o.authClient = client
	}
}

// WithEventBuffer sets the per-subscriber event channel buffer.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}

// WithForceTemp forces the state directory into a temporary location
// (useful for testing and demos).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.forceTemp = force
	}
}

// WithMustExist requires the state directory to already exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithWatch starts the storage watcher: external edits to the state files
// are reconciled back into the in-memory stores.
func WithWatch(enabled bool) Option {
	return func(o *options) {
		o.watch = enabled
	}
}

// WithWatcherErrorHandler registers a callback for runtime watcher failures
// which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.watchErrors = fn
	}
}
