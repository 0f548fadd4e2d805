package platform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/lifecycle"

	"github.com/whispernotes/whisper/pkg/authapi"
	"github.com/whispernotes/whisper/pkg/core"
	"github.com/whispernotes/whisper/pkg/identity"
	"github.com/whispernotes/whisper/pkg/notes"
	"github.com/whispernotes/whisper/pkg/storage"
	"github.com/whispernotes/whisper/pkg/surface"
	"github.com/whispernotes/whisper/pkg/theme"
)

// App is the assembled state layer: the four stores wired over one storage
// namespace, initialized in dependency order.
type App struct {
	Identity  *identity.Store
	Themes    *theme.Store
	Notebooks *notes.NotebookStore
	Notes     *notes.NoteStore

	Storage storage.Store
	Surface surface.Surface

	logger *slog.Logger
	cancel context.CancelFunc
}

// New assembles the app over the state directory at dir. Stores are created
// and initialized leaves-first: themes and identity depend on nothing,
// notebooks are referenced by notes, notes come last.
func New(dir string, opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	surf := o.surface
	if surf == nil {
		surf = surface.NewDocument()
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{Surface: surf, logger: logger, cancel: cancel}

	// Storage
	store := o.storage
	if store == nil {
		useTemp := o.forceTemp || IsDevRun()
		resolved := ResolveStateDir(dir, useTemp)
		if useTemp && resolved != dir {
			logger.Warn("running in SAFE MODE (Dev/Test)", "original_dir", dir, "resolved_dir", resolved)
		}
		fsStore := storage.NewFS(storage.FSConfig{
			Dir:          resolved,
			MustExist:    o.mustExist,
			Logger:       logger,
			ErrorHandler: o.watchErrors,
		})
		if err := fsStore.Initialize(ctx); err != nil {
			cancel()
			return nil, err
		}
		store = fsStore
	}
	app.Storage = store

	// Auth client
	authClient := o.authClient
	if authClient == nil {
		authClient = authapi.NewClient(o.baseURL, o.httpClient)
	}

	// Stores, leaves first.
	app.Themes = theme.NewStore(theme.Config{
		Storage:     store,
		Surface:     surf,
		Logger:      logger,
		EventBuffer: o.eventBuffer,
	})
	if err := app.Themes.Initialize(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize theme store: %w", err)
	}

	app.Identity = identity.NewStore(identity.Config{
		Storage:     store,
		Client:      authClient,
		Logger:      logger,
		EventBuffer: o.eventBuffer,
	})
	if err := app.Identity.Initialize(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize identity store: %w", err)
	}

	app.Notebooks = notes.NewNotebookStore(notes.NotebookConfig{
		Storage:     store,
		Logger:      logger,
		EventBuffer: o.eventBuffer,
	})
	if err := app.Notebooks.Initialize(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize notebook store: %w", err)
	}

	app.Notes = notes.NewNoteStore(notes.NoteConfig{
		Storage:     store,
		Logger:      logger,
		EventBuffer: o.eventBuffer,
	}, app.Notebooks)
	if err := app.Notes.Initialize(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize note store: %w", err)
	}
	app.Notebooks.BindNotes(app.Notes)

	if o.watch {
		if err := app.startWatch(ctx); err != nil {
			cancel()
			return nil, err
		}
	}

	return app, nil
}

// startWatch reconciles external edits to the state files back into the
// in-memory stores.
func (a *App) startWatch(ctx context.Context) error {
	watchable, ok := a.Storage.(storage.Watchable)
	if !ok {
		return fmt.Errorf("storage adapter does not support watching")
	}

	events, err := watchable.Watch(ctx, "whisper_*")
	if err != nil {
		return fmt.Errorf("failed to start storage watcher: %w", err)
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-events:
				if !ok {
					return nil
				}
				a.reconcile(ctx, e)
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		a.logger.Error("reconcile loop failed", "error", err)
	}))

	return nil
}

// reconcile routes a storage key event to the store owning that key.
func (a *App) reconcile(ctx context.Context, e core.Event) {
	a.logger.Debug("reconciling external change", "key", e.ID)

	var err error
	switch e.ID {
	case identity.StorageKey:
		err = a.Identity.Reload(ctx)
	case theme.StorageKey:
		err = a.Themes.Reload(ctx)
	case notes.NotebooksKey:
		err = a.Notebooks.Reload(ctx)
	case notes.NotesKey:
		err = a.Notes.Reload(ctx)
	default:
		a.logger.Debug("ignoring unowned key", "key", e.ID)
	}
	if err != nil {
		a.logger.Error("reconcile failed", "key", e.ID, "error", err)
	}
}

// Close stops the watcher and tears down all subscriptions.
func (a *App) Close() {
	a.cancel()
	a.Identity.Close()
	a.Themes.Close()
	a.Notebooks.Close()
	a.Notes.Close()
}
