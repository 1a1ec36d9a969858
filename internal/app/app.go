package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/nholt/taskdeck/internal/api"
	"github.com/nholt/taskdeck/internal/board"
	"github.com/nholt/taskdeck/internal/config"
	"github.com/nholt/taskdeck/internal/session"
	"github.com/nholt/taskdeck/internal/store"
)

// App holds the application state and dependencies.
type App struct {
	Config   *config.Config
	Store    *store.Store
	API      *api.Client
	Session  *session.Store
	Board    *board.Controller
	DataDir  string
	lockFile *flock.Flock
}

// New creates a new application instance: data directory, single-instance
// lock, durable store, gateway, and the session/board components. The
// session is restored from storage before this returns, so callers can
// gate UI on it immediately.
func New(cfg *config.Config, dataDir string) (*App, error) {
	if dataDir == "" {
		dataDir = store.DefaultDataDir()
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{
		Config:  cfg,
		DataDir: dataDir,
	}

	if err := app.acquireLock(); err != nil {
		return nil, err
	}

	kv, err := store.Open(filepath.Join(dataDir, "taskdeck.db"))
	if err != nil {
		app.releaseLock()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	app.Store = kv

	// The gateway reads the token through the session store on every call,
	// and the session store authenticates through the gateway. The token
	// source is a late-bound accessor so the cycle is harmless.
	app.Session = session.New(nil, kv)
	app.API = api.New(cfg.ServerURL, app.Session)
	app.Session.SetAPI(app.API)
	app.Board = board.New(app.API)

	app.Session.Restore()

	return app, nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances.
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.DataDir, "taskdeck.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of taskdeck is already running")
	}

	return nil
}

// releaseLock releases the file lock.
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources.
func (a *App) Close() error {
	var errs []error

	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close store: %w", err))
		}
	}

	a.releaseLock()

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
