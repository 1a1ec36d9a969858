// Package session owns the authenticated session: the current user, the
// credential token, and their persistence across restarts. It is the single
// writer of session state; everything else reads through its accessors.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nholt/taskdeck/internal/model"
)

// Storage keys for the persisted token/user pair. They are written and
// removed together; a session is only restored when both are present.
const (
	keyToken = "token"
	keyUser  = "user"
)

// AuthAPI is the slice of the gateway the session store needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (model.AuthResponse, error)
	Register(ctx context.Context, email, password string) (model.AuthResponse, error)
}

// Storage is durable key-value persistence for the session pair.
type Storage interface {
	Get(key string) (string, bool, error)
	SetMany(entries map[string]string) error
	DeleteMany(keys ...string) error
}

// Store is the session store. The zero user/token means no session.
type Store struct {
	api     AuthAPI
	storage Storage

	mu    sync.RWMutex
	user  *model.User
	token string
}

// New creates a session store. Call Restore before showing any
// role-gated UI.
func New(api AuthAPI, storage Storage) *Store {
	return &Store{api: api, storage: storage}
}

// SetAPI binds the gateway after construction. The gateway needs the store
// as its token source before it exists, so the wiring is two-step.
func (s *Store) SetAPI(api AuthAPI) {
	s.api = api
}

// Restore attempts to re-establish a persisted session. When the stored
// pair is incomplete or malformed, the leftovers are removed and the
// session stays empty. No network call is made.
func (s *Store) Restore() {
	token, tokenOK, err := s.storage.Get(keyToken)
	if err != nil {
		slog.Warn("session restore: read token", "err", err)
		return
	}
	raw, userOK, err := s.storage.Get(keyUser)
	if err != nil {
		slog.Warn("session restore: read user", "err", err)
		return
	}

	if !tokenOK || !userOK || token == "" {
		if tokenOK || userOK {
			// Half a pair is an inconsistent session; destroy it.
			if err := s.storage.DeleteMany(keyToken, keyUser); err != nil {
				slog.Warn("session restore: clear partial session", "err", err)
			}
		}
		return
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		slog.Warn("session restore: malformed user record", "err", err)
		if err := s.storage.DeleteMany(keyToken, keyUser); err != nil {
			slog.Warn("session restore: clear malformed session", "err", err)
		}
		return
	}

	s.mu.Lock()
	s.user = &user
	s.token = token
	s.mu.Unlock()
	slog.Info("session restored", "email", user.Email, "role", user.Role)
}

// Login establishes a session with the given credentials. On failure the
// session is left unchanged and nothing is persisted.
func (s *Store) Login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.establish(resp)
}

// Register creates an account and establishes a session, with the same
// contract as Login.
func (s *Store) Register(ctx context.Context, email, password string) error {
	resp, err := s.api.Register(ctx, email, password)
	if err != nil {
		return err
	}
	return s.establish(resp)
}

func (s *Store) establish(resp model.AuthResponse) error {
	raw, err := json.Marshal(resp.User)
	if err != nil {
		return err
	}
	if err := s.storage.SetMany(map[string]string{
		keyToken: resp.Token,
		keyUser:  string(raw),
	}); err != nil {
		return err
	}

	s.mu.Lock()
	user := resp.User
	s.user = &user
	s.token = resp.Token
	s.mu.Unlock()
	slog.Info("session established", "email", resp.User.Email, "role", resp.User.Role)
	return nil
}

// Logout clears the session in memory and in storage. It never fails; a
// storage error is logged and the in-memory session is cleared anyway.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.storage.DeleteMany(keyToken, keyUser); err != nil {
		slog.Warn("logout: clear storage", "err", err)
	}
	slog.Info("session cleared")
}

// HasRole reports whether a session exists and its user holds the role.
func (s *Store) HasRole(role model.Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.Role == role
}

// Active reports whether a session exists.
func (s *Store) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// User returns a copy of the session's user, or nil without a session.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// Token returns the current credential token, or "" without a session.
// The API gateway reads it on every request.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
