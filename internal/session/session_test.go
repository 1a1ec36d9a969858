package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nholt/taskdeck/internal/logging"
	"github.com/nholt/taskdeck/internal/model"
)

func init() {
	logging.Discard()
}

// memStorage is an in-memory Storage for tests.
type memStorage struct {
	data map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string]string)}
}

func (m *memStorage) Get(key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStorage) SetMany(entries map[string]string) error {
	for k, v := range entries {
		m.data[k] = v
	}
	return nil
}

func (m *memStorage) DeleteMany(keys ...string) error {
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// fakeAuthAPI returns a canned response or error.
type fakeAuthAPI struct {
	resp  model.AuthResponse
	err   error
	calls int
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (model.AuthResponse, error) {
	f.calls++
	return f.resp, f.err
}

func (f *fakeAuthAPI) Register(ctx context.Context, email, password string) (model.AuthResponse, error) {
	f.calls++
	return f.resp, f.err
}

func adminUser() model.User {
	return model.User{ID: "u1", Email: "a@x.com", Role: model.RoleAdmin, Active: true}
}

func TestRestoreValidPair(t *testing.T) {
	storage := newMemStorage()
	raw, _ := json.Marshal(adminUser())
	storage.data["token"] = "tok-1"
	storage.data["user"] = string(raw)

	s := New(&fakeAuthAPI{}, storage)
	s.Restore()

	if !s.Active() {
		t.Fatal("expected a session after restoring a valid pair")
	}
	if !s.HasRole(model.RoleAdmin) {
		t.Error("HasRole(admin) should be true for the stored admin user")
	}
	if s.HasRole(model.RoleUser) {
		t.Error("HasRole(user) should be false for an admin session")
	}
	if s.Token() != "tok-1" {
		t.Errorf("Token() = %q, want %q", s.Token(), "tok-1")
	}
}

func TestRestoreHalfPairYieldsNoSessionAndClearsStorage(t *testing.T) {
	for name, seed := range map[string]map[string]string{
		"token only": {"token": "tok-1"},
		"user only":  {"user": `{"id":"u1","email":"a@x.com","role":"user","active":true}`},
	} {
		t.Run(name, func(t *testing.T) {
			storage := newMemStorage()
			for k, v := range seed {
				storage.data[k] = v
			}

			s := New(&fakeAuthAPI{}, storage)
			s.Restore()

			if s.Active() {
				t.Fatal("expected no session from a half pair")
			}
			if len(storage.data) != 0 {
				t.Errorf("expected partial session cleared from storage, got %v", storage.data)
			}
		})
	}
}

func TestRestoreMalformedUserClearsStorage(t *testing.T) {
	storage := newMemStorage()
	storage.data["token"] = "tok-1"
	storage.data["user"] = "{not json"

	s := New(&fakeAuthAPI{}, storage)
	s.Restore()

	if s.Active() {
		t.Fatal("expected no session from a malformed user record")
	}
	if len(storage.data) != 0 {
		t.Errorf("expected malformed session cleared from storage, got %v", storage.data)
	}
}

func TestLoginEstablishesAndPersists(t *testing.T) {
	storage := newMemStorage()
	api := &fakeAuthAPI{resp: model.AuthResponse{Token: "tok-9", User: adminUser()}}
	s := New(api, storage)

	if err := s.Login(context.Background(), "a@x.com", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if user := s.User(); user == nil || user.Email != "a@x.com" {
		t.Fatalf("User() = %+v, want the logged-in user", user)
	}
	if s.Token() != "tok-9" {
		t.Errorf("Token() = %q, want %q", s.Token(), "tok-9")
	}
	if _, ok := storage.data["token"]; !ok {
		t.Error("token not persisted")
	}
	if _, ok := storage.data["user"]; !ok {
		t.Error("user not persisted")
	}
}

func TestLoginFailureLeavesSessionUnchanged(t *testing.T) {
	storage := newMemStorage()
	api := &fakeAuthAPI{err: errors.New("invalid credentials")}
	s := New(api, storage)

	err := s.Login(context.Background(), "a@x.com", "bad")
	if err == nil {
		t.Fatal("expected Login to fail")
	}
	if err.Error() != "invalid credentials" {
		t.Errorf("error = %q, want the server message", err)
	}
	if s.Active() {
		t.Error("failed login must not establish a session")
	}
	if len(storage.data) != 0 {
		t.Errorf("failed login must not persist anything, got %v", storage.data)
	}
}

func TestRegisterEstablishesSession(t *testing.T) {
	storage := newMemStorage()
	api := &fakeAuthAPI{resp: model.AuthResponse{
		Token: "tok-2",
		User:  model.User{ID: "u2", Email: "b@x.com", Role: model.RoleUser, Active: true},
	}}
	s := New(api, storage)

	if err := s.Register(context.Background(), "b@x.com", "pw"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !s.HasRole(model.RoleUser) {
		t.Error("expected a user-role session after register")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	storage := newMemStorage()
	api := &fakeAuthAPI{resp: model.AuthResponse{Token: "tok-1", User: adminUser()}}
	s := New(api, storage)

	if err := s.Login(context.Background(), "a@x.com", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	s.Logout()

	if s.Active() {
		t.Error("session still active after logout")
	}
	if s.HasRole(model.RoleAdmin) || s.HasRole(model.RoleUser) {
		t.Error("HasRole should be false for every role after logout")
	}
	if s.Token() != "" {
		t.Error("token should be empty after logout")
	}
	if len(storage.data) != 0 {
		t.Errorf("storage should hold neither entry after logout, got %v", storage.data)
	}
}

func TestHasRoleWithoutSession(t *testing.T) {
	s := New(&fakeAuthAPI{}, newMemStorage())

	if s.HasRole(model.RoleAdmin) || s.HasRole(model.RoleUser) {
		t.Error("HasRole must be false for every role without a session")
	}
}
