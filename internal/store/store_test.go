package store

import (
	"path/filepath"
	"testing"
)

func TestGetMissingKey(t *testing.T) {
	s := openTemp(t)

	_, ok, err := s.Get("token")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Fatal("expected missing key to report ok=false")
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	s := openTemp(t)

	if err := s.Set("token", "abc123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set("token", "def456"); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}

	value, ok, err := s.Get("token")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || value != "def456" {
		t.Fatalf("got (%q, %v), want (\"def456\", true)", value, ok)
	}
}

func TestSetManyWritesPairTogether(t *testing.T) {
	s := openTemp(t)

	err := s.SetMany(map[string]string{
		"token": "abc123",
		"user":  `{"id":"u1"}`,
	})
	if err != nil {
		t.Fatalf("SetMany failed: %v", err)
	}

	for key, want := range map[string]string{"token": "abc123", "user": `{"id":"u1"}`} {
		value, ok, err := s.Get(key)
		if err != nil {
			t.Fatalf("Get %q failed: %v", key, err)
		}
		if !ok || value != want {
			t.Fatalf("Get %q = (%q, %v), want (%q, true)", key, value, ok, want)
		}
	}
}

func TestDeleteManyRemovesPair(t *testing.T) {
	s := openTemp(t)

	if err := s.SetMany(map[string]string{"token": "a", "user": "b"}); err != nil {
		t.Fatalf("SetMany failed: %v", err)
	}
	if err := s.DeleteMany("token", "user"); err != nil {
		t.Fatalf("DeleteMany failed: %v", err)
	}

	for _, key := range []string{"token", "user"} {
		if _, ok, _ := s.Get(key); ok {
			t.Fatalf("key %q still present after DeleteMany", key)
		}
	}
}

func TestDeleteMissingKeyIsNoError(t *testing.T) {
	s := openTemp(t)

	if err := s.Delete("nope"); err != nil {
		t.Fatalf("Delete of missing key failed: %v", err)
	}
}

func TestValuesSurviveReopen(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Set("token", "persisted"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	value, ok, err := s2.Get("token")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if !ok || value != "persisted" {
		t.Fatalf("got (%q, %v) after reopen, want (\"persisted\", true)", value, ok)
	}
}

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}
