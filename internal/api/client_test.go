package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nholt/taskdeck/internal/model"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]model.Task{})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("tok-1"))
	if _, err := c.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-1")
	}
}

func TestNoBearerWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(model.AuthResponse{Token: "tok-1"})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken(""))
	if _, err := c.Login(context.Background(), "a@x.com", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want no header before a session exists", gotAuth)
	}
}

func TestRequestIDSent(t *testing.T) {
	var gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-Id")
		json.NewEncoder(w).Encode([]model.Task{})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	if _, err := c.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if gotID == "" {
		t.Error("expected an X-Request-Id header on every request")
	}
}

func TestErrorUsesBodyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid credentials\n"))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.Login(context.Background(), "a@x.com", "bad")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *api.Error", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", apiErr.Status)
	}
	if apiErr.Message != "invalid credentials" {
		t.Errorf("Message = %q, want the trimmed body text", apiErr.Message)
	}
}

func TestErrorFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.ListUsers(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *api.Error", err)
	}
	if apiErr.Message != "Forbidden" {
		t.Errorf("Message = %q, want the HTTP status text", apiErr.Message)
	}
}

func TestUpdateTaskSendsPartialPatch(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(model.Task{ID: "t1", Status: model.StatusWip})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	status := model.StatusWip
	task, err := c.UpdateTask(context.Background(), "t1", model.TaskUpdate{Status: &status})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if gotPath != "/tasks/t1" {
		t.Errorf("path = %q, want /tasks/t1", gotPath)
	}
	if gotBody["status"] != "wip" {
		t.Errorf("body status = %v, want wip", gotBody["status"])
	}
	if _, present := gotBody["title"]; present {
		t.Error("unset fields must be omitted from the patch")
	}
	if task.Status != model.StatusWip {
		t.Errorf("decoded status = %s, want wip", task.Status)
	}
}

func TestCreateTaskOmitsEmptyDescription(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(model.Task{ID: "t1", Title: "Buy milk", Status: model.StatusTodo})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	if _, err := c.CreateTask(context.Background(), "Buy milk", ""); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if gotBody["title"] != "Buy milk" {
		t.Errorf("body title = %v, want Buy milk", gotBody["title"])
	}
	if _, present := gotBody["description"]; present {
		t.Error("empty description should be omitted")
	}
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode([]model.Task{})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", nil)
	if _, err := c.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if gotPath != "/tasks" {
		t.Errorf("path = %q, want /tasks", gotPath)
	}
}
