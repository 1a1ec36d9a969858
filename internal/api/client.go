// Package api is the HTTP gateway to the task-board backend. Every server
// call in the client goes through it; it attaches the session's bearer token
// and normalizes non-2xx responses into *Error values.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nholt/taskdeck/internal/model"
)

// TokenSource yields the current credential token, or "" when no session
// exists. The session store implements this.
type TokenSource interface {
	Token() string
}

// Error is a non-success response from the backend. Message carries the
// response body text when the server sent one, else the HTTP status text.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Client performs authenticated JSON requests against the backend.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

// New creates a client for the given base URL. The token source may be nil
// for unauthenticated use.
func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// do issues a request and decodes the JSON response into out (when non-nil).
// Responses are never cached; every call hits the server.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		b := new(bytes.Buffer)
		if err := json.NewEncoder(b).Encode(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		buf = b
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(resp.Body)
		text := strings.TrimSpace(string(msg))
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: text}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Login exchanges credentials for a token and user record.
func (c *Client) Login(ctx context.Context, email, password string) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", credentials{Email: email, Password: password}, &resp)
	return resp, err
}

// Register creates an account and establishes a session in one step.
func (c *Client) Register(ctx context.Context, email, password string) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", credentials{Email: email, Password: password}, &resp)
	return resp, err
}

// ListTasks fetches the full task list.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks)
	return tasks, err
}

// CreateTask creates a task. The server assigns id, createdAt, and the
// initial todo status.
func (c *Client) CreateTask(ctx context.Context, title, description string) (model.Task, error) {
	var task model.Task
	payload := struct {
		Title       string `json:"title"`
		Description string `json:"description,omitempty"`
	}{Title: title, Description: description}
	err := c.do(ctx, http.MethodPost, "/tasks", payload, &task)
	return task, err
}

// UpdateTask sends a partial update for the task and returns the server's
// representation, which is authoritative.
func (c *Client) UpdateTask(ctx context.Context, id string, patch model.TaskUpdate) (model.Task, error) {
	var task model.Task
	err := c.do(ctx, http.MethodPost, "/tasks/"+id, patch, &task)
	return task, err
}

// DeleteTask deletes a task by id.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil)
}

// ListUsers fetches the user roster. The endpoint may be privilege-gated;
// callers decide whether a failure here is fatal.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	err := c.do(ctx, http.MethodGet, "/users", nil, &users)
	return users, err
}

// AddUser creates a user account (admin only).
func (c *Client) AddUser(ctx context.Context, email string, role model.Role) (model.User, error) {
	var user model.User
	payload := struct {
		Email string     `json:"email"`
		Role  model.Role `json:"role,omitempty"`
	}{Email: email, Role: role}
	err := c.do(ctx, http.MethodPost, "/users", payload, &user)
	return user, err
}

// RemoveUser deletes a user account (admin only).
func (c *Client) RemoveUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+id, nil, nil)
}

// SetUserActive toggles a user's active flag (admin only).
func (c *Client) SetUserActive(ctx context.Context, id string, active bool) (model.User, error) {
	var user model.User
	payload := struct {
		Active bool `json:"active"`
	}{Active: active}
	err := c.do(ctx, http.MethodPatch, "/users/"+id, payload, &user)
	return user, err
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
