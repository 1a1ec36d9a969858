// Package board owns the client's cached view of the shared task list and
// the user roster used for assignment. Every mutation is confirmation-first:
// the cache changes only when the server has confirmed the operation, and
// the server's returned representation always wins.
package board

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/nholt/taskdeck/internal/model"
)

// ErrEmptyTitle is returned when a task title is empty after trimming.
// It is detected locally; no request is made.
var ErrEmptyTitle = errors.New("task title must not be empty")

// API is the slice of the gateway the board controller needs.
type API interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, title, description string) (model.Task, error)
	UpdateTask(ctx context.Context, id string, patch model.TaskUpdate) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]model.User, error)
	AddUser(ctx context.Context, email string, role model.Role) (model.User, error)
	RemoveUser(ctx context.Context, id string) error
	SetUserActive(ctx context.Context, id string, active bool) (model.User, error)
}

// Buckets is the board's derived grouping of tasks by status. Each task
// keeps its position from the source list within its bucket.
type Buckets struct {
	Todo []model.Task
	Wip  []model.Task
	Done []model.Task
}

// Controller is the board controller. It is the single writer of the task
// cache and the roster snapshot.
type Controller struct {
	api API

	mu     sync.RWMutex
	tasks  []model.Task
	roster []model.User
	loaded bool
}

// New creates a board controller with an empty cache.
func New(api API) *Controller {
	return &Controller{api: api}
}

// Load fetches the task list and, best effort, the user roster in parallel.
// A roster failure degrades to an empty roster; a task failure fails the
// load and leaves the previous snapshot in place.
func (c *Controller) Load(ctx context.Context) error {
	type rosterResult struct {
		users []model.User
		err   error
	}
	rosterCh := make(chan rosterResult, 1)
	go func() {
		users, err := c.api.ListUsers(ctx)
		rosterCh <- rosterResult{users: users, err: err}
	}()

	tasks, err := c.api.ListTasks(ctx)
	roster := <-rosterCh
	if err != nil {
		return err
	}
	if roster.err != nil {
		// Task viewing must not depend on user-listing privilege.
		slog.Warn("roster fetch failed, proceeding without it", "err", roster.err)
		roster.users = nil
	}

	c.mu.Lock()
	c.tasks = tasks
	c.roster = roster.users
	c.loaded = true
	c.mu.Unlock()
	slog.Info("board loaded", "tasks", len(tasks), "roster", len(roster.users))
	return nil
}

// Loaded reports whether at least one load has succeeded.
func (c *Controller) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Tasks returns a copy of the task cache.
func (c *Controller) Tasks() []model.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Task(nil), c.tasks...)
}

// Roster returns a copy of the user roster snapshot.
func (c *Controller) Roster() []model.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.User(nil), c.roster...)
}

// AssignCandidates returns the roster users eligible for assignment.
// Inactive users are excluded, though they may remain visible as existing
// assignees on tasks.
func (c *Controller) AssignCandidates() []model.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var candidates []model.User
	for _, u := range c.roster {
		if u.Active {
			candidates = append(candidates, u)
		}
	}
	return candidates
}

// GroupByStatus partitions the task cache into the three board columns.
// It is recomputed from the cache on every call, never stored separately.
func (c *Controller) GroupByStatus() Buckets {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var b Buckets
	for _, t := range c.tasks {
		switch t.Status {
		case model.StatusTodo:
			b.Todo = append(b.Todo, t)
		case model.StatusWip:
			b.Wip = append(b.Wip, t)
		case model.StatusDone:
			b.Done = append(b.Done, t)
		}
	}
	return b
}

// CreateTask creates a task and prepends the server's result to the cache.
// A whitespace-only title is rejected locally without a network call.
func (c *Controller) CreateTask(ctx context.Context, title, description string) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, ErrEmptyTitle
	}

	task, err := c.api.CreateTask(ctx, title, description)
	if err != nil {
		return model.Task{}, err
	}

	c.mu.Lock()
	c.tasks = append([]model.Task{task}, c.tasks...)
	c.mu.Unlock()
	return task, nil
}

// AdvanceStatus proposes the next status in the cyclic order and replaces
// the cached task with the server's response. The server's status value
// wins even if it differs from the proposal.
func (c *Controller) AdvanceStatus(ctx context.Context, task model.Task) (model.Task, error) {
	next := task.Status.Next()
	updated, err := c.api.UpdateTask(ctx, task.ID, model.TaskUpdate{Status: &next})
	if err != nil {
		return model.Task{}, err
	}
	c.replace(updated)
	return updated, nil
}

// DeleteTask removes a task from the cache only once the server confirms
// the delete. A failed delete leaves the task visible.
func (c *Controller) DeleteTask(ctx context.Context, task model.Task) error {
	if err := c.api.DeleteTask(ctx, task.ID); err != nil {
		return err
	}

	c.mu.Lock()
	kept := c.tasks[:0]
	for _, t := range c.tasks {
		if t.ID != task.ID {
			kept = append(kept, t)
		}
	}
	c.tasks = kept
	c.mu.Unlock()
	return nil
}

// AssignUser replaces the task's assignee set with the single given user.
// The server validates the user id; the controller does not re-check it.
func (c *Controller) AssignUser(ctx context.Context, task model.Task, userID string) (model.Task, error) {
	patch := model.TaskUpdate{Assignees: []model.Assignee{{ID: userID}}}
	updated, err := c.api.UpdateTask(ctx, task.ID, patch)
	if err != nil {
		return model.Task{}, err
	}
	c.replace(updated)
	return updated, nil
}

// replace swaps the cached task with the same id for the server's version.
// Interleaved completions apply in arrival order; the last response wins.
func (c *Controller) replace(task model.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.tasks {
		if c.tasks[i].ID == task.ID {
			c.tasks[i] = task
			return
		}
	}
}

// AddUser creates a user account and appends it to the roster snapshot.
func (c *Controller) AddUser(ctx context.Context, email string, role model.Role) (model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.User{}, errors.New("email must not be empty")
	}

	user, err := c.api.AddUser(ctx, email, role)
	if err != nil {
		return model.User{}, err
	}

	c.mu.Lock()
	c.roster = append(c.roster, user)
	c.mu.Unlock()
	return user, nil
}

// RemoveUser deletes a user account and drops it from the roster snapshot
// once the server confirms.
func (c *Controller) RemoveUser(ctx context.Context, id string) error {
	if err := c.api.RemoveUser(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	kept := c.roster[:0]
	for _, u := range c.roster {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	c.roster = kept
	c.mu.Unlock()
	return nil
}

// SetUserActive toggles a user's active flag and replaces the roster entry
// with the server's version.
func (c *Controller) SetUserActive(ctx context.Context, id string, active bool) (model.User, error) {
	user, err := c.api.SetUserActive(ctx, id, active)
	if err != nil {
		return model.User{}, err
	}

	c.mu.Lock()
	for i := range c.roster {
		if c.roster[i].ID == user.ID {
			c.roster[i] = user
			break
		}
	}
	c.mu.Unlock()
	return user, nil
}
