package model

import (
	"time"
)

// Status represents the current state of a task on the board.
type Status string

const (
	StatusTodo Status = "todo"
	StatusWip  Status = "wip"
	StatusDone Status = "done"
)

// Next returns the status that follows in the board's cyclic order:
// todo -> wip -> done -> todo.
func (s Status) Next() Status {
	switch s {
	case StatusTodo:
		return StatusWip
	case StatusWip:
		return StatusDone
	case StatusDone:
		return StatusTodo
	default:
		return StatusTodo
	}
}

// Valid returns true if the status is one of the three board columns.
func (s Status) Valid() bool {
	return s == StatusTodo || s == StatusWip || s == StatusDone
}

// Assignee is the subset of a user attached to a task for display.
type Assignee struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Task represents a shared task owned by the server. The client holds a
// cached copy that is only updated from confirmed server responses.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Assignees   []Assignee `json:"assignees,omitempty"`
	CreatorID   string     `json:"creatorId"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TaskUpdate is the partial-task payload sent to the update endpoint.
// Only the fields the client proposes are set.
type TaskUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Assignees   []Assignee `json:"assignees,omitempty"`
}
