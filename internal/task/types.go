// Package task provides the owner-scoped task store consumed by the tool
// handlers. All reads and writes are filtered by owner in SQL; a row that
// exists but belongs to someone else is indistinguishable from one that
// doesn't exist.
package task

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a task is absent or owned by another subject.
var ErrNotFound = errors.New("task not found")

// Task is one item on a user's list.
type Task struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListFilter narrows a List call. Completed is a tri-state: nil means all.
type ListFilter struct {
	Completed *bool
}
