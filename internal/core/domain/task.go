package domain

import (
	"errors"
	"time"
)

var ErrTaskNotFound = errors.New("task not found")

// Task is owned by exactly one user. OwnerID is immutable after creation;
// every query on tasks is filtered by it, so a task belonging to someone
// else is indistinguishable from a missing one.
type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
