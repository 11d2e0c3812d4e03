package ports

import (
	"context"

	"github.com/taskhive/task-api/internal/core/domain"
)

// CreateTaskInput carries the client-settable fields of a new task.
type CreateTaskInput struct {
	Description string
	Completed   bool
}

// ListTasksQuery holds the raw query-string options for the list endpoint.
// SortBy uses the wire format "field_dir" (e.g. "createdAt_asc"); any
// direction other than "asc" sorts descending.
type ListTasksQuery struct {
	Completed *bool
	Limit     int64
	Skip      int64
	SortBy    string
}

// TaskService defines use-case operations for tasks. Every operation is
// scoped to the calling owner.
type TaskService interface {
	Create(ctx context.Context, ownerID string, input CreateTaskInput) (*domain.Task, error)
	List(ctx context.Context, ownerID string, query ListTasksQuery) ([]*domain.Task, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Task, error)
	// Update applies a field-keyed update. Any key outside
	// {description, completed} rejects the whole request.
	Update(ctx context.Context, ownerID, id string, updates map[string]any) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, id string) (*domain.Task, error)
}
