package ports

import (
	"context"

	"github.com/taskhive/task-api/internal/core/domain"
)

// ListTasksFilter carries all query parameters for listing tasks.
// OwnerID is always set by the service layer; a zero Limit/Skip means
// "no limit"/"no skip".
type ListTasksFilter struct {
	OwnerID   string
	Completed *bool  // nil = no completion filter
	Limit     int64
	Skip      int64
	SortField string // stored (BSON) field name; empty = natural order
	SortAsc   bool
}

// TaskRepository defines persistence operations for tasks. Every lookup and
// mutation is scoped by owner id at the query level.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	List(ctx context.Context, filter ListTasksFilter) ([]*domain.Task, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// DeleteByIDAndOwner removes a single task and returns the deleted document.
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (*domain.Task, error)
	// DeleteByOwner removes all tasks for an owner and returns how many were deleted.
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
