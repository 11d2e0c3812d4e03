package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
)

// taskUpdatableFields is the allow-list for PATCH /tasks/:id. The owner id
// is deliberately absent: it is immutable after creation.
var taskUpdatableFields = map[string]struct{}{
	"description": {},
	"completed":   {},
}

// sortFieldNames maps wire (JSON) sort field names to stored field names.
// Unknown names pass through unchanged; sorting on a field no document has
// is a no-op in the store.
var sortFieldNames = map[string]string{
	"description": "description",
	"completed":   "completed",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// TaskService implements owner-scoped task use cases.
type TaskService struct {
	tasks  ports.TaskRepository
	logger zerolog.Logger
}

func NewTaskService(tasks ports.TaskRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{tasks: tasks, logger: logger}
}

// Create inserts a task owned by the caller.
func (s *TaskService) Create(ctx context.Context, ownerID string, input ports.CreateTaskInput) (*domain.Task, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}

	now := time.Now().UTC()
	task, err := s.tasks.Create(ctx, &domain.Task{
		Description: description,
		Completed:   input.Completed,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("task_id", task.ID).Str("owner_id", ownerID).Msg("task created")
	return task, nil
}

// List returns the caller's tasks, intersected with the optional completion
// filter and shaped by pagination and sorting. No default limit is applied:
// an absent limit returns every matching task.
func (s *TaskService) List(ctx context.Context, ownerID string, query ports.ListTasksQuery) ([]*domain.Task, error) {
	filter := ports.ListTasksFilter{
		OwnerID:   ownerID,
		Completed: query.Completed,
	}
	if query.Limit > 0 {
		filter.Limit = query.Limit
	}
	if query.Skip > 0 {
		filter.Skip = query.Skip
	}
	filter.SortField, filter.SortAsc = parseSortBy(query.SortBy)

	return s.tasks.List(ctx, filter)
}

// Get retrieves one task under the caller's owner scope.
func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	return s.tasks.FindByIDAndOwner(ctx, id, ownerID)
}

// Update applies a field-keyed update under the caller's owner scope. The
// field set is validated in full before anything is written.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, updates map[string]any) (*domain.Task, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: empty update", domain.ErrValidation)
	}
	for field := range updates {
		if _, ok := taskUpdatableFields[field]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidUpdate, field)
		}
	}

	task, err := s.tasks.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	updated := *task
	if v, ok := updates["description"]; ok {
		description, ok := v.(string)
		if !ok || strings.TrimSpace(description) == "" {
			return nil, fmt.Errorf("%w: description must be a non-empty string", domain.ErrValidation)
		}
		updated.Description = strings.TrimSpace(description)
	}
	if v, ok := updates["completed"]; ok {
		completed, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: completed must be a boolean", domain.ErrValidation)
		}
		updated.Completed = completed
	}

	updated.UpdatedAt = time.Now().UTC()
	return s.tasks.Update(ctx, &updated)
}

// Delete removes one task under the caller's owner scope and returns it.
func (s *TaskService) Delete(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	return s.tasks.DeleteByIDAndOwner(ctx, id, ownerID)
}

// parseSortBy splits the "field_dir" wire format. Any direction other than
// "asc" (including garbage or a missing suffix) sorts descending.
func parseSortBy(sortBy string) (field string, asc bool) {
	if sortBy == "" {
		return "", false
	}
	parts := strings.SplitN(sortBy, "_", 2)
	field = parts[0]
	if stored, ok := sortFieldNames[field]; ok {
		field = stored
	}
	asc = len(parts) == 2 && parts[1] == "asc"
	return field, asc
}
