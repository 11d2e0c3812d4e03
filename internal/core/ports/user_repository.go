package ports

import (
	"context"

	"github.com/taskhive/task-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByIDAndToken retrieves a user only when token is present in the
	// user's active session list. A revoked token therefore resolves to
	// domain.ErrUserNotFound, not to a user with a stale session.
	FindByIDAndToken(ctx context.Context, id, token string) (*domain.User, error)
	// Update persists the full user document (profile fields, token list,
	// avatar bytes). Last write wins; there is no optimistic concurrency check.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
