package ports

import (
	"context"
	"io"

	"github.com/taskhive/task-api/internal/core/domain"
)

// RegisterUserInput carries the data needed to create an account.
type RegisterUserInput struct {
	Name     string
	Email    string
	Password string
	Age      int
}

// AuthResult is returned by Register and Login: the account plus a freshly
// minted session token.
type AuthResult struct {
	User  *domain.User
	Token string
}

// UserService defines use-case operations on accounts and sessions.
type UserService interface {
	Register(ctx context.Context, input RegisterUserInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Logout revokes the single session identified by token.
	Logout(ctx context.Context, user *domain.User, token string) error
	// LogoutAll revokes every active session for the user.
	LogoutAll(ctx context.Context, user *domain.User) error
	// Update applies a field-keyed update. Any key outside
	// {name, email, password, age} rejects the whole request with
	// domain.ErrInvalidUpdate before anything is written.
	Update(ctx context.Context, user *domain.User, updates map[string]any) (*domain.User, error)
	// Delete removes the account and cascades to the owner's tasks.
	Delete(ctx context.Context, user *domain.User) (*domain.User, error)

	// SetAvatar validates filename extension and size, transcodes the image
	// to a normalized square PNG and stores it on the user record.
	SetAvatar(ctx context.Context, user *domain.User, filename string, size int64, r io.Reader) error
	DeleteAvatar(ctx context.Context, user *domain.User) error
	// Avatar returns the stored PNG bytes for a user id.
	Avatar(ctx context.Context, userID string) ([]byte, error)
}
