package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
)

// LoginLimiter abstracts the failed-login throttle (Redis).
type LoginLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
	Fail(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

const minPasswordLength = 7

// userUpdatableFields is the allow-list for PATCH /users/me. Anything else
// (owner-managed fields like tokens or avatar) rejects the whole request.
var userUpdatableFields = map[string]struct{}{
	"name":     {},
	"email":    {},
	"password": {},
	"age":      {},
}

// UserService implements account, session and avatar use cases.
type UserService struct {
	users     ports.UserRepository
	tasks     ports.TaskRepository
	notifier  ports.Notifier
	limiter   LoginLimiter
	validate  *validator.Validate
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	tasks ports.TaskRepository,
	notifier ports.Notifier,
	limiter LoginLimiter,
	jwtSecret string,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *UserService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &UserService{
		users:     users,
		tasks:     tasks,
		notifier:  notifier,
		limiter:   limiter,
		validate:  validator.New(),
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Register creates an account, mints the first session token and fires the
// welcome notification.
func (s *UserService) Register(ctx context.Context, input ports.RegisterUserInput) (*ports.AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	email, err := s.normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	if input.Age < 0 {
		return nil, fmt.Errorf("%w: age must not be negative", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Age:          input.Age,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(ctx, created)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("email", created.Email).Msg("user registered")
	s.notifier.AccountCreated(created.Email, created.Name)

	return &ports.AuthResult{User: created, Token: token}, nil
}

// Login verifies credentials and mints a new session token. Repeated
// failures per email are throttled; the throttle fails open when the
// backing store is unavailable.
func (s *UserService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("login throttle check failed, allowing")
	} else if !allowed {
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		// Unknown email and bad password are indistinguishable to the caller.
		s.recordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("login throttle reset failed")
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &ports.AuthResult{User: user, Token: token}, nil
}

// Logout revokes the single session identified by token.
func (s *UserService) Logout(ctx context.Context, user *domain.User, token string) error {
	user.RemoveToken(token)
	user.UpdatedAt = time.Now().UTC()
	_, err := s.users.Update(ctx, user)
	return err
}

// LogoutAll revokes every active session for the user.
func (s *UserService) LogoutAll(ctx context.Context, user *domain.User) error {
	user.Tokens = nil
	user.UpdatedAt = time.Now().UTC()
	_, err := s.users.Update(ctx, user)
	return err
}

// Update applies a field-keyed profile update. The whole field set is
// validated against the allow-list before any mutation, so a request with
// one bad key applies nothing.
func (s *UserService) Update(ctx context.Context, user *domain.User, updates map[string]any) (*domain.User, error) {
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: empty update", domain.ErrValidation)
	}
	for field := range updates {
		if _, ok := userUpdatableFields[field]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidUpdate, field)
		}
	}

	updated := *user

	if v, ok := updates["name"]; ok {
		name, ok := v.(string)
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: name must be a non-empty string", domain.ErrValidation)
		}
		updated.Name = strings.TrimSpace(name)
	}
	if v, ok := updates["email"]; ok {
		raw, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: email must be a string", domain.ErrValidation)
		}
		email, err := s.normalizeEmail(raw)
		if err != nil {
			return nil, err
		}
		updated.Email = email
	}
	if v, ok := updates["password"]; ok {
		password, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: password must be a string", domain.ErrValidation)
		}
		if err := validatePassword(password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updated.PasswordHash = string(hash)
	}
	if v, ok := updates["age"]; ok {
		age, ok := asInt(v)
		if !ok || age < 0 {
			return nil, fmt.Errorf("%w: age must be a non-negative integer", domain.ErrValidation)
		}
		updated.Age = age
	}

	updated.UpdatedAt = time.Now().UTC()
	return s.users.Update(ctx, &updated)
}

// Delete removes the account, cascades to the owner's tasks and fires the
// cancellation notification. The cascade is a separate write: a failure
// there leaves orphaned tasks and is only logged.
func (s *UserService) Delete(ctx context.Context, user *domain.User) (*domain.User, error) {
	deleted := *user
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return nil, err
	}

	if n, err := s.tasks.DeleteByOwner(ctx, user.ID); err != nil {
		s.logger.Error().Err(err).Str("owner_id", user.ID).Msg("task cascade delete failed, orphaned tasks remain")
	} else {
		s.logger.Info().Str("user_id", user.ID).Int64("tasks_deleted", n).Msg("user deleted")
	}

	s.notifier.AccountDeleted(deleted.Email, deleted.Name)
	return &deleted, nil
}

// issueToken mints a signed session token and appends it to the user's
// active list.
func (s *UserService) issueToken(ctx context.Context, user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	user.Tokens = append(user.Tokens, token)
	user.UpdatedAt = time.Now().UTC()
	if _, err := s.users.Update(ctx, user); err != nil {
		return "", err
	}
	return token, nil
}

func (s *UserService) normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("%w: email is invalid", domain.ErrValidation)
	}
	return email, nil
}

func (s *UserService) recordFailure(ctx context.Context, email string) {
	if err := s.limiter.Fail(ctx, email); err != nil {
		s.logger.Warn().Err(err).Str("email", email).Msg("login throttle record failed")
	}
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return fmt.Errorf("%w: password must not contain the word \"password\"", domain.ErrValidation)
	}
	return nil
}

// asInt accepts the numeric types a decoded JSON body may produce.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
