package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskhive/task-api/internal/api/middleware"
	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
	"github.com/taskhive/task-api/internal/core/service"
)

const testJWTSecret = "handler-test-secret"

// --- in-memory repositories ---

type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func copyUser(u *domain.User) *domain.User {
	clone := *u
	clone.Tokens = append([]string(nil), u.Tokens...)
	clone.Avatar = append([]byte(nil), u.Avatar...)
	return &clone
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.seq++
	clone := copyUser(user)
	clone.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[clone.ID] = copyUser(clone)
	return clone, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) FindByIDAndToken(_ context.Context, id, token string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !u.HasToken(token) {
		return nil, domain.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	r.users[user.ID] = copyUser(user)
	return copyUser(user), nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type memTaskRepo struct {
	mu    sync.Mutex
	seq   int
	tasks []*domain.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{}
}

func copyTask(t *domain.Task) *domain.Task {
	clone := *t
	return &clone
}

func (r *memTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	clone := copyTask(task)
	clone.ID = fmt.Sprintf("task-%d", r.seq)
	r.tasks = append(r.tasks, copyTask(clone))
	return clone, nil
}

func (r *memTaskRepo) List(_ context.Context, filter ports.ListTasksFilter) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]*domain.Task, 0)
	for _, t := range r.tasks {
		if t.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Completed != nil && t.Completed != *filter.Completed {
			continue
		}
		matched = append(matched, copyTask(t))
	}
	if filter.SortField == "description" {
		sort.SliceStable(matched, func(i, j int) bool {
			if filter.SortAsc {
				return matched[i].Description < matched[j].Description
			}
			return matched[i].Description > matched[j].Description
		})
	}
	if filter.Skip > 0 {
		if filter.Skip >= int64(len(matched)) {
			return []*domain.Task{}, nil
		}
		matched = matched[filter.Skip:]
	}
	if filter.Limit > 0 && filter.Limit < int64(len(matched)) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *memTaskRepo) FindByIDAndOwner(_ context.Context, id, ownerID string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.ID == id && t.OwnerID == ownerID {
			return copyTask(t), nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (r *memTaskRepo) Update(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tasks {
		if t.ID == task.ID && t.OwnerID == task.OwnerID {
			r.tasks[i] = copyTask(task)
			return copyTask(task), nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (r *memTaskRepo) DeleteByIDAndOwner(_ context.Context, id, ownerID string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tasks {
		if t.ID == id && t.OwnerID == ownerID {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return copyTask(t), nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (r *memTaskRepo) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.tasks[:0]
	var deleted int64
	for _, t := range r.tasks {
		if t.OwnerID == ownerID {
			deleted++
			continue
		}
		kept = append(kept, t)
	}
	r.tasks = kept
	return deleted, nil
}

type noopNotifier struct{}

func (noopNotifier) AccountCreated(string, string) {}
func (noopNotifier) AccountDeleted(string, string) {}

type openLimiter struct{}

func (openLimiter) Allow(context.Context, string) (bool, error) { return true, nil }
func (openLimiter) Fail(context.Context, string) error          { return nil }
func (openLimiter) Reset(context.Context, string) error         { return nil }

// newTestServer wires real services over in-memory repositories into an Echo
// instance with the same routes the production router registers.
func newTestServer() *echo.Echo {
	users := newMemUserRepo()
	tasks := newMemTaskRepo()
	log := zerolog.Nop()

	userService := service.NewUserService(users, tasks, noopNotifier{}, openLimiter{}, testJWTSecret, time.Hour, log)
	taskService := service.NewTaskService(tasks, log)

	userHandler := NewUserHandler(userService)
	taskHandler := NewTaskHandler(taskService)
	authGuard := middleware.Auth(testJWTSecret, users)

	e := echo.New()
	e.Validator = NewValidator()

	e.POST("/users", userHandler.Register)
	e.POST("/users/login", userHandler.Login)
	e.POST("/users/logout", userHandler.Logout, authGuard)
	e.POST("/users/logoutAll", userHandler.LogoutAll, authGuard)
	e.GET("/users/me", userHandler.Me, authGuard)
	e.PATCH("/users/me", userHandler.UpdateMe, authGuard)
	e.DELETE("/users/me", userHandler.DeleteMe, authGuard)
	e.POST("/users/me/avatar", userHandler.UploadAvatar, authGuard)
	e.DELETE("/users/me/avatar", userHandler.DeleteAvatar, authGuard)
	e.GET("/users/:id/avatar", userHandler.GetAvatar)

	e.POST("/tasks", taskHandler.Create, authGuard)
	e.GET("/tasks", taskHandler.List, authGuard)
	e.GET("/tasks/:id", taskHandler.Get, authGuard)
	e.PATCH("/tasks/:id", taskHandler.Update, authGuard)
	e.DELETE("/tasks/:id", taskHandler.Delete, authGuard)

	return e
}

// doJSON performs a request with an optional JSON body and bearer token.
func doJSON(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
