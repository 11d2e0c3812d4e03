package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
)

// --- user repository stub ---

type stubUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Tokens = append([]string(nil), u.Tokens...)
	clone.Avatar = append([]byte(nil), u.Avatar...)
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.seq++
	clone := cloneUser(user)
	clone.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[clone.ID] = cloneUser(clone)
	return clone, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIDAndToken(_ context.Context, id, token string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || !u.HasToken(token) {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	for id, u := range r.users {
		if id != user.ID && u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// --- task repository stub ---

type stubTaskRepo struct {
	mu    sync.Mutex
	seq   int
	tasks []*domain.Task
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{}
}

func cloneTask(t *domain.Task) *domain.Task {
	clone := *t
	return &clone
}

func (r *stubTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	clone := cloneTask(task)
	clone.ID = fmt.Sprintf("task-%d", r.seq)
	r.tasks = append(r.tasks, cloneTask(clone))
	return clone, nil
}

func (r *stubTaskRepo) List(_ context.Context, filter ports.ListTasksFilter) ([]*domain.Task, error) {
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
		matched = append(matched, cloneTask(t))
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

func (r *stubTaskRepo) FindByIDAndOwner(_ context.Context, id, ownerID string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.ID == id && t.OwnerID == ownerID {
			return cloneTask(t), nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (r *stubTaskRepo) Update(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tasks {
		if t.ID == task.ID && t.OwnerID == task.OwnerID {
			r.tasks[i] = cloneTask(task)
			return cloneTask(task), nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (r *stubTaskRepo) DeleteByIDAndOwner(_ context.Context, id, ownerID string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tasks {
		if t.ID == id && t.OwnerID == ownerID {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return cloneTask(t), nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (r *stubTaskRepo) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
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

// --- notifier and throttle stubs ---

type stubNotifier struct {
	mu      sync.Mutex
	created []string
	deleted []string
}

func (n *stubNotifier) AccountCreated(email, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, email)
}

func (n *stubNotifier) AccountDeleted(email, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleted = append(n.deleted, email)
}

type stubLimiter struct {
	mu       sync.Mutex
	failures map[string]int
	blocked  map[string]bool
}

func newStubLimiter() *stubLimiter {
	return &stubLimiter{failures: make(map[string]int), blocked: make(map[string]bool)}
}

func (l *stubLimiter) Allow(_ context.Context, email string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.blocked[email], nil
}

func (l *stubLimiter) Fail(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[email]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, email string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[email] = 0
	return nil
}
