// Package memory provides process-local stores with the same ordering and
// owner-scoping semantics as the Postgres repositories. They back dev mode
// (DATABASE_URL=memory) and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"task_manager/internal/domain"
	"task_manager/internal/repository"
)

// clock hands out strictly increasing timestamps so creation order is total.
type clock struct {
	last time.Time
}

func (c *clock) next() time.Time {
	now := time.Now().UTC()
	if !now.After(c.last) {
		now = c.last.Add(time.Microsecond)
	}
	c.last = now
	return now
}

type UserStore struct {
	mu     sync.Mutex
	clock  clock
	nextID int64
	byID   map[int64]*domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{byID: make(map[int64]*domain.User)}
}

func (s *UserStore) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Email == u.Email {
			return &repository.DuplicateError{Constraint: repository.ConstraintUsersEmail}
		}
		if existing.Username == u.Username {
			return &repository.DuplicateError{Constraint: repository.ConstraintUsersUsername}
		}
	}
	s.nextID++
	u.ID = s.nextID
	u.IsActive = true
	u.CreatedAt = s.clock.next()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	s.byID[u.ID] = &cp
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	return s.find(func(u *domain.User) bool { return u.ID == id })
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return s.find(func(u *domain.User) bool { return u.Email == email })
}

func (s *UserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return s.find(func(u *domain.User) bool { return u.Username == username })
}

// SetActive flips the account flag; there is no HTTP route for it.
func (s *UserStore) SetActive(id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsActive = active
	u.UpdatedAt = s.clock.next()
	return nil
}

func (s *UserStore) find(match func(*domain.User) bool) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

type TaskStore struct {
	mu     sync.Mutex
	clock  clock
	nextID int64
	rows   map[int64]*domain.Task
}

func NewTaskStore() *TaskStore {
	return &TaskStore{rows: make(map[int64]*domain.Task)}
}

func (s *TaskStore) List(_ context.Context, userID int64, f domain.TaskFilter) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]*domain.Task, 0)
	for _, t := range s.rows {
		if t.UserID != userID || (f.Status != nil && t.Status != *f.Status) {
			continue
		}
		res = append(res, copyTask(t))
	}
	sort.Slice(res, func(i, j int) bool { return taskLess(res[i], res[j]) })

	if f.Skip >= len(res) {
		return []*domain.Task{}, nil
	}
	res = res[f.Skip:]
	if f.Limit > 0 && len(res) > f.Limit {
		res = res[:f.Limit]
	}
	return res, nil
}

// taskLess is due_date ASC NULLS LAST, created_at DESC, id DESC.
func taskLess(a, b *domain.Task) bool {
	switch {
	case a.DueDate != nil && b.DueDate == nil:
		return true
	case a.DueDate == nil && b.DueDate != nil:
		return false
	case a.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
		return a.DueDate.Before(*b.DueDate)
	case !a.CreatedAt.Equal(b.CreatedAt):
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func (s *TaskStore) Create(_ context.Context, t *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t.ID = s.nextID
	t.CreatedAt = s.clock.next()
	t.UpdatedAt = t.CreatedAt
	s.rows[t.ID] = copyTask(t)
	return nil
}

func (s *TaskStore) GetByID(_ context.Context, userID, id int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return copyTask(t), nil
}

func (s *TaskStore) Update(_ context.Context, userID, id int64, p domain.TaskPatch) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	if p.Title.Set {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.Status.Set {
		t.Status = p.Status.Value
	}
	if p.DueDate.Set {
		t.DueDate = p.DueDate.Value
	}
	t.UpdatedAt = s.clock.next()
	return copyTask(t), nil
}

func (s *TaskStore) Delete(_ context.Context, userID, id int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.rows[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrNotFound
	}
	delete(s.rows, id)
	return t, nil
}

func copyTask(t *domain.Task) *domain.Task {
	cp := *t
	if t.Description != nil {
		d := *t.Description
		cp.Description = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		cp.DueDate = &d
	}
	return &cp
}

type AuditStore struct {
	mu      sync.Mutex
	clock   clock
	entries []*domain.AuditLog
}

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) Create(_ context.Context, log *domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.ID = int64(len(s.entries) + 1)
	log.CreatedAt = s.clock.next()
	s.entries = append(s.entries, log)
	return nil
}

func (s *AuditStore) GetByUserID(_ context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []*domain.AuditLog
	for i := len(s.entries) - 1; i >= 0 && len(res) < limit; i-- {
		if e := s.entries[i]; e.UserID != nil && *e.UserID == userID {
			res = append(res, e)
		}
	}
	return res, nil
}

// Entries returns every entry in insertion order.
func (s *AuditStore) Entries() []*domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.AuditLog(nil), s.entries...)
}
