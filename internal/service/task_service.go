package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"task_manager/internal/domain"
	"task_manager/internal/repository"
)

const (
	DefaultTaskLimit = 100
	MaxTaskLimit     = 1000
)

// TaskStore is implemented by repository.TaskRepository. Every method is
// scoped by owner; a task owned by someone else yields repository.ErrNotFound.
type TaskStore interface {
	List(ctx context.Context, userID int64, f domain.TaskFilter) ([]*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	GetByID(ctx context.Context, userID, id int64) (*domain.Task, error)
	Update(ctx context.Context, userID, id int64, p domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, userID, id int64) (*domain.Task, error)
}

type TaskService struct {
	tasks TaskStore
}

func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{tasks: tasks}
}

func (s *TaskService) List(ctx context.Context, callerID int64, f domain.TaskFilter) ([]*domain.Task, error) {
	if f.Skip < 0 || f.Limit < 0 {
		return nil, fmt.Errorf("%w: skip and limit must not be negative", ErrValidation)
	}
	if f.Limit == 0 {
		f.Limit = DefaultTaskLimit
	}
	if f.Limit > MaxTaskLimit {
		f.Limit = MaxTaskLimit
	}
	if f.Status != nil && !f.Status.Valid() {
		return nil, invalidStatus(*f.Status)
	}
	return s.tasks.List(ctx, callerID, f)
}

func (s *TaskService) Create(ctx context.Context, callerID int64, in domain.TaskInput) (*domain.Task, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = domain.TaskStatusPending
	}
	if !status.Valid() {
		return nil, invalidStatus(status)
	}

	t := &domain.Task{
		UserID:      callerID,
		Title:       title,
		Description: in.Description,
		Status:      status,
		DueDate:     in.DueDate,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, callerID, id int64) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, callerID, id)
	return t, mapTaskErr(err)
}

// Update applies only the fields present in p.
func (s *TaskService) Update(ctx context.Context, callerID, id int64, p domain.TaskPatch) (*domain.Task, error) {
	if p.Title.Set {
		if p.Title.IsNull() {
			return nil, fmt.Errorf("%w: title cannot be null", ErrValidation)
		}
		title, err := normalizeTitle(p.Title.Value)
		if err != nil {
			return nil, err
		}
		p.Title.Value = title
	}
	if p.Status.Set && !p.Status.Value.Valid() {
		return nil, invalidStatus(p.Status.Value)
	}

	t, err := s.tasks.Update(ctx, callerID, id, p)
	return t, mapTaskErr(err)
}

func (s *TaskService) Delete(ctx context.Context, callerID, id int64) (*domain.Task, error) {
	t, err := s.tasks.Delete(ctx, callerID, id)
	return t, mapTaskErr(err)
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrValidation)
	}
	if utf8.RuneCountInString(title) > domain.MaxTaskTitleLength {
		return "", fmt.Errorf("%w: title must be at most %d characters", ErrValidation, domain.MaxTaskTitleLength)
	}
	return title, nil
}

func invalidStatus(s domain.TaskStatus) error {
	return fmt.Errorf("%w: status %q must be one of %q, %q, %q", ErrValidation, s,
		domain.TaskStatusPending, domain.TaskStatusInProgress, domain.TaskStatusCompleted)
}

func mapTaskErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTaskNotFound
	}
	return err
}
