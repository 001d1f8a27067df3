package service

import (
	"context"

	"task_manager/internal/domain"
	"task_manager/internal/logger"
)

const (
	defaultAuditLimit = 20
	maxAuditLimit     = 100
)

// AuditStore is implemented by repository.AuditRepository.
type AuditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error)
}

// AuditService records auth and destructive actions. Write failures are
// logged and swallowed.
type AuditService struct {
	repo AuditStore
}

func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

// RequestInfo is the client metadata attached to audit entries.
type RequestInfo struct {
	IP        string
	UserAgent string
}

func (s *AuditService) log(ctx context.Context, userID *int64, action string, req RequestInfo, details map[string]any) {
	if s == nil || s.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Details:   details,
		IP:        req.IP,
		UserAgent: req.UserAgent,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		logger.FromContext(ctx).Error("failed to create audit log", "error", err, "action", action)
	}
}

func (s *AuditService) LogSignup(ctx context.Context, userID int64, req RequestInfo) {
	s.log(ctx, &userID, domain.AuditActionSignup, req, nil)
}

func (s *AuditService) LogLogin(ctx context.Context, userID int64, req RequestInfo) {
	s.log(ctx, &userID, domain.AuditActionLogin, req, nil)
}

// LogLoginFailed records the identifier that was tried, never the password.
func (s *AuditService) LogLoginFailed(ctx context.Context, identifier string, req RequestInfo) {
	s.log(ctx, nil, domain.AuditActionLoginFailed, req, map[string]any{"identifier": identifier})
}

func (s *AuditService) LogTaskDelete(ctx context.Context, userID int64, task *domain.Task, req RequestInfo) {
	s.log(ctx, &userID, domain.AuditActionTaskDelete, req, map[string]any{
		"task_id": task.ID,
		"title":   task.Title,
	})
}

// Recent returns the caller's latest audit entries, newest first.
func (s *AuditService) Recent(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	switch {
	case limit <= 0:
		limit = defaultAuditLimit
	case limit > maxAuditLimit:
		limit = maxAuditLimit
	}
	logs, err := s.repo.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*domain.AuditLog{}
	}
	return logs, nil
}
