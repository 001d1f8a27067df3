package repository

import (
	"context"
	"encoding/json"

	"task_manager/internal/domain"

	"github.com/jackc/pgx/v5"
)

// AuditRepository handles audit log database operations
type AuditRepository struct {
	db DBTX
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts a new audit log entry
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	detailsJSON, err := json.Marshal(log.Details)
	if err != nil || log.Details == nil {
		detailsJSON = []byte("{}")
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO audit_logs (user_id, action, details, ip, user_agent)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, log.UserID, log.Action, detailsJSON, log.IP, log.UserAgent).Scan(&log.ID, &log.CreatedAt)
}

// GetByUserID returns the most recent audit logs for a user
func (r *AuditRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, action, details, ip, user_agent, created_at
		FROM audit_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanAuditLogs(rows)
}

func scanAuditLogs(rows pgx.Rows) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	for rows.Next() {
		var log domain.AuditLog
		var detailsJSON []byte
		if err := rows.Scan(&log.ID, &log.UserID, &log.Action, &detailsJSON, &log.IP, &log.UserAgent, &log.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(detailsJSON, &log.Details); err != nil {
			log.Details = make(map[string]any)
		}
		logs = append(logs, &log)
	}
	return logs, rows.Err()
}
