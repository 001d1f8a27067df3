package domain

import "time"

// AuditLog records a security-relevant action. UserID is nil when no account was resolved.
type AuditLog struct {
	ID        int64          `db:"id" json:"id"`
	UserID    *int64         `db:"user_id" json:"user_id"`
	Action    string         `db:"action" json:"action"`
	Details   map[string]any `db:"details" json:"details"`
	IP        string         `db:"ip" json:"ip,omitempty"`
	UserAgent string         `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// Audit actions
const (
	AuditActionSignup      = "signup"
	AuditActionLogin       = "login"
	AuditActionLoginFailed = "login_failed"
	AuditActionTaskDelete  = "task_delete"
)
