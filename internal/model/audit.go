package model

import "time"

// Audit actions recorded for account lifecycle events
const (
	AuditActionRegister    = "account.register"
	AuditActionCreate      = "account.create"
	AuditActionLogin       = "account.login"
	AuditActionLoginFailed = "account.login_failed"
	AuditActionLocked      = "account.locked"
	AuditActionUnlocked    = "account.unlocked"
	AuditActionVerified    = "account.verified"
	AuditActionUpdate      = "account.update"
	AuditActionDelete      = "account.delete"
)

// AuditEntry is a single account event record. UserID is the acting user;
// TargetID is the account acted upon (they differ for admin operations).
type AuditEntry struct {
	ID        string                 `json:"id"`
	UserID    *string                `json:"user_id,omitempty"`
	Action    string                 `json:"action"`
	TargetID  *string                `json:"target_id,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
