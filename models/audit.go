package models

import (
	"time"
)

type AuditAction string

const (
	ActionLogin       AuditAction = "LOGIN"
	ActionLoginFailed AuditAction = "LOGIN_FAILED"
	ActionLogout      AuditAction = "LOGOUT"
	ActionInsert      AuditAction = "INSERT"
	ActionUpdate      AuditAction = "UPDATE"
	ActionDelete      AuditAction = "DELETE"
	ActionExport      AuditAction = "EXPORT"
	ActionExecute     AuditAction = "EXECUTE"
)

type AuditOutcome string

const (
	OutcomeSuccess AuditOutcome = "Success"
	OutcomeFailure AuditOutcome = "Failure"
	OutcomeBlocked AuditOutcome = "Blocked"
	OutcomeError   AuditOutcome = "Error"
)

type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "Low"
	SeverityMedium   AuditSeverity = "Medium"
	SeverityHigh     AuditSeverity = "High"
	SeverityCritical AuditSeverity = "Critical"
)

// AuditEntry is append-only. Rows are never updated; the only delete
// path is the age-gated purge, which exempts High and Critical rows.
type AuditEntry struct {
	ID          uint          `gorm:"primarykey"`
	ActorID     *uint         `gorm:"index"` // nil means the system itself
	Action      AuditAction   `gorm:"size:32;not null;index"`
	Entity      string        `gorm:"size:64;index"`
	EntityID    string        `gorm:"size:64"`
	Description string        `gorm:"size:512"`
	IPAddress   string        `gorm:"size:45;index"`
	Outcome     AuditOutcome  `gorm:"size:16;not null"`
	Severity    AuditSeverity `gorm:"size:16;not null;index"`
	CreatedAt   time.Time     `gorm:"index"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}
