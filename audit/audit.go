// Package audit appends immutable entries for security- and
// data-relevant actions. Writes never fail the caller: a failed insert
// is logged server-side and swallowed.
package audit

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hospital-admin-api/models"
)

// MinRetentionDays is the floor for Purge. Requests below it are
// rejected regardless of what data exists.
const MinRetentionDays = 30

var ErrRetentionTooShort = fmt.Errorf("retention must be at least %d days", MinRetentionDays)

type Logger struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewLogger(db *gorm.DB, log *logrus.Logger) *Logger {
	return &Logger{db: db, log: log}
}

// Record appends one entry. actorID nil means "system". Callers must
// not depend on the write succeeding.
func (l *Logger) Record(actorID *uint, action models.AuditAction, entity, entityID, description, ip string, outcome models.AuditOutcome, severity models.AuditSeverity) {
	entry := models.AuditEntry{
		ActorID:     actorID,
		Action:      action,
		Entity:      entity,
		EntityID:    entityID,
		Description: description,
		IPAddress:   ip,
		Outcome:     outcome,
		Severity:    severity,
	}
	if err := l.db.Create(&entry).Error; err != nil {
		l.log.WithError(err).WithFields(logrus.Fields{
			"action": action,
			"entity": entity,
			"ip":     ip,
		}).Error("audit write failed")
	}
}

// CountRecentFailedLogins counts LOGIN_FAILED entries from one source IP
// inside the trailing window. Used by the login rate limiter.
func (l *Logger) CountRecentFailedLogins(ip string, window time.Duration) (int64, error) {
	var count int64
	err := l.db.Model(&models.AuditEntry{}).
		Where("action = ? AND ip_address = ? AND created_at > ?",
			models.ActionLoginFailed, ip, time.Now().Add(-window)).
		Count(&count).Error
	return count, err
}

// Purge deletes entries older than the given age, except High and
// Critical ones, then records the purge itself. The new entry is newer
// than the cutoff by construction, so it survives.
func (l *Logger) Purge(days int, actorID *uint, ip string) (int64, error) {
	if days < MinRetentionDays {
		return 0, ErrRetentionTooShort
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	result := l.db.Where("created_at < ? AND severity NOT IN ?",
		cutoff, []models.AuditSeverity{models.SeverityHigh, models.SeverityCritical}).
		Delete(&models.AuditEntry{})
	if result.Error != nil {
		return 0, result.Error
	}

	l.Record(actorID, models.ActionExecute, "audit_entries", "",
		fmt.Sprintf("purged %d audit entries older than %d days", result.RowsAffected, days),
		ip, models.OutcomeSuccess, models.SeverityHigh)

	return result.RowsAffected, nil
}

// Filter narrows the admin listing. Zero values mean "no constraint".
type Filter struct {
	Action   models.AuditAction
	Severity models.AuditSeverity
	Entity   string
	ActorID  *uint
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

// List returns matching entries newest first plus the total match count.
func (l *Logger) List(f Filter) ([]models.AuditEntry, int64, error) {
	q := l.db.Model(&models.AuditEntry{})
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.Severity != "" {
		q = q.Where("severity = ?", f.Severity)
	}
	if f.Entity != "" {
		q = q.Where("entity = ?", f.Entity)
	}
	if f.ActorID != nil {
		q = q.Where("actor_id = ?", *f.ActorID)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("created_at <= ?", f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var entries []models.AuditEntry
	err := q.Order("created_at DESC").Limit(limit).Offset(f.Offset).Find(&entries).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, err
	}
	return entries, total, nil
}
