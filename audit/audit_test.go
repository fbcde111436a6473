package audit

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hospital-admin-api/models"
)

func newTestLogger(t *testing.T) (*Logger, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.AuditEntry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log := logrus.New()
	log.Out = io.Discard
	return NewLogger(db, log), db
}

func insertEntry(t *testing.T, db *gorm.DB, age time.Duration, severity models.AuditSeverity) {
	t.Helper()
	entry := models.AuditEntry{
		Action:    models.ActionInsert,
		Entity:    "patients",
		IPAddress: "10.0.0.1",
		Outcome:   models.OutcomeSuccess,
		Severity:  severity,
		CreatedAt: time.Now().Add(-age),
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("insert entry: %v", err)
	}
}

func TestRecordAppendsEntry(t *testing.T) {
	logger, db := newTestLogger(t)

	actor := uint(7)
	logger.Record(&actor, models.ActionLogin, "users", "7", "login successful",
		"10.0.0.1", models.OutcomeSuccess, models.SeverityLow)

	var entry models.AuditEntry
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if entry.ActorID == nil || *entry.ActorID != 7 {
		t.Fatalf("unexpected actor: %v", entry.ActorID)
	}
	if entry.Action != models.ActionLogin || entry.Outcome != models.OutcomeSuccess {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestRecordNilActorMeansSystem(t *testing.T) {
	logger, db := newTestLogger(t)

	logger.Record(nil, models.ActionExecute, "", "", "scheduled job",
		"", models.OutcomeSuccess, models.SeverityLow)

	var entry models.AuditEntry
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if entry.ActorID != nil {
		t.Fatalf("expected nil actor, got %v", *entry.ActorID)
	}
}

func TestRecordSwallowsWriteFailure(t *testing.T) {
	logger, db := newTestLogger(t)
	if err := db.Migrator().DropTable(&models.AuditEntry{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	// Must not panic or surface the error.
	logger.Record(nil, models.ActionLogin, "users", "", "x", "10.0.0.1",
		models.OutcomeSuccess, models.SeverityLow)
}

func TestPurgeRejectsShortRetention(t *testing.T) {
	logger, db := newTestLogger(t)
	insertEntry(t, db, 90*24*time.Hour, models.SeverityLow)

	for _, days := range []int{0, 20, 29} {
		if _, err := logger.Purge(days, nil, "10.0.0.1"); err != ErrRetentionTooShort {
			t.Fatalf("Purge(%d) error = %v, want ErrRetentionTooShort", days, err)
		}
	}

	var count int64
	db.Model(&models.AuditEntry{}).Count(&count)
	if count != 1 {
		t.Fatalf("rejected purge deleted rows, %d left", count)
	}
}

func TestPurgeKeepsHighAndCritical(t *testing.T) {
	logger, db := newTestLogger(t)

	old := 60 * 24 * time.Hour
	insertEntry(t, db, old, models.SeverityLow)
	insertEntry(t, db, old, models.SeverityMedium)
	insertEntry(t, db, old, models.SeverityHigh)
	insertEntry(t, db, old, models.SeverityCritical)
	insertEntry(t, db, time.Hour, models.SeverityLow) // inside retention

	deleted, err := logger.Purge(30, nil, "10.0.0.1")
	if err != nil {
		t.Fatalf("Purge error: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2", deleted)
	}

	var severities []models.AuditSeverity
	if err := db.Model(&models.AuditEntry{}).Order("id").
		Pluck("severity", &severities).Error; err != nil {
		t.Fatalf("read severities: %v", err)
	}
	// High + Critical survivors, the recent Low, and the purge's own entry.
	if len(severities) != 4 {
		t.Fatalf("remaining = %v, want 4 rows", severities)
	}
	for _, s := range severities[:2] {
		if s != models.SeverityHigh && s != models.SeverityCritical {
			t.Fatalf("old %s row survived purge", s)
		}
	}
}

func TestPurgeRecordsItself(t *testing.T) {
	logger, db := newTestLogger(t)
	insertEntry(t, db, 90*24*time.Hour, models.SeverityLow)

	actor := uint(1)
	if _, err := logger.Purge(30, &actor, "10.0.0.9"); err != nil {
		t.Fatalf("Purge error: %v", err)
	}

	var entry models.AuditEntry
	if err := db.Where("action = ?", models.ActionExecute).First(&entry).Error; err != nil {
		t.Fatalf("purge entry missing: %v", err)
	}
	if entry.Severity != models.SeverityHigh || entry.ActorID == nil || *entry.ActorID != 1 {
		t.Fatalf("unexpected purge entry: %+v", entry)
	}

	// The purge entry itself must be exempt from a repeated purge.
	if _, err := logger.Purge(30, &actor, "10.0.0.9"); err != nil {
		t.Fatalf("second Purge error: %v", err)
	}
	var count int64
	db.Model(&models.AuditEntry{}).Where("action = ?", models.ActionExecute).Count(&count)
	if count != 2 {
		t.Fatalf("purge entries = %d, want 2", count)
	}
}

func TestCountRecentFailedLogins(t *testing.T) {
	logger, db := newTestLogger(t)

	mk := func(ip string, age time.Duration) {
		entry := models.AuditEntry{
			Action:    models.ActionLoginFailed,
			IPAddress: ip,
			Outcome:   models.OutcomeFailure,
			Severity:  models.SeverityMedium,
			CreatedAt: time.Now().Add(-age),
		}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	mk("10.0.0.1", time.Minute)
	mk("10.0.0.1", 2*time.Minute)
	mk("10.0.0.1", 10*time.Minute) // outside window
	mk("10.0.0.2", time.Minute)    // other IP

	count, err := logger.CountRecentFailedLogins("10.0.0.1", 5*time.Minute)
	if err != nil {
		t.Fatalf("count error: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestListFilters(t *testing.T) {
	logger, db := newTestLogger(t)
	insertEntry(t, db, time.Hour, models.SeverityLow)
	insertEntry(t, db, time.Hour, models.SeverityCritical)

	entries, total, err := logger.List(Filter{Severity: models.SeverityCritical})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if total != 1 || len(entries) != 1 || entries[0].Severity != models.SeverityCritical {
		t.Fatalf("unexpected result: total=%d entries=%+v", total, entries)
	}
}
