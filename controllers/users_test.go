package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"hospital-admin-api/models"
)

func TestUserCreateAndList(t *testing.T) {
	te := newTestEnv(t)
	te.createUser("admin", "right-password-9", models.RoleAdmin)
	sess := te.login("admin", "right-password-9")

	w := te.request(http.MethodPost, "/api/users", gin.H{
		"username":  "dr.new",
		"password":  "brand-new-pass-1",
		"full_name": "New Doctor",
		"role":      "doctor",
	}, sess)
	if w.Code != http.StatusOK {
		t.Fatalf("create user: code = %d: %s", w.Code, w.Body.String())
	}

	// Password round-trips through the stored salt+hash.
	te.login("dr.new", "brand-new-pass-1")

	w = te.request(http.MethodPost, "/api/users", gin.H{
		"username":  "dr.new",
		"password":  "brand-new-pass-1",
		"full_name": "Duplicate",
		"role":      "doctor",
	}, sess)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate username: code = %d, want 409", w.Code)
	}

	w = te.request(http.MethodPost, "/api/users", gin.H{
		"username":  "dr.bad",
		"password":  "brand-new-pass-1",
		"full_name": "Bad Role",
		"role":      "superuser",
	}, sess)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid role: code = %d, want 400", w.Code)
	}

	env := te.decode(te.request(http.MethodGet, "/api/users", nil, sess))
	users, _ := env.Data["users"].([]interface{})
	if len(users) != 2 {
		t.Fatalf("user list has %d entries, want 2", len(users))
	}
}

// Unlock is the only way out of a lockout.
func TestUserUnlockRestoresLogin(t *testing.T) {
	te := newTestEnv(t)
	te.createUser("admin", "right-password-9", models.RoleAdmin)
	locked := te.createUser("nurse.jo", "right-password-9", models.RoleReceptionist)

	for i := 0; i < 5; i++ {
		te.request(http.MethodPost, "/api/auth/login", gin.H{
			"username": "nurse.jo",
			"password": "wrong-password",
		}, nil)
	}

	var stored models.User
	if err := te.db.First(&stored, locked.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !stored.Locked {
		t.Fatal("account not locked after max attempts")
	}

	te.backdateFailedLogins()
	adminSess := te.login("admin", "right-password-9")
	w := te.request(http.MethodPost, fmt.Sprintf("/api/users/%d/unlock", locked.ID), nil, adminSess)
	if w.Code != http.StatusOK {
		t.Fatalf("unlock: code = %d: %s", w.Code, w.Body.String())
	}

	// Reload into a zeroed struct: gorm leaves a previously populated
	// pointer field untouched when the column is NULL.
	stored = models.User{}
	if err := te.db.First(&stored, locked.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.Locked || stored.FailedLoginAttempts != 0 || stored.LockedAt != nil {
		t.Fatalf("lock state not cleared: %+v", stored)
	}

	te.login("nurse.jo", "right-password-9")
}

func TestSessionsListing(t *testing.T) {
	te := newTestEnv(t)
	te.createUser("dra.silva", "strong-password-1", models.RoleDoctor)

	first := te.login("dra.silva", "strong-password-1")
	te.login("dra.silva", "strong-password-1")

	env := te.decode(te.request(http.MethodGet, "/api/auth/sessions", nil, first))
	sessions, _ := env.Data["sessions"].([]interface{})
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	current := 0
	for _, raw := range sessions {
		s, _ := raw.(map[string]interface{})
		if s["current_session"] == true {
			current++
		}
	}
	if current != 1 {
		t.Fatalf("current_session flags = %d, want exactly 1", current)
	}
}
