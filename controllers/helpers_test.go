package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hospital-admin-api/audit"
	"hospital-admin-api/config"
	"hospital-admin-api/controllers"
	"hospital-admin-api/database"
	"hospital-admin-api/models"
	"hospital-admin-api/routes"
	"hospital-admin-api/utils"
)

// testClientIP is what gin's ClientIP resolves to for requests built
// with httptest.NewRequest.
const testClientIP = "192.0.2.1"

type testEnv struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	redis  *database.RedisClient
	cfg    *config.Env
	cipher *utils.FieldCipher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	redisClient, err := database.GetRedisClient(mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}

	cfg := &config.Env{
		EncryptionKey:    bytes.Repeat([]byte{0x42}, 32),
		SessionTimeout:   time.Hour,
		MaxLoginAttempts: 5,
		LoginRateWindow:  5 * time.Minute,
		LoginRateLimit:   5,
	}

	logger := logrus.New()
	logger.Out = io.Discard

	cipher, err := utils.NewFieldCipher(cfg.EncryptionKey)
	if err != nil {
		t.Fatalf("field cipher: %v", err)
	}
	auditLogger := audit.NewLogger(db, logger)

	router := gin.New()
	routes.SetupRoutes(router, routes.Controllers{
		Auth:         controllers.NewAuthController(db, redisClient, auditLogger, logger, cfg),
		Users:        controllers.NewUserController(db, auditLogger),
		Patients:     controllers.NewPatientController(db, cipher, auditLogger, logger),
		Appointments: controllers.NewAppointmentController(db, auditLogger),
		Medications:  controllers.NewMedicationController(db, auditLogger),
		Dashboard:    controllers.NewDashboardController(db, auditLogger),
		Audit:        controllers.NewAuditController(auditLogger),
	})

	return &testEnv{
		t:      t,
		router: router,
		db:     db,
		redis:  redisClient,
		cfg:    cfg,
		cipher: cipher,
	}
}

type envelope struct {
	Success   bool                   `json:"success"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data"`
	Timestamp string                 `json:"timestamp"`
}

// session carries what a logged-in test client needs on each request.
type session struct {
	cookie *http.Cookie
	csrf   string
}

func (te *testEnv) createUser(username, password string, role models.Role) *models.User {
	te.t.Helper()
	salt, err := utils.GenerateSalt()
	if err != nil {
		te.t.Fatalf("salt: %v", err)
	}
	user := &models.User{
		Username:     username,
		PasswordHash: utils.HashPassword(password, salt),
		PasswordSalt: salt,
		FullName:     "Test " + username,
		Role:         role,
		IsActive:     true,
	}
	if err := te.db.Create(user).Error; err != nil {
		te.t.Fatalf("create user: %v", err)
	}
	return user
}

func (te *testEnv) request(method, path string, body interface{}, sess *session) *httptest.ResponseRecorder {
	te.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			te.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sess != nil {
		if sess.cookie != nil {
			req.AddCookie(sess.cookie)
		}
		if sess.csrf != "" {
			req.Header.Set("X-CSRF-Token", sess.csrf)
		}
	}
	w := httptest.NewRecorder()
	te.router.ServeHTTP(w, req)
	return w
}

func (te *testEnv) decode(w *httptest.ResponseRecorder) envelope {
	te.t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		te.t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return env
}

// backdateFailedLogins moves LOGIN_FAILED audit entries out of the
// rate-limit window so later logins in the same test are not throttled.
func (te *testEnv) backdateFailedLogins() {
	te.t.Helper()
	err := te.db.Model(&models.AuditEntry{}).
		Where("action = ?", models.ActionLoginFailed).
		Update("created_at", time.Now().Add(-time.Hour)).Error
	if err != nil {
		te.t.Fatalf("backdate failed logins: %v", err)
	}
}

// login performs the full login flow and returns a usable session.
func (te *testEnv) login(username, password string) *session {
	te.t.Helper()
	w := te.request(http.MethodPost, "/api/auth/login", gin.H{
		"username": username,
		"password": password,
	}, nil)
	if w.Code != http.StatusOK {
		te.t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}

	env := te.decode(w)
	csrf, _ := env.Data["csrf_token"].(string)
	if csrf == "" {
		te.t.Fatal("login response missing csrf_token")
	}

	var cookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "session_token" {
			cookie = ck
		}
	}
	if cookie == nil {
		te.t.Fatal("login response missing session cookie")
	}
	return &session{cookie: cookie, csrf: csrf}
}
