package controllers

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hospital-admin-api/audit"
	"hospital-admin-api/config"
	"hospital-admin-api/database"
	"hospital-admin-api/models"
	"hospital-admin-api/utils"
	"hospital-admin-api/validators"
)

type AuthController struct {
	db    *gorm.DB
	redis *database.RedisClient
	audit *audit.Logger
	log   *logrus.Logger
	cfg   *config.Env
}

func NewAuthController(db *gorm.DB, redis *database.RedisClient, auditLog *audit.Logger, log *logrus.Logger, cfg *config.Env) *AuthController {
	return &AuthController{
		db:    db,
		redis: redis,
		audit: auditLog,
		log:   log,
		cfg:   cfg,
	}
}

// Login runs the ordered gates: input validation, per-IP rate limit,
// credential lookup, lock check, constant-time password check. Failure
// responses never reveal whether the account exists.
func (ac *AuthController) Login(c *gin.Context) {
	req, ok := validators.ValidateLoginRequest(c)
	if !ok {
		return
	}

	ip := c.ClientIP()

	failed, err := ac.audit.CountRecentFailedLogins(ip, ac.cfg.LoginRateWindow)
	if err != nil {
		ac.log.WithError(err).Error("rate limit lookup failed")
		respondError(c, http.StatusInternalServerError, "Login failed")
		return
	}
	if failed >= int64(ac.cfg.LoginRateLimit) {
		ac.audit.Record(nil, models.ActionLoginFailed, "users", "",
			"login rate limit exceeded", ip, models.OutcomeBlocked, models.SeverityCritical)
		respondError(c, http.StatusTooManyRequests, "Too many attempts. Please try again later.")
		return
	}

	tx := ac.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var user models.User
	if err := tx.Where("username = ?", req.Username).First(&user).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ac.audit.Record(nil, models.ActionLoginFailed, "users", "",
				fmt.Sprintf("login attempt for unknown username %q", req.Username),
				ip, models.OutcomeFailure, models.SeverityMedium)
			respondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		respondError(c, http.StatusInternalServerError, "Login failed")
		return
	}

	if user.Locked || !user.IsActive {
		tx.Rollback()
		ac.audit.Record(&user.ID, models.ActionLoginFailed, "users", fmt.Sprint(user.ID),
			"login refused for locked or disabled account", ip,
			models.OutcomeBlocked, models.SeverityHigh)
		respondError(c, http.StatusForbidden, "Account is locked or disabled")
		return
	}

	if !utils.VerifyPassword(req.Password, user.PasswordSalt, user.PasswordHash) {
		attempts := user.FailedLoginAttempts + 1
		updates := map[string]interface{}{
			"failed_login_attempts": attempts,
		}
		locked := attempts >= ac.cfg.MaxLoginAttempts
		if locked {
			now := time.Now()
			updates["locked"] = true
			updates["locked_at"] = now
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			tx.Rollback()
			respondError(c, http.StatusInternalServerError, "Login failed")
			return
		}
		if err := tx.Commit().Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Login failed")
			return
		}

		if locked {
			ac.audit.Record(&user.ID, models.ActionLoginFailed, "users", fmt.Sprint(user.ID),
				fmt.Sprintf("account locked after %d failed attempts", attempts),
				ip, models.OutcomeBlocked, models.SeverityCritical)
			respondError(c, http.StatusForbidden, "Account is locked or disabled")
			return
		}

		remaining := ac.cfg.MaxLoginAttempts - attempts
		ac.audit.Record(&user.ID, models.ActionLoginFailed, "users", fmt.Sprint(user.ID),
			fmt.Sprintf("invalid password, %d attempts remaining", remaining),
			ip, models.OutcomeFailure, models.SeverityMedium)
		respondErrorData(c, http.StatusUnauthorized, "Invalid credentials", gin.H{
			"remaining_attempts": remaining,
		})
		return
	}

	// Fresh random token on every login; tokens are never reused, so a
	// pre-login cookie value can never become authenticated.
	token, err := utils.GenerateToken()
	if err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Login failed")
		return
	}
	csrfToken, err := utils.GenerateToken()
	if err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Login failed")
		return
	}

	now := time.Now()
	session := models.Session{
		UserID:       user.ID,
		Token:        token,
		IPAddress:    ip,
		UserAgent:    c.GetHeader("User-Agent"),
		Status:       models.SessionActive,
		LastActivity: now,
	}
	if err := tx.Create(&session).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Login failed")
		return
	}

	if err := tx.Model(&user).Updates(map[string]interface{}{
		"failed_login_attempts": 0,
		"last_login":            now,
		"last_login_ip":         ip,
	}).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Login failed")
		return
	}

	if err := tx.Commit().Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Login failed")
		return
	}

	ctx := c.Request.Context()
	if err := ac.redis.SetSession(ctx, token, user.ID, ac.cfg.SessionTimeout); err != nil {
		ac.log.WithError(err).Warn("session cache write failed")
	}
	if err := ac.redis.SetCSRFToken(ctx, token, csrfToken, ac.cfg.SessionTimeout); err != nil {
		ac.log.WithError(err).Warn("csrf token write failed")
	}

	c.SetCookie("session_token", token, int(ac.cfg.SessionTimeout.Seconds()), "/", "", false, true)

	ac.audit.Record(&user.ID, models.ActionLogin, "users", fmt.Sprint(user.ID),
		"login successful", ip, models.OutcomeSuccess, models.SeverityLow)

	respondOK(c, http.StatusOK, "Login successful", gin.H{
		"user": gin.H{
			"id":        user.ID,
			"username":  user.Username,
			"full_name": user.FullName,
			"role":      user.Role,
		},
		"csrf_token": csrfToken,
	})
}

// Logout closes the current session.
func (ac *AuthController) Logout(c *gin.Context) {
	token := c.GetString("sessionToken")
	userID := currentUserID(c)

	result := ac.db.Model(&models.Session{}).
		Where("token = ? AND status = ?", token, models.SessionActive).
		Update("status", models.SessionClosed)
	if result.Error != nil {
		respondError(c, http.StatusInternalServerError, "Logout failed")
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusBadRequest, "Invalid session")
		return
	}

	if err := ac.redis.DeleteSession(c.Request.Context(), token); err != nil {
		ac.log.WithError(err).Warn("session cache delete failed")
	}

	c.SetCookie("session_token", "", -1, "/", "", false, true)

	ac.audit.Record(userID, models.ActionLogout, "sessions", "",
		"logout", c.ClientIP(), models.OutcomeSuccess, models.SeverityLow)

	respondOK(c, http.StatusOK, "Logged out successfully", nil)
}

// Me returns the authenticated user's own record.
func (ac *AuthController) Me(c *gin.Context) {
	userID := currentUserID(c)
	if userID == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var user models.User
	if err := ac.db.Select("id, username, full_name, role, created_at, last_login").
		First(&user, *userID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve user")
		return
	}

	respondOK(c, http.StatusOK, "User retrieved successfully", gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"full_name":  user.FullName,
		"role":       user.Role,
		"created_at": user.CreatedAt,
		"last_login": user.LastLogin,
	})
}

// AuthMiddleware enforces the session liveness rules: the cookie token
// must map to an Active session whose inactivity gap is inside the
// timeout. Expiry is applied lazily and idempotently. An IP mismatch
// against the session's bound IP is logged, not enforced.
func (ac *AuthController) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("session_token")
		if err != nil {
			abortWith(c, http.StatusUnauthorized, "Authentication required")
			return
		}

		ctx := c.Request.Context()
		cached := true
		if _, err := ac.redis.GetSession(ctx, token); err != nil {
			cached = false
		}

		var session models.Session
		if err := ac.db.Where("token = ?", token).First(&session).Error; err != nil {
			abortWith(c, http.StatusUnauthorized, "Invalid session")
			return
		}
		if session.Status != models.SessionActive {
			abortWith(c, http.StatusUnauthorized, "Invalid or expired session")
			return
		}

		now := time.Now()
		if now.Sub(session.LastActivity) > ac.cfg.SessionTimeout {
			// Guarded update keeps re-expiry idempotent.
			ac.db.Model(&models.Session{}).
				Where("id = ? AND status = ?", session.ID, models.SessionActive).
				Update("status", models.SessionExpired)
			if err := ac.redis.DeleteSession(ctx, token); err != nil {
				ac.log.WithError(err).Warn("session cache delete failed")
			}
			abortWith(c, http.StatusUnauthorized, "Session expired")
			return
		}

		var user models.User
		if err := ac.db.Select("id, username, role, is_active, locked").
			First(&user, session.UserID).Error; err != nil {
			abortWith(c, http.StatusUnauthorized, "Invalid session")
			return
		}
		if user.Locked || !user.IsActive {
			ac.db.Model(&models.Session{}).
				Where("id = ? AND status = ?", session.ID, models.SessionActive).
				Update("status", models.SessionForcedClosed)
			if err := ac.redis.DeleteSession(ctx, token); err != nil {
				ac.log.WithError(err).Warn("session cache delete failed")
			}
			abortWith(c, http.StatusForbidden, "Account is locked or disabled")
			return
		}

		if session.IPAddress != "" && session.IPAddress != c.ClientIP() {
			ac.log.WithFields(logrus.Fields{
				"session_id": session.ID,
				"bound_ip":   session.IPAddress,
				"request_ip": c.ClientIP(),
			}).Warn("session IP mismatch")
		}

		ac.db.Model(&session).Update("last_activity", now)
		if cached {
			if err := ac.redis.TouchSession(ctx, token, ac.cfg.SessionTimeout); err != nil {
				ac.log.WithError(err).Warn("session cache touch failed")
			}
		} else if err := ac.redis.SetSession(ctx, token, session.UserID, ac.cfg.SessionTimeout); err != nil {
			ac.log.WithError(err).Warn("session cache write failed")
		}

		c.Set("userID", session.UserID)
		c.Set("userRole", user.Role)
		c.Set("sessionID", session.ID)
		c.Set("sessionToken", token)

		c.Next()
	}
}

// CSRFMiddleware rejects state-changing requests without the
// per-session token. Runs after AuthMiddleware. The check happens
// before any payload validation.
func (ac *AuthController) CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		provided := c.GetHeader("X-CSRF-Token")
		if provided == "" {
			provided = c.PostForm("csrf_token")
		}
		if provided == "" {
			abortWith(c, http.StatusForbidden, "CSRF token required")
			return
		}

		token := c.GetString("sessionToken")
		expected, err := ac.redis.GetCSRFToken(c.Request.Context(), token)
		if err != nil {
			abortWith(c, http.StatusForbidden, "Invalid CSRF token")
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			abortWith(c, http.StatusForbidden, "Invalid CSRF token")
			return
		}

		c.Next()
	}
}

// RequireRole allows only the listed roles past.
func (ac *AuthController) RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("userRole")
		if !exists {
			abortWith(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		role, ok := value.(models.Role)
		if !ok {
			abortWith(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		abortWith(c, http.StatusForbidden, "Insufficient permissions")
	}
}

// currentUserID reads the actor set by AuthMiddleware; nil when absent.
func currentUserID(c *gin.Context) *uint {
	value, exists := c.Get("userID")
	if !exists {
		return nil
	}
	id, ok := value.(uint)
	if !ok {
		return nil
	}
	return &id
}
