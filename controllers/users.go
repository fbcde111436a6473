package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-api/audit"
	"hospital-admin-api/models"
	"hospital-admin-api/utils"
	"hospital-admin-api/validators"
)

type UserController struct {
	db    *gorm.DB
	audit *audit.Logger
}

func NewUserController(db *gorm.DB, auditLog *audit.Logger) *UserController {
	return &UserController{db: db, audit: auditLog}
}

type userResponse struct {
	ID                  uint        `json:"id"`
	Username            string      `json:"username"`
	FullName            string      `json:"full_name"`
	Role                models.Role `json:"role"`
	IsActive            bool        `json:"is_active"`
	Locked              bool        `json:"locked"`
	FailedLoginAttempts int         `json:"failed_login_attempts"`
	LastLogin           *time.Time  `json:"last_login"`
	CreatedAt           time.Time   `json:"created_at"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{
		ID:                  u.ID,
		Username:            u.Username,
		FullName:            u.FullName,
		Role:                u.Role,
		IsActive:            u.IsActive,
		Locked:              u.Locked,
		FailedLoginAttempts: u.FailedLoginAttempts,
		LastLogin:           u.LastLogin,
		CreatedAt:           u.CreatedAt,
	}
}

// Create registers a staff account. Admin only.
func (uc *UserController) Create(c *gin.Context) {
	req, ok := validators.ValidateCreateUserRequest(c)
	if !ok {
		return
	}

	var existing models.User
	if err := uc.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		respondError(c, http.StatusConflict, "A user with this username already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		respondError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	salt, err := utils.GenerateSalt()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: utils.HashPassword(req.Password, salt),
		PasswordSalt: salt,
		FullName:     req.FullName,
		Role:         models.Role(req.Role),
		IsActive:     true,
	}
	if err := uc.db.Create(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	uc.audit.Record(currentUserID(c), models.ActionInsert, "users", fmt.Sprint(user.ID),
		fmt.Sprintf("created user %q with role %s", user.Username, user.Role),
		c.ClientIP(), models.OutcomeSuccess, models.SeverityMedium)

	respondOK(c, http.StatusOK, "User created successfully", toUserResponse(user))
}

// List returns all staff accounts. Admin only.
func (uc *UserController) List(c *gin.Context) {
	var users []models.User
	if err := uc.db.Order("username").Find(&users).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	respondOK(c, http.StatusOK, "Users retrieved successfully", gin.H{"users": out})
}

// Unlock clears a lockout and resets the failure counter. This is the
// only path out of the locked state.
func (uc *UserController) Unlock(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	var user models.User
	if err := uc.db.First(&user, uint(id)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to unlock user")
		return
	}

	if err := uc.db.Model(&user).Updates(map[string]interface{}{
		"locked":                false,
		"locked_at":             nil,
		"failed_login_attempts": 0,
	}).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to unlock user")
		return
	}

	uc.audit.Record(currentUserID(c), models.ActionUpdate, "users", fmt.Sprint(user.ID),
		fmt.Sprintf("unlocked account %q", user.Username),
		c.ClientIP(), models.OutcomeSuccess, models.SeverityMedium)

	respondOK(c, http.StatusOK, "User unlocked successfully", nil)
}

type sessionResponse struct {
	ID             uint                 `json:"id"`
	IPAddress      string               `json:"ip_address"`
	UserAgent      string               `json:"user_agent"`
	Status         models.SessionStatus `json:"status"`
	CreatedAt      time.Time            `json:"created_at"`
	LastActivity   time.Time            `json:"last_activity"`
	CurrentSession bool                 `json:"current_session"`
}

// Sessions lists the caller's active sessions.
func (uc *UserController) Sessions(c *gin.Context) {
	userID := currentUserID(c)
	if userID == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	currentSessionID, _ := c.Get("sessionID")

	var sessions []models.Session
	if err := uc.db.Where("user_id = ? AND status = ?", *userID, models.SessionActive).
		Order("last_activity DESC").
		Find(&sessions).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch sessions")
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionResponse{
			ID:             s.ID,
			IPAddress:      s.IPAddress,
			UserAgent:      s.UserAgent,
			Status:         s.Status,
			CreatedAt:      s.CreatedAt,
			LastActivity:   s.LastActivity,
			CurrentSession: s.ID == currentSessionID,
		})
	}

	respondOK(c, http.StatusOK, "Active sessions retrieved successfully", gin.H{
		"sessions":              out,
		"total_active_sessions": len(out),
	})
}
