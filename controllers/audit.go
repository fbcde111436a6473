package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hospital-admin-api/audit"
	"hospital-admin-api/models"
	"hospital-admin-api/validators"
)

// AuditController exposes the admin-only reporting screen and the
// age-gated purge.
type AuditController struct {
	audit *audit.Logger
}

func NewAuditController(auditLog *audit.Logger) *AuditController {
	return &AuditController{audit: auditLog}
}

func (ac *AuditController) List(c *gin.Context) {
	filter := audit.Filter{
		Action:   models.AuditAction(c.Query("action")),
		Severity: models.AuditSeverity(c.Query("severity")),
		Entity:   c.Query("entity"),
	}

	if actor := c.Query("actor_id"); actor != "" {
		id, err := strconv.ParseUint(actor, 10, 32)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid actor_id")
			return
		}
		uid := uint(id)
		filter.ActorID = &uid
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		filter.From = t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		// Inclusive end of day.
		filter.To = t.Add(24*time.Hour - time.Second)
	}
	if limit := c.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			respondError(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		filter.Limit = n
	}
	if offset := c.Query("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil || n < 0 {
			respondError(c, http.StatusBadRequest, "Invalid offset")
			return
		}
		filter.Offset = n
	}

	entries, total, err := ac.audit.List(filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch audit entries")
		return
	}

	respondOK(c, http.StatusOK, "Audit entries retrieved successfully", gin.H{
		"entries": entries,
		"total":   total,
	})
}

// Purge deletes old Low/Medium entries. The retention floor and the
// High/Critical exemption are enforced in the audit package.
func (ac *AuditController) Purge(c *gin.Context) {
	req, ok := validators.ValidatePurgeAuditRequest(c)
	if !ok {
		return
	}

	deleted, err := ac.audit.Purge(req.Days, currentUserID(c), c.ClientIP())
	if err != nil {
		if errors.Is(err, audit.ErrRetentionTooShort) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to purge audit entries")
		return
	}

	respondOK(c, http.StatusOK, "Audit entries purged successfully", gin.H{
		"deleted": deleted,
	})
}
