package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-api/audit"
	"hospital-admin-api/models"
)

type DashboardController struct {
	db    *gorm.DB
	audit *audit.Logger
}

func NewDashboardController(db *gorm.DB, auditLog *audit.Logger) *DashboardController {
	return &DashboardController{db: db, audit: auditLog}
}

// Summary returns role-dependent counts for the landing screen.
func (dc *DashboardController) Summary(c *gin.Context) {
	userID := currentUserID(c)
	roleValue, _ := c.Get("userRole")
	role, _ := roleValue.(models.Role)

	today := time.Now().Format("2006-01-02")
	data := gin.H{}

	var appointmentsToday int64
	q := dc.db.Model(&models.Appointment{}).
		Where("date = ? AND status = ?", today, models.AppointmentScheduled)
	if role == models.RoleDoctor {
		q = q.Where("doctor_id = ?", derefOrZero(userID))
	}
	if err := q.Count(&appointmentsToday).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to build dashboard")
		return
	}
	data["appointments_today"] = appointmentsToday

	if role == models.RoleAdmin || role == models.RoleReceptionist {
		var patients int64
		if err := dc.db.Model(&models.Patient{}).
			Where("is_active = ?", true).Count(&patients).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to build dashboard")
			return
		}
		data["patients"] = patients
	}

	if role == models.RoleAdmin {
		var users int64
		if err := dc.db.Model(&models.User{}).
			Where("is_active = ?", true).Count(&users).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to build dashboard")
			return
		}
		data["users"] = users

		var lowStock int64
		if err := dc.db.Model(&models.Medication{}).
			Where("stock_quantity <= minimum_stock").Count(&lowStock).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to build dashboard")
			return
		}
		data["low_stock_medications"] = lowStock

		recent, _, err := dc.audit.List(audit.Filter{
			Severity: models.SeverityCritical,
			Limit:    5,
		})
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Failed to build dashboard")
			return
		}
		data["recent_critical_events"] = recent
	}

	respondOK(c, http.StatusOK, "Dashboard retrieved successfully", data)
}
