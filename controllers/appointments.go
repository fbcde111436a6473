package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"hospital-admin-api/audit"
	"hospital-admin-api/models"
	"hospital-admin-api/validators"
)

type AppointmentController struct {
	db    *gorm.DB
	audit *audit.Logger
}

func NewAppointmentController(db *gorm.DB, auditLog *audit.Logger) *AppointmentController {
	return &AppointmentController{db: db, audit: auditLog}
}

type appointmentResponse struct {
	Ref        string                   `json:"ref"`
	PatientRef string                   `json:"patient_ref"`
	DoctorID   uint                     `json:"doctor_id"`
	DoctorName string                   `json:"doctor_name"`
	Date       string                   `json:"date"`
	Slot       string                   `json:"slot"`
	Reason     string                   `json:"reason"`
	Status     models.AppointmentStatus `json:"status"`
}

// Create books a slot. The slot-free check and the insert run in one
// transaction; two concurrent requests can still both pass the check
// (no cross-request locking here).
func (apc *AppointmentController) Create(c *gin.Context) {
	req, ok := validators.ValidateCreateAppointmentRequest(c)
	if !ok {
		return
	}

	tx := apc.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var patient models.Patient
	if err := tx.Where("ref = ? AND is_active = ?", req.PatientRef, true).
		First(&patient).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			respondError(c, http.StatusNotFound, "Patient not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to create appointment")
		return
	}

	var doctor models.User
	if err := tx.Where("id = ? AND role = ? AND is_active = ?",
		req.DoctorID, models.RoleDoctor, true).First(&doctor).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			respondError(c, http.StatusNotFound, "Doctor not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to create appointment")
		return
	}

	var taken int64
	if err := tx.Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ? AND slot = ? AND status <> ?",
			req.DoctorID, req.Date, req.Slot, models.AppointmentCancelled).
		Count(&taken).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to create appointment")
		return
	}
	if taken > 0 {
		tx.Rollback()
		respondError(c, http.StatusConflict, "This slot is already booked")
		return
	}

	appointment := models.Appointment{
		Ref:       uuid.New().String(),
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      req.Date,
		Slot:      req.Slot,
		Reason:    req.Reason,
		Status:    models.AppointmentScheduled,
	}
	if err := tx.Create(&appointment).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to create appointment")
		return
	}

	if err := tx.Commit().Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create appointment")
		return
	}

	apc.audit.Record(currentUserID(c), models.ActionInsert, "appointments", appointment.Ref,
		fmt.Sprintf("booked %s %s for doctor %d", req.Date, req.Slot, doctor.ID),
		c.ClientIP(), models.OutcomeSuccess, models.SeverityLow)

	respondOK(c, http.StatusOK, "Appointment created successfully", appointmentResponse{
		Ref:        appointment.Ref,
		PatientRef: patient.Ref,
		DoctorID:   doctor.ID,
		DoctorName: doctor.FullName,
		Date:       appointment.Date,
		Slot:       appointment.Slot,
		Reason:     appointment.Reason,
		Status:     appointment.Status,
	})
}

// List filters by doctor and date. Doctors only ever see their own.
func (apc *AppointmentController) List(c *gin.Context) {
	q := apc.db.Model(&models.Appointment{}).Preload("Patient").Preload("Doctor")

	role, _ := c.Get("userRole")
	if role == models.RoleDoctor {
		q = q.Where("doctor_id = ?", derefOrZero(currentUserID(c)))
	} else if doctorID := c.Query("doctor_id"); doctorID != "" {
		q = q.Where("doctor_id = ?", doctorID)
	}
	if date := c.Query("date"); date != "" {
		q = q.Where("date = ?", date)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := q.Order("date, slot").Limit(500).Find(&appointments).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch appointments")
		return
	}

	out := make([]appointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, appointmentResponse{
			Ref:        a.Ref,
			PatientRef: a.Patient.Ref,
			DoctorID:   a.DoctorID,
			DoctorName: a.Doctor.FullName,
			Date:       a.Date,
			Slot:       a.Slot,
			Reason:     a.Reason,
			Status:     a.Status,
		})
	}

	respondOK(c, http.StatusOK, "Appointments retrieved successfully", gin.H{
		"appointments": out,
		"total":        len(out),
	})
}

// UpdateStatus moves an appointment between states. Terminal states
// stay terminal.
func (apc *AppointmentController) UpdateStatus(c *gin.Context) {
	req, ok := validators.ValidateUpdateAppointmentStatusRequest(c)
	if !ok {
		return
	}

	var appointment models.Appointment
	if err := apc.db.Where("ref = ?", c.Param("ref")).First(&appointment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			respondError(c, http.StatusNotFound, "Appointment not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to update appointment")
		return
	}

	next := models.AppointmentStatus(req.Status)
	if appointment.Status != models.AppointmentScheduled && appointment.Status != next {
		respondError(c, http.StatusConflict,
			fmt.Sprintf("Cannot move a %s appointment to %s", appointment.Status, next))
		return
	}

	if err := apc.db.Model(&appointment).Update("status", next).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update appointment")
		return
	}

	apc.audit.Record(currentUserID(c), models.ActionUpdate, "appointments", appointment.Ref,
		fmt.Sprintf("status changed to %s", next),
		c.ClientIP(), models.OutcomeSuccess, models.SeverityLow)

	respondOK(c, http.StatusOK, "Appointment updated successfully", nil)
}

// Cancel marks the appointment Cancelled, freeing its slot.
func (apc *AppointmentController) Cancel(c *gin.Context) {
	var appointment models.Appointment
	if err := apc.db.Where("ref = ?", c.Param("ref")).First(&appointment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			respondError(c, http.StatusNotFound, "Appointment not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to cancel appointment")
		return
	}

	if appointment.Status == models.AppointmentCompleted {
		respondError(c, http.StatusConflict, "Cannot cancel a completed appointment")
		return
	}

	if err := apc.db.Model(&appointment).
		Update("status", models.AppointmentCancelled).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to cancel appointment")
		return
	}

	apc.audit.Record(currentUserID(c), models.ActionDelete, "appointments", appointment.Ref,
		"appointment cancelled", c.ClientIP(), models.OutcomeSuccess, models.SeverityLow)

	respondOK(c, http.StatusOK, "Appointment cancelled successfully", nil)
}
