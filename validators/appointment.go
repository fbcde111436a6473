package validators

import (
	"github.com/gin-gonic/gin"
)

type CreateAppointmentRequest struct {
	PatientRef string `json:"patient_ref" validate:"required,uuid4" binding:"required,uuid4"`
	DoctorID   uint   `json:"doctor_id" validate:"required" binding:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02" binding:"required,datetime=2006-01-02"`
	Slot       string `json:"slot" validate:"required,datetime=15:04" binding:"required,datetime=15:04"`
	Reason     string `json:"reason" validate:"omitempty,max=512" binding:"omitempty,max=512"`
}

func ValidateCreateAppointmentRequest(c *gin.Context) (*CreateAppointmentRequest, bool) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBind(c)
		return nil, false
	}

	if errs := Validate(req); len(errs) > 0 {
		fail(c, errs)
		return nil, false
	}

	return &req, true
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Scheduled Completed Cancelled" binding:"required,oneof=Scheduled Completed Cancelled"`
}

func ValidateUpdateAppointmentStatusRequest(c *gin.Context) (*UpdateAppointmentStatusRequest, bool) {
	var req UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBind(c)
		return nil, false
	}

	if errs := Validate(req); len(errs) > 0 {
		fail(c, errs)
		return nil, false
	}

	return &req, true
}
