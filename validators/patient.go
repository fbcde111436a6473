package validators

import (
	"github.com/gin-gonic/gin"
)

type CreatePatientRequest struct {
	FirstName      string `json:"first_name" validate:"required,max=100" binding:"required,max=100"`
	LastName       string `json:"last_name" validate:"required,max=100" binding:"required,max=100"`
	DocumentNumber string `json:"document_number" validate:"required,max=32" binding:"required,max=32"`
	DateOfBirth    string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02" binding:"omitempty,datetime=2006-01-02"`
	Phone          string `json:"phone" validate:"omitempty,max=32" binding:"omitempty,max=32"`
	Address        string `json:"address" validate:"omitempty,max=256" binding:"omitempty,max=256"`
	BloodType      string `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Notes          string `json:"notes" validate:"omitempty,max=1024" binding:"omitempty,max=1024"`
}

func ValidateCreatePatientRequest(c *gin.Context) (*CreatePatientRequest, bool) {
	var req CreatePatientRequest
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

// UpdatePatientRequest uses pointers so omitted fields are left alone.
type UpdatePatientRequest struct {
	FirstName      *string `json:"first_name" validate:"omitempty,max=100"`
	LastName       *string `json:"last_name" validate:"omitempty,max=100"`
	DocumentNumber *string `json:"document_number" validate:"omitempty,max=32"`
	DateOfBirth    *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Phone          *string `json:"phone" validate:"omitempty,max=32"`
	Address        *string `json:"address" validate:"omitempty,max=256"`
	BloodType      *string `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Notes          *string `json:"notes" validate:"omitempty,max=1024"`
}

func ValidateUpdatePatientRequest(c *gin.Context) (*UpdatePatientRequest, bool) {
	var req UpdatePatientRequest
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
