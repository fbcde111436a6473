package validators

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
}

type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

func Validate(data interface{}) []ValidationError {
	var validationErrors []ValidationError

	err := validate.Struct(data)
	if err != nil {
		if errors, ok := err.(validator.ValidationErrors); ok {
			for _, e := range errors {
				validationErrors = append(validationErrors, ValidationError{
					Field: e.Field(),
					Tag:   e.Tag(),
					Value: e.Param(),
				})
			}
		}
	}

	return validationErrors
}

// fail writes the standard response envelope with field-level errors.
func fail(c *gin.Context, errs []ValidationError) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success":   false,
		"message":   "Validation failed",
		"data":      gin.H{"errors": errs},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func failBind(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success":   false,
		"message":   "Invalid request payload",
		"data":      nil,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64" binding:"required,max=64"`
	Password string `json:"password" validate:"required,max=128" binding:"required,max=128"`
}

func ValidateLoginRequest(c *gin.Context) (*LoginRequest, bool) {
	var req LoginRequest
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

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64" binding:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128" binding:"required,min=8,max=128"`
	FullName string `json:"full_name" validate:"required" binding:"required"`
	Role     string `json:"role" validate:"required,oneof=admin doctor receptionist" binding:"required,oneof=admin doctor receptionist"`
}

func ValidateCreateUserRequest(c *gin.Context) (*CreateUserRequest, bool) {
	var req CreateUserRequest
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
