package validators

import (
	"github.com/gin-gonic/gin"
)

type PurgeAuditRequest struct {
	Days int `json:"days" validate:"required,gt=0" binding:"required,gt=0"`
}

func ValidatePurgeAuditRequest(c *gin.Context) (*PurgeAuditRequest, bool) {
	var req PurgeAuditRequest
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
