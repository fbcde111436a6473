package validators

import (
	"github.com/gin-gonic/gin"
)

type CreateMedicationRequest struct {
	Name          string `json:"name" validate:"required,max=128" binding:"required,max=128"`
	DosageForm    string `json:"dosage_form" validate:"omitempty,max=64" binding:"omitempty,max=64"`
	StockQuantity int    `json:"stock_quantity" validate:"gte=0" binding:"gte=0"`
	MinimumStock  int    `json:"minimum_stock" validate:"gte=0" binding:"gte=0"`
	ExpiryDate    string `json:"expiry_date" validate:"omitempty,datetime=2006-01-02" binding:"omitempty,datetime=2006-01-02"`
}

func ValidateCreateMedicationRequest(c *gin.Context) (*CreateMedicationRequest, bool) {
	var req CreateMedicationRequest
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

type UpdateMedicationRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=128"`
	DosageForm   *string `json:"dosage_form" validate:"omitempty,max=64"`
	MinimumStock *int    `json:"minimum_stock" validate:"omitempty,gte=0"`
	ExpiryDate   *string `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
}

func ValidateUpdateMedicationRequest(c *gin.Context) (*UpdateMedicationRequest, bool) {
	var req UpdateMedicationRequest
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

// AdjustStockRequest moves stock by a signed delta. Reason lands in the
// audit entry.
type AdjustStockRequest struct {
	Delta  int    `json:"delta" validate:"required" binding:"required"`
	Reason string `json:"reason" validate:"required,max=256" binding:"required,max=256"`
}

func ValidateAdjustStockRequest(c *gin.Context) (*AdjustStockRequest, bool) {
	var req AdjustStockRequest
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
