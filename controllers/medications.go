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

type MedicationController struct {
	db    *gorm.DB
	audit *audit.Logger
}

func NewMedicationController(db *gorm.DB, auditLog *audit.Logger) *MedicationController {
	return &MedicationController{db: db, audit: auditLog}
}

type medicationResponse struct {
	Ref           string `json:"ref"`
	Name          string `json:"name"`
	DosageForm    string `json:"dosage_form"`
	StockQuantity int    `json:"stock_quantity"`
	MinimumStock  int    `json:"minimum_stock"`
	ExpiryDate    string `json:"expiry_date"`
	LowStock      bool   `json:"low_stock"`
}

func toMedicationResponse(m models.Medication) medicationResponse {
	return medicationResponse{
		Ref:           m.Ref,
		Name:          m.Name,
		DosageForm:    m.DosageForm,
		StockQuantity: m.StockQuantity,
		MinimumStock:  m.MinimumStock,
		ExpiryDate:    m.ExpiryDate,
		LowStock:      m.StockQuantity <= m.MinimumStock,
	}
}

func (mc *MedicationController) Create(c *gin.Context) {
	req, ok := validators.ValidateCreateMedicationRequest(c)
	if !ok {
		return
	}

	var existing models.Medication
	if err := mc.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		respondError(c, http.StatusConflict, "A medication with this name already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		respondError(c, http.StatusInternalServerError, "Failed to create medication")
		return
	}

	medication := models.Medication{
		Ref:           uuid.New().String(),
		Name:          req.Name,
		DosageForm:    req.DosageForm,
		StockQuantity: req.StockQuantity,
		MinimumStock:  req.MinimumStock,
		ExpiryDate:    req.ExpiryDate,
	}
	if err := mc.db.Create(&medication).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create medication")
		return
	}

	mc.audit.Record(currentUserID(c), models.ActionInsert, "medications", medication.Ref,
		fmt.Sprintf("added medication %q, stock %d", medication.Name, medication.StockQuantity),
		c.ClientIP(), models.OutcomeSuccess, models.SeverityLow)

	respondOK(c, http.StatusOK, "Medication created successfully", toMedicationResponse(medication))
}

func (mc *MedicationController) List(c *gin.Context) {
	q := mc.db.Model(&models.Medication{})
	if c.Query("low_stock") == "true" {
		q = q.Where("stock_quantity <= minimum_stock")
	}
	if name := c.Query("name"); name != "" {
		q = q.Where("name LIKE ?", "%"+name+"%")
	}

	var medications []models.Medication
	if err := q.Order("name").Find(&medications).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch medications")
		return
	}

	out := make([]medicationResponse, 0, len(medications))
	for _, m := range medications {
		out = append(out, toMedicationResponse(m))
	}
	respondOK(c, http.StatusOK, "Medications retrieved successfully", gin.H{
		"medications": out,
		"total":       len(out),
	})
}

func (mc *MedicationController) Update(c *gin.Context) {
	req, ok := validators.ValidateUpdateMedicationRequest(c)
	if !ok {
		return
	}

	var medication models.Medication
	if err := mc.db.Where("ref = ?", c.Param("ref")).First(&medication).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			respondError(c, http.StatusNotFound, "Medication not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to update medication")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.DosageForm != nil {
		updates["dosage_form"] = *req.DosageForm
	}
	if req.MinimumStock != nil {
		updates["minimum_stock"] = *req.MinimumStock
	}
	if req.ExpiryDate != nil {
		updates["expiry_date"] = *req.ExpiryDate
	}
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "No fields to update")
		return
	}

	if err := mc.db.Model(&medication).Updates(updates).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update medication")
		return
	}

	mc.audit.Record(currentUserID(c), models.ActionUpdate, "medications", medication.Ref,
		fmt.Sprintf("updated %d medication fields", len(updates)),
		c.ClientIP(), models.OutcomeSuccess, models.SeverityLow)

	respondOK(c, http.StatusOK, "Medication updated successfully", nil)
}

// AdjustStock applies a signed delta inside a transaction. Going below
// zero is a conflict and rolls back.
func (mc *MedicationController) AdjustStock(c *gin.Context) {
	req, ok := validators.ValidateAdjustStockRequest(c)
	if !ok {
		return
	}

	tx := mc.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var medication models.Medication
	if err := tx.Where("ref = ?", c.Param("ref")).First(&medication).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			respondError(c, http.StatusNotFound, "Medication not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to adjust stock")
		return
	}

	newQuantity := medication.StockQuantity + req.Delta
	if newQuantity < 0 {
		tx.Rollback()
		respondError(c, http.StatusConflict, "Stock cannot go below zero")
		return
	}

	if err := tx.Model(&medication).Update("stock_quantity", newQuantity).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to adjust stock")
		return
	}

	if err := tx.Commit().Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to adjust stock")
		return
	}

	mc.audit.Record(currentUserID(c), models.ActionUpdate, "medications", medication.Ref,
		fmt.Sprintf("stock adjusted by %+d to %d: %s", req.Delta, newQuantity, req.Reason),
		c.ClientIP(), models.OutcomeSuccess, models.SeverityLow)

	medication.StockQuantity = newQuantity
	respondOK(c, http.StatusOK, "Stock adjusted successfully", toMedicationResponse(medication))
}
