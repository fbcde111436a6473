package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hospital-admin-api/audit"
	"hospital-admin-api/models"
	"hospital-admin-api/utils"
	"hospital-admin-api/validators"
)

type PatientController struct {
	db     *gorm.DB
	cipher *utils.FieldCipher
	audit  *audit.Logger
	log    *logrus.Logger
}

func NewPatientController(db *gorm.DB, cipher *utils.FieldCipher, auditLog *audit.Logger, log *logrus.Logger) *PatientController {
	return &PatientController{db: db, cipher: cipher, audit: auditLog, log: log}
}

type patientResponse struct {
	Ref            string `json:"ref"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DocumentNumber string `json:"document_number"`
	DateOfBirth    string `json:"date_of_birth"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	BloodType      string `json:"blood_type"`
	Notes          string `json:"notes"`
	CreatedAt      string `json:"created_at"`
}

// decryptPatient rebuilds the plaintext view of one row. A decryption
// failure means the row was written with a different key and is
// unreadable.
func (pc *PatientController) decryptPatient(p models.Patient) (patientResponse, error) {
	out := patientResponse{
		Ref:       p.Ref,
		BloodType: p.BloodType,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
	var err error
	if out.FirstName, err = pc.cipher.Decrypt(p.FirstName); err != nil {
		return out, err
	}
	if out.LastName, err = pc.cipher.Decrypt(p.LastName); err != nil {
		return out, err
	}
	if out.DocumentNumber, err = pc.cipher.Decrypt(p.DocumentNumber); err != nil {
		return out, err
	}
	if out.DateOfBirth, err = pc.cipher.Decrypt(p.DateOfBirth); err != nil {
		return out, err
	}
	if out.Phone, err = pc.cipher.Decrypt(p.Phone); err != nil {
		return out, err
	}
	if out.Address, err = pc.cipher.Decrypt(p.Address); err != nil {
		return out, err
	}
	return out, nil
}

// Create inserts the patient and the initial history record in one
// transaction. Duplicate document numbers are a conflict.
func (pc *PatientController) Create(c *gin.Context) {
	req, ok := validators.ValidateCreatePatientRequest(c)
	if !ok {
		return
	}

	actor := currentUserID(c)
	digest := utils.DocumentDigest(req.DocumentNumber)

	tx := pc.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var existing models.Patient
	if err := tx.Where("document_digest = ?", digest).First(&existing).Error; err == nil {
		tx.Rollback()
		respondError(c, http.StatusConflict, "A patient with this document number already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to create patient")
		return
	}

	patient := models.Patient{
		Ref:            uuid.New().String(),
		DocumentDigest: digest,
		BloodType:      req.BloodType,
		Notes:          req.Notes,
		IsActive:       true,
	}

	fields := []struct {
		dst *string
		src string
	}{
		{&patient.FirstName, req.FirstName},
		{&patient.LastName, req.LastName},
		{&patient.DocumentNumber, req.DocumentNumber},
		{&patient.DateOfBirth, req.DateOfBirth},
		{&patient.Phone, req.Phone},
		{&patient.Address, req.Address},
	}
	for _, f := range fields {
		enc, err := pc.cipher.Encrypt(f.src)
		if err != nil {
			tx.Rollback()
			pc.log.WithError(err).Error("patient field encryption failed")
			respondError(c, http.StatusInternalServerError, "Failed to create patient")
			return
		}
		*f.dst = enc
	}

	if err := tx.Create(&patient).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to create patient")
		return
	}

	history := models.PatientHistory{
		PatientID:  patient.ID,
		RecordedBy: derefOrZero(actor),
		Note:       "Patient record created",
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to create patient")
		return
	}

	if err := tx.Commit().Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create patient")
		return
	}

	pc.audit.Record(actor, models.ActionInsert, "patients", patient.Ref,
		"created patient record", c.ClientIP(), models.OutcomeSuccess, models.SeverityLow)

	out, err := pc.decryptPatient(patient)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create patient")
		return
	}
	respondOK(c, http.StatusOK, "Patient created successfully", out)
}

// List returns active patients. The document filter matches on the
// deterministic digest; the name filter has to decrypt first, so it is
// applied after loading the page.
func (pc *PatientController) List(c *gin.Context) {
	q := pc.db.Where("is_active = ?", true)

	if document := c.Query("document"); document != "" {
		q = q.Where("document_digest = ?", utils.DocumentDigest(document))
	}

	var patients []models.Patient
	if err := q.Order("id DESC").Limit(500).Find(&patients).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch patients")
		return
	}

	name := strings.ToLower(c.Query("name"))
	out := make([]patientResponse, 0, len(patients))
	for _, p := range patients {
		decrypted, err := pc.decryptPatient(p)
		if err != nil {
			pc.log.WithError(err).WithField("patient", p.Ref).Error("patient decryption failed")
			continue
		}
		if name != "" &&
			!strings.Contains(strings.ToLower(decrypted.FirstName), name) &&
			!strings.Contains(strings.ToLower(decrypted.LastName), name) {
			continue
		}
		out = append(out, decrypted)
	}

	respondOK(c, http.StatusOK, "Patients retrieved successfully", gin.H{
		"patients": out,
		"total":    len(out),
	})
}

// Get returns one patient by public reference.
func (pc *PatientController) Get(c *gin.Context) {
	var patient models.Patient
	if err := pc.db.Where("ref = ? AND is_active = ?", c.Param("ref"), true).
		First(&patient).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			respondError(c, http.StatusNotFound, "Patient not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to fetch patient")
		return
	}

	out, err := pc.decryptPatient(patient)
	if err != nil {
		pc.log.WithError(err).WithField("patient", patient.Ref).Error("patient decryption failed")
		respondError(c, http.StatusInternalServerError, "Failed to fetch patient")
		return
	}
	respondOK(c, http.StatusOK, "Patient retrieved successfully", out)
}

// Update re-encrypts any supplied PII fields and appends a history
// record in the same transaction.
func (pc *PatientController) Update(c *gin.Context) {
	req, ok := validators.ValidateUpdatePatientRequest(c)
	if !ok {
		return
	}

	actor := currentUserID(c)

	tx := pc.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var patient models.Patient
	if err := tx.Where("ref = ? AND is_active = ?", c.Param("ref"), true).
		First(&patient).Error; err != nil {
		tx.Rollback()
		if err == gorm.ErrRecordNotFound {
			respondError(c, http.StatusNotFound, "Patient not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to update patient")
		return
	}

	updates := map[string]interface{}{}
	encrypt := func(column string, value *string) error {
		if value == nil {
			return nil
		}
		enc, err := pc.cipher.Encrypt(*value)
		if err != nil {
			return err
		}
		updates[column] = enc
		return nil
	}

	if req.DocumentNumber != nil {
		digest := utils.DocumentDigest(*req.DocumentNumber)
		var other models.Patient
		err := tx.Where("document_digest = ? AND id <> ?", digest, patient.ID).First(&other).Error
		if err == nil {
			tx.Rollback()
			respondError(c, http.StatusConflict, "A patient with this document number already exists")
			return
		}
		if err != gorm.ErrRecordNotFound {
			tx.Rollback()
			respondError(c, http.StatusInternalServerError, "Failed to update patient")
			return
		}
		updates["document_digest"] = digest
	}

	encryptedFields := []struct {
		column string
		value  *string
	}{
		{"first_name", req.FirstName},
		{"last_name", req.LastName},
		{"document_number", req.DocumentNumber},
		{"date_of_birth", req.DateOfBirth},
		{"phone", req.Phone},
		{"address", req.Address},
	}
	for _, f := range encryptedFields {
		if err := encrypt(f.column, f.value); err != nil {
			tx.Rollback()
			pc.log.WithError(err).Error("patient field encryption failed")
			respondError(c, http.StatusInternalServerError, "Failed to update patient")
			return
		}
	}

	if req.BloodType != nil {
		updates["blood_type"] = *req.BloodType
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) == 0 {
		tx.Rollback()
		respondError(c, http.StatusBadRequest, "No fields to update")
		return
	}

	if err := tx.Model(&patient).Updates(updates).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to update patient")
		return
	}

	history := models.PatientHistory{
		PatientID:  patient.ID,
		RecordedBy: derefOrZero(actor),
		Note:       "Patient record updated",
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		respondError(c, http.StatusInternalServerError, "Failed to update patient")
		return
	}

	if err := tx.Commit().Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update patient")
		return
	}

	pc.audit.Record(actor, models.ActionUpdate, "patients", patient.Ref,
		fmt.Sprintf("updated %d patient fields", len(updates)),
		c.ClientIP(), models.OutcomeSuccess, models.SeverityLow)

	respondOK(c, http.StatusOK, "Patient updated successfully", nil)
}

// Delete deactivates the record. Rows are kept for history.
func (pc *PatientController) Delete(c *gin.Context) {
	var patient models.Patient
	if err := pc.db.Where("ref = ? AND is_active = ?", c.Param("ref"), true).
		First(&patient).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			respondError(c, http.StatusNotFound, "Patient not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to delete patient")
		return
	}

	if err := pc.db.Model(&patient).Update("is_active", false).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete patient")
		return
	}

	pc.audit.Record(currentUserID(c), models.ActionDelete, "patients", patient.Ref,
		"deactivated patient record", c.ClientIP(), models.OutcomeSuccess, models.SeverityMedium)

	respondOK(c, http.StatusOK, "Patient deleted successfully", nil)
}

func derefOrZero(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}
