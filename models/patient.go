package models

import (
	"time"
)

// Patient PII columns (names, document, birth date, phone, address) hold
// AES-GCM ciphertext, encrypted by the controller before persistence and
// decrypted after load. DocumentDigest is a deterministic hash of the
// plaintext document number so uniqueness and lookups still work.
type Patient struct {
	ID             uint   `gorm:"primarykey"`
	Ref            string `gorm:"size:36;unique;not null"`
	FirstName      string `gorm:"not null"`
	LastName       string `gorm:"not null"`
	DocumentNumber string `gorm:"not null"`
	DocumentDigest string `gorm:"size:64;unique;not null"`
	DateOfBirth    string
	Phone          string
	Address        string
	BloodType      string `gorm:"size:8"`
	Notes          string `gorm:"size:1024"`
	IsActive       bool   `gorm:"default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PatientHistory rows are created alongside patient writes inside the
// same transaction.
type PatientHistory struct {
	ID         uint   `gorm:"primarykey"`
	PatientID  uint   `gorm:"not null;index"`
	RecordedBy uint   `gorm:"not null"`
	Note       string `gorm:"size:512;not null"`
	CreatedAt  time.Time
}
