package models

import (
	"time"
)

type Medication struct {
	ID            uint   `gorm:"primarykey"`
	Ref           string `gorm:"size:36;unique;not null"`
	Name          string `gorm:"unique;not null"`
	DosageForm    string `gorm:"size:64"`
	StockQuantity int    `gorm:"not null;default:0"`
	MinimumStock  int    `gorm:"not null;default:0"`
	ExpiryDate    string `gorm:"size:10"` // YYYY-MM-DD, empty if none
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
