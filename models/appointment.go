package models

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "Scheduled"
	AppointmentCompleted AppointmentStatus = "Completed"
	AppointmentCancelled AppointmentStatus = "Cancelled"
)

// Appointment books a doctor for one slot on one date. The slot-free
// check is check-then-act inside a transaction; two concurrent requests
// for the same doctor/date/slot can both pass it. Known race, accepted.
type Appointment struct {
	ID        uint   `gorm:"primarykey"`
	Ref       string `gorm:"size:36;unique;not null"`
	PatientID uint   `gorm:"not null;index"`
	DoctorID  uint   `gorm:"not null;index"`
	Date      string `gorm:"size:10;not null;index"` // YYYY-MM-DD
	Slot      string `gorm:"size:5;not null"`        // HH:MM
	Reason    string `gorm:"size:512"`
	Status    AppointmentStatus `gorm:"size:16;not null;default:Scheduled"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Patient   Patient `gorm:"foreignkey:PatientID"`
	Doctor    User    `gorm:"foreignkey:DoctorID"`
}
