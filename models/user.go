package models

import (
	"time"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDoctor       Role = "doctor"
	RoleReceptionist Role = "receptionist"
)

type User struct {
	ID           uint   `gorm:"primarykey"`
	Username     string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	PasswordSalt string `gorm:"not null"`
	FullName     string
	Role         Role `gorm:"size:20;not null;default:receptionist"`
	IsActive     bool `gorm:"default:true"`

	// Locked is set when FailedLoginAttempts reaches the configured
	// maximum and stays set until an administrator clears it.
	FailedLoginAttempts int  `gorm:"default:0"`
	Locked              bool `gorm:"default:false"`
	LockedAt            *time.Time

	LastLogin   *time.Time
	LastLoginIP string `gorm:"size:45"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
