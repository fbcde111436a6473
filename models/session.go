package models

import (
	"time"
)

type SessionStatus string

const (
	SessionActive       SessionStatus = "Active"
	SessionClosed       SessionStatus = "Closed"
	SessionExpired      SessionStatus = "Expired"
	SessionForcedClosed SessionStatus = "ForcedClosed"
)

// Session is the server-side record behind the session cookie. Expiry is
// lazy: the auth middleware compares LastActivity against the inactivity
// timeout on each request, there is no background sweeper.
type Session struct {
	ID           uint          `gorm:"primarykey"`
	UserID       uint          `gorm:"not null;index"`
	Token        string        `gorm:"unique;not null"`
	IPAddress    string        `gorm:"size:45"`
	UserAgent    string        `gorm:"size:512"`
	Status       SessionStatus `gorm:"size:16;not null;default:Active"`
	CreatedAt    time.Time
	LastActivity time.Time
	User         User `gorm:"foreignkey:UserID"`
}
