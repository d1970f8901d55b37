package model

import "time"

// EventAttendee is a contractor's registration for an event.
// A contractor registers at most once per event.
type EventAttendee struct {
	ID              int64 `gorm:"primaryKey;autoIncrement"`
	EventID         int64 `gorm:"uniqueIndex:idx_event_contractor;not null"`
	ContractorID    int64 `gorm:"uniqueIndex:idx_event_contractor;not null"`
	SMSOptIn        bool  `gorm:"not null;default:false"`
	EmailOptIn      bool  `gorm:"not null;default:false"`
	CheckedIn       bool  `gorm:"not null;default:false"`
	CheckInTime     *time.Time
	ProfileComplete bool `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Associations
	Event      Event      `gorm:"constraint:OnDelete:CASCADE"`
	Contractor Contractor `gorm:"constraint:OnDelete:CASCADE"`
}
