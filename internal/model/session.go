package model

import (
	"time"

	"gorm.io/datatypes"
)

// Session represents a single speaker slot on an event agenda.
// SessionTime and SessionEnd are pointers because imported agendas sometimes
// arrive without usable times; such sessions are excluded from time-triggered
// scheduling but still listed on the agenda.
type Session struct {
	ID             int64  `gorm:"primaryKey"`
	EventID        int64  `gorm:"index;not null"`
	Title          string `gorm:"size:256;not null"`
	Description    string `gorm:"type:text"`
	SpeakerName    string `gorm:"size:256"`
	SpeakerCompany string `gorm:"size:256"`
	SpeakerBio     string `gorm:"type:text"`
	SessionTime    *time.Time `gorm:"index"`
	SessionEnd     *time.Time
	FocusAreas     datatypes.JSONSlice[string]
	Location       string `gorm:"size:256"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Associations
	Event Event `gorm:"constraint:OnDelete:CASCADE"`
}

// HasValidWindow reports whether the session carries a usable time window.
func (s *Session) HasValidWindow() bool {
	return s.SessionTime != nil && s.SessionEnd != nil && s.SessionTime.Before(*s.SessionEnd)
}
