package model

import (
	"time"

	"gorm.io/datatypes"
)

// SponsorSlot represents a sponsor booth activation window on an event.
// Unlike speaker sessions the window is advisory, so both bounds may be nil.
type SponsorSlot struct {
	ID              int64  `gorm:"primaryKey"`
	EventID         int64  `gorm:"index;not null"`
	SponsorName     string `gorm:"size:256;not null"`
	Tier            string `gorm:"size:64"`
	BoothNumber     string `gorm:"size:32"`
	TalkingPoints   string `gorm:"type:text"`
	SpecialOffer    string `gorm:"type:text"`
	ActivationStart *time.Time
	ActivationEnd   *time.Time
	FocusAreas      datatypes.JSONSlice[string]
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Associations
	Event Event `gorm:"constraint:OnDelete:CASCADE"`
}
