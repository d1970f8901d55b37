package model

import (
	"time"

	"gorm.io/datatypes"
)

// Contractor is a registered contractor with a focus-area profile.
// FocusAreas is independent of any one event and drives session relevance
// scoring against session focus areas.
type Contractor struct {
	ID         int64  `gorm:"primaryKey"`
	Name       string `gorm:"size:256;not null"`
	Company    string `gorm:"size:256"`
	Phone      string `gorm:"uniqueIndex;size:32;not null"`
	Email      string `gorm:"size:256"`
	FocusAreas datatypes.JSONSlice[string]
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
