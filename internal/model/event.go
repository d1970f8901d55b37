package model

import "time"

// EventStatus tracks where an event sits in its lifecycle.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusActive    EventStatus = "active"
	EventStatusCompleted EventStatus = "completed"
)

// Event represents a Power100 event with its scheduling window.
type Event struct {
	ID                   int64       `gorm:"primaryKey"`
	Name                 string      `gorm:"size:256;not null"`
	Status               EventStatus `gorm:"size:32;not null;default:'draft';index"`
	StartTime            time.Time   `gorm:"not null;index"`
	EndTime              time.Time   `gorm:"not null"`
	Timezone             string      `gorm:"size:64;not null"`
	RegistrationDeadline *time.Time
	OrganizerName        string `gorm:"size:256"`
	OrganizerEmail       string `gorm:"size:256"`
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Associations
	Sessions     []Session       `gorm:"foreignKey:EventID"`
	SponsorSlots []SponsorSlot   `gorm:"foreignKey:EventID"`
	Attendees    []EventAttendee `gorm:"foreignKey:EventID"`
}

// Location resolves the event's IANA timezone, falling back to UTC when the
// stored name does not parse.
func (e *Event) Location() *time.Location {
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ActiveAt reports whether t falls inside the event's scheduled window.
func (e *Event) ActiveAt(t time.Time) bool {
	return !t.Before(e.StartTime) && !t.After(e.EndTime)
}
