package model

import "time"

// PushSubscription holds a browser push subscription for an admin dashboard.
// Admins subscribe per event to receive orchestration alerts (agenda
// generated, repeated view-refresh failures).
type PushSubscription struct {
	Endpoint  string `gorm:"primaryKey"`
	P256DH    string `gorm:"column:p256dh;not null"`
	Auth      string `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Events []*Event `gorm:"many2many:subscription_event_mapping;"`
}
