package model

import "time"

// Message directions recorded in the concierge log.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// ConciergeLog records one concierge message exchange leg. The monitoring
// endpoints aggregate these rows over rolling time windows.
type ConciergeLog struct {
	ID           string `gorm:"primaryKey;size:36"`
	ContractorID int64  `gorm:"index;not null"`
	EventID      int64  `gorm:"index;not null;default:0"` // 0 when no event context
	Direction    string `gorm:"size:16;not null"`
	Agent        string `gorm:"size:32"` // routed agent for outbound legs
	Body         string `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"index;not null"`
}
