package model

import "time"

// MessageType classifies a scheduled outbound orchestration message.
type MessageType string

const (
	MessageTypeCheckInReminder  MessageType = "check_in_reminder"
	MessageTypeSpeakerAlert     MessageType = "speaker_alert"
	MessageTypeSponsorRec       MessageType = "sponsor_recommendation"
	MessageTypePCRRequest       MessageType = "pcr_request"
	MessageTypePeerMatch        MessageType = "peer_match"
	MessageTypeSponsorBatch     MessageType = "sponsor_batch_check"
	MessageTypeOverallPCR       MessageType = "overall_pcr"
)

// MessageStatus tracks delivery progress of an orchestration message.
type MessageStatus string

const (
	MessageStatusPending   MessageStatus = "pending"
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusCancelled MessageStatus = "cancelled"
)

// OrchestrationMessage is a time-triggered outbound SMS scheduled by the
// agenda generator and dispatched by an external delivery worker.
//
// SessionID carries the related session id for session-scoped messages, a
// small slot ordinal for repeated session-less messages (check-in countdown),
// and 0 otherwise. A sentinel rather than NULL keeps the idempotency index
// effective, since unique indexes treat NULLs as distinct.
type OrchestrationMessage struct {
	ID                int64         `gorm:"primaryKey;autoIncrement"`
	EventID           int64         `gorm:"uniqueIndex:idx_message_identity;not null"`
	MessageType       MessageType   `gorm:"uniqueIndex:idx_message_identity;size:32;not null"`
	ContractorID      int64         `gorm:"uniqueIndex:idx_message_identity;not null"`
	SessionID         int64         `gorm:"uniqueIndex:idx_message_identity;not null;default:0"`
	ScheduledSendTime time.Time     `gorm:"not null;index"`
	Status            MessageStatus `gorm:"size:16;not null;default:'pending';index"`
	Body              string        `gorm:"type:text"`
	CreatedAt         time.Time
}
