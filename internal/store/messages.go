package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"power100-experience-backend/internal/model"
)

// CreateOrchestrationMessages bulk-inserts a generation run inside one
// transaction. The unique index on (event_id, message_type, contractor_id,
// session_id) turns a duplicate run into ErrAgendaExists instead of silently
// double-scheduling SMS sends; single-transaction insert means a failed run
// leaves no partial state behind.
func (s *gormStore) CreateOrchestrationMessages(ctx context.Context, msgs []model.OrchestrationMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(msgs, 500).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return ErrAgendaExists
		}
		return fmt.Errorf("failed to create orchestration messages: %w", err)
	}
	return nil
}

func (s *gormStore) CountPendingMessages(ctx context.Context, eventID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.OrchestrationMessage{}).
		Where("event_id = ? AND status = ?", eventID, model.MessageStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending messages for event %d: %w", eventID, err)
	}
	return count, nil
}

// isDuplicateKey matches unique-constraint violations across the drivers in
// play (pgx in production, sqlite in tests).
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
