package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"power100-experience-backend/internal/model"
	"power100-experience-backend/internal/relevance"
)

// RebuildSessionViews fully recomputes the SessionNow and SessionNext view
// rows for one event from current table contents. The recompute is a pure
// function of (sessions, roster, now), so duplicate or out-of-order
// notifications are harmless: rebuilding to latest is always correct.
//
// Source tables are only read here; the delete-and-insert happens on the view
// tables inside one transaction, so concurrent writers to sessions or the
// roster are never blocked by a refresh.
func (s *gormStore) RebuildSessionViews(ctx context.Context, eventID int64, now time.Time) error {
	var event model.Event
	err := s.db.WithContext(ctx).First(&event, eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to fetch event %d for refresh: %w", eventID, err)
	}

	var sessions []model.Session
	if err := s.db.WithContext(ctx).Where("event_id = ?", eventID).Find(&sessions).Error; err != nil {
		return fmt.Errorf("failed to fetch sessions for event %d: %w", eventID, err)
	}

	var attendees []model.EventAttendee
	if err := s.db.WithContext(ctx).Preload("Contractor").Where("event_id = ?", eventID).Find(&attendees).Error; err != nil {
		return fmt.Errorf("failed to fetch roster for event %d: %w", eventID, err)
	}

	nowRows, nextRows := computeViewRows(eventID, sessions, attendees, now, s.nextWindow)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", eventID).Delete(&model.SessionNowView{}).Error; err != nil {
			return fmt.Errorf("failed to clear session-now rows for event %d: %w", eventID, err)
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&model.SessionNextView{}).Error; err != nil {
			return fmt.Errorf("failed to clear session-next rows for event %d: %w", eventID, err)
		}
		if len(nowRows) > 0 {
			if err := tx.CreateInBatches(nowRows, 200).Error; err != nil {
				return fmt.Errorf("failed to insert session-now rows for event %d: %w", eventID, err)
			}
		}
		if len(nextRows) > 0 {
			if err := tx.CreateInBatches(nextRows, 200).Error; err != nil {
				return fmt.Errorf("failed to insert session-next rows for event %d: %w", eventID, err)
			}
		}
		return nil
	})
}

// computeViewRows derives both view projections for every (attendee, session)
// pair. Sessions without a valid time window never enter either view.
func computeViewRows(eventID int64, sessions []model.Session, attendees []model.EventAttendee, now time.Time, nextWindow time.Duration) ([]model.SessionNowView, []model.SessionNextView) {
	var nowRows []model.SessionNowView
	var nextRows []model.SessionNextView

	horizon := now.Add(nextWindow)

	for _, attendee := range attendees {
		profile := []string(attendee.Contractor.FocusAreas)

		for _, session := range sessions {
			if !session.HasValidWindow() {
				continue
			}
			start, end := *session.SessionTime, *session.SessionEnd
			matches := relevance.MatchCount(profile, session.FocusAreas)

			// Happening now: now within [start, end].
			if !now.Before(start) && !now.After(end) {
				nowRows = append(nowRows, model.SessionNowView{
					EventID:             eventID,
					ContractorID:        attendee.ContractorID,
					SessionID:           session.ID,
					Title:               session.Title,
					SpeakerName:         session.SpeakerName,
					Location:            session.Location,
					SessionTime:         start,
					SessionEnd:          end,
					RelevanceScore:      relevance.Score(matches),
					FocusAreaMatchCount: matches,
					ComputedAt:          now,
				})
			}

			// Starting soon: start strictly ahead of now, within the horizon.
			if start.After(now) && !start.After(horizon) {
				minutesUntil := int(start.Sub(now).Minutes())
				nextRows = append(nextRows, model.SessionNextView{
					EventID:           eventID,
					ContractorID:      attendee.ContractorID,
					SessionID:         session.ID,
					Title:             session.Title,
					SpeakerName:       session.SpeakerName,
					Location:          session.Location,
					SessionTime:       start,
					MinutesUntilStart: minutesUntil,
					MatchCount:        matches,
					PriorityScore:     relevance.PriorityScore(minutesUntil, matches),
					ComputedAt:        now,
				})
			}
		}
	}
	return nowRows, nextRows
}

// SessionsNow returns the contractor's in-progress sessions ranked by
// relevance, match count breaking ties.
func (s *gormStore) SessionsNow(ctx context.Context, contractorID int64) ([]model.SessionNowView, error) {
	var rows []model.SessionNowView
	err := s.db.WithContext(ctx).
		Where("contractor_id = ?", contractorID).
		Order("relevance_score DESC, focus_area_match_count DESC, session_time").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session-now rows: %w", err)
	}
	return rows, nil
}

// SessionsNext returns the contractor's starting-soon sessions ranked by
// priority score.
func (s *gormStore) SessionsNext(ctx context.Context, contractorID int64) ([]model.SessionNextView, error) {
	var rows []model.SessionNextView
	err := s.db.WithContext(ctx).
		Where("contractor_id = ?", contractorID).
		Order("priority_score DESC, session_time").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session-next rows: %w", err)
	}
	return rows, nil
}
