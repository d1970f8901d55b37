package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"power100-experience-backend/internal/model"
)

// Sentinel errors surfaced to callers at the API boundary.
var (
	ErrEventNotFound      = errors.New("event not found")
	ErrContractorNotFound = errors.New("contractor not found")
	ErrAgendaExists       = errors.New("agenda messages already generated for event")
)

// Notifier receives change notifications after mutating writes to schedule or
// roster tables. Implementations publish the affected event id so the view
// refresher can recompute. A nil Notifier disables publication.
type Notifier interface {
	EventChanged(ctx context.Context, eventID int64)
}

// Store defines the interface for all database operations of the
// orchestration core.
type Store interface {
	// DB exposes the underlying handle for collaborators that run their own
	// queries (alert worker pool, subscription handlers).
	DB() *gorm.DB

	// Events and roster.
	GetEvent(ctx context.Context, id int64) (*model.Event, error)
	GetEventAgenda(ctx context.Context, id int64) (*model.Event, error)
	SetEventStatus(ctx context.Context, id int64, status model.EventStatus) error
	ListRefreshableEventIDs(ctx context.Context, now time.Time) ([]int64, error)
	ActiveEventForContractor(ctx context.Context, contractorID int64, now time.Time) (*model.Event, error)
	AttendeeFor(ctx context.Context, eventID, contractorID int64) (*model.EventAttendee, error)
	ContractorByPhone(ctx context.Context, phone string) (*model.Contractor, error)

	// Schedule/roster mutations. Each publishes a change notification on
	// success so dependent views get recomputed.
	SaveSession(ctx context.Context, session *model.Session) error
	DeleteSession(ctx context.Context, id int64) error
	SaveAttendee(ctx context.Context, attendee *model.EventAttendee) error

	// Materialized view maintenance and reads.
	RebuildSessionViews(ctx context.Context, eventID int64, now time.Time) error
	SessionsNow(ctx context.Context, contractorID int64) ([]model.SessionNowView, error)
	SessionsNext(ctx context.Context, contractorID int64) ([]model.SessionNextView, error)

	// Orchestration messages.
	CreateOrchestrationMessages(ctx context.Context, msgs []model.OrchestrationMessage) error
	CountPendingMessages(ctx context.Context, eventID int64) (int64, error)

	// Concierge log.
	AppendConciergeLog(ctx context.Context, entry *model.ConciergeLog) error
	ConciergeLogsSince(ctx context.Context, since time.Time) ([]model.ConciergeLog, error)
}

// DefaultNextWindow is the look-ahead horizon for the "starting soon" view
// when the caller does not configure one.
const DefaultNextWindow = 60 * time.Minute

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db         *gorm.DB
	notifier   Notifier
	nextWindow time.Duration
}

// NewGormStore creates a new GORM-backed store. notifier may be nil;
// nextWindow <= 0 falls back to DefaultNextWindow.
func NewGormStore(db *gorm.DB, notifier Notifier, nextWindow time.Duration) Store {
	if nextWindow <= 0 {
		nextWindow = DefaultNextWindow
	}
	return &gormStore{db: db, notifier: notifier, nextWindow: nextWindow}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// notifyChanged publishes the affected event id after a successful write.
// Failures to publish are the refresher's problem to heal via its periodic
// sweep, so publication never fails the write.
func (s *gormStore) notifyChanged(ctx context.Context, eventID int64) {
	if s.notifier == nil {
		return
	}
	s.notifier.EventChanged(ctx, eventID)
}

func (s *gormStore) GetEvent(ctx context.Context, id int64) (*model.Event, error) {
	var event model.Event
	err := s.db.WithContext(ctx).First(&event, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event %d: %w", id, err)
	}
	return &event, nil
}

// GetEventAgenda loads an event with its full schedule and roster, ordered by
// session start time. Sessions without times sort last.
func (s *gormStore) GetEventAgenda(ctx context.Context, id int64) (*model.Event, error) {
	var event model.Event
	err := s.db.WithContext(ctx).
		Preload("Sessions", func(db *gorm.DB) *gorm.DB {
			return db.Order("session_time")
		}).
		Preload("SponsorSlots").
		Preload("Attendees").
		Preload("Attendees.Contractor").
		First(&event, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event agenda %d: %w", id, err)
	}
	return &event, nil
}

func (s *gormStore) SetEventStatus(ctx context.Context, id int64, status model.EventStatus) error {
	res := s.db.WithContext(ctx).Model(&model.Event{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update event %d status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

// ListRefreshableEventIDs returns the ids of events whose views are worth
// sweeping: anything not completed whose window has not long passed. The
// trailing slack lets the sweep clear view rows after an event ends.
func (s *gormStore) ListRefreshableEventIDs(ctx context.Context, now time.Time) ([]int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(&model.Event{}).
		Where("status <> ?", model.EventStatusDraft).
		Where("end_time > ?", now.Add(-24*time.Hour)).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list refreshable events: %w", err)
	}
	return ids, nil
}

// ActiveEventForContractor finds an event the contractor is registered for
// whose scheduled window contains now. Returns (nil, nil) when there is none.
func (s *gormStore) ActiveEventForContractor(ctx context.Context, contractorID int64, now time.Time) (*model.Event, error) {
	var event model.Event
	err := s.db.WithContext(ctx).
		Joins("JOIN event_attendees ea ON ea.event_id = events.id").
		Where("ea.contractor_id = ?", contractorID).
		Where("events.start_time <= ? AND events.end_time >= ?", now, now).
		Order("events.start_time").
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up active event for contractor %d: %w", contractorID, err)
	}
	return &event, nil
}

// AttendeeFor returns the contractor's registration for an event, or
// (nil, nil) when not registered.
func (s *gormStore) AttendeeFor(ctx context.Context, eventID, contractorID int64) (*model.EventAttendee, error) {
	var attendee model.EventAttendee
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND contractor_id = ?", eventID, contractorID).
		First(&attendee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attendee (event %d, contractor %d): %w", eventID, contractorID, err)
	}
	return &attendee, nil
}

func (s *gormStore) ContractorByPhone(ctx context.Context, phone string) (*model.Contractor, error) {
	var contractor model.Contractor
	err := s.db.WithContext(ctx).Where("phone = ?", phone).First(&contractor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrContractorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contractor by phone: %w", err)
	}
	return &contractor, nil
}

func (s *gormStore) SaveSession(ctx context.Context, session *model.Session) error {
	if session.SessionTime != nil && session.SessionEnd != nil && !session.SessionTime.Before(*session.SessionEnd) {
		return fmt.Errorf("session %q: session_time must precede session_end", session.Title)
	}
	if err := s.db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.notifyChanged(ctx, session.EventID)
	return nil
}

func (s *gormStore) DeleteSession(ctx context.Context, id int64) error {
	var session model.Session
	err := s.db.WithContext(ctx).First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fetch session %d for delete: %w", id, err)
	}
	if err := s.db.WithContext(ctx).Delete(&model.Session{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete session %d: %w", id, err)
	}
	s.notifyChanged(ctx, session.EventID)
	return nil
}

func (s *gormStore) SaveAttendee(ctx context.Context, attendee *model.EventAttendee) error {
	if err := s.db.WithContext(ctx).Save(attendee).Error; err != nil {
		return fmt.Errorf("failed to save attendee: %w", err)
	}
	s.notifyChanged(ctx, attendee.EventID)
	return nil
}

func (s *gormStore) AppendConciergeLog(ctx context.Context, entry *model.ConciergeLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append concierge log: %w", err)
	}
	return nil
}

func (s *gormStore) ConciergeLogsSince(ctx context.Context, since time.Time) ([]model.ConciergeLog, error) {
	var logs []model.ConciergeLog
	err := s.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch concierge logs: %w", err)
	}
	return logs, nil
}
