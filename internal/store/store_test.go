package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"power100-experience-backend/internal/db"
	"power100-experience-backend/internal/model"
)

// recordingNotifier captures published event ids for assertion.
type recordingNotifier struct {
	mu       sync.Mutex
	eventIDs []int64
}

func (n *recordingNotifier) EventChanged(_ context.Context, eventID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.eventIDs = append(n.eventIDs, eventID)
}

func (n *recordingNotifier) published() []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]int64(nil), n.eventIDs...)
}

func setupNotifyingStore(t *testing.T) (Store, *recordingNotifier) {
	testDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(testDB))
	notifier := &recordingNotifier{}
	return NewGormStore(testDB, notifier, 0), notifier
}

func seedBareEvent(t *testing.T, s Store, id int64, status model.EventStatus, start, end time.Time) {
	event := &model.Event{
		ID:        id,
		Name:      "Power100 Summit",
		Status:    status,
		StartTime: start,
		EndTime:   end,
		Timezone:  "UTC",
	}
	require.NoError(t, s.DB().Create(event).Error)
}

func TestGetEventNotFound(t *testing.T) {
	s, _ := setupNotifyingStore(t)
	_, err := s.GetEvent(context.Background(), 404)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestSetEventStatus(t *testing.T) {
	s, _ := setupNotifyingStore(t)
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	seedBareEvent(t, s, 1, model.EventStatusDraft, start, start.Add(8*time.Hour))
	ctx := context.Background()

	require.NoError(t, s.SetEventStatus(ctx, 1, model.EventStatusUpcoming))
	event, err := s.GetEvent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusUpcoming, event.Status)

	assert.ErrorIs(t, s.SetEventStatus(ctx, 404, model.EventStatusActive), ErrEventNotFound)
}

func TestSessionWritesPublishChanges(t *testing.T) {
	s, notifier := setupNotifyingStore(t)
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	seedBareEvent(t, s, 7, model.EventStatusUpcoming, start, start.Add(8*time.Hour))
	ctx := context.Background()

	st, en := start.Add(time.Hour), start.Add(2*time.Hour)
	session := &model.Session{ID: 10, EventID: 7, Title: "Opening Keynote", SessionTime: &st, SessionEnd: &en}
	require.NoError(t, s.SaveSession(ctx, session))
	require.NoError(t, s.DeleteSession(ctx, session.ID))
	assert.Equal(t, []int64{7, 7}, notifier.published())

	// Deleting a session that is already gone publishes nothing.
	require.NoError(t, s.DeleteSession(ctx, session.ID))
	assert.Equal(t, []int64{7, 7}, notifier.published())
}

func TestSaveSessionRejectsInvertedWindow(t *testing.T) {
	s, notifier := setupNotifyingStore(t)
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	seedBareEvent(t, s, 7, model.EventStatusUpcoming, start, start.Add(8*time.Hour))

	st, en := start.Add(2*time.Hour), start.Add(time.Hour)
	session := &model.Session{EventID: 7, Title: "Backwards", SessionTime: &st, SessionEnd: &en}
	err := s.SaveSession(context.Background(), session)
	assert.Error(t, err)
	assert.Empty(t, notifier.published())
}

func TestSaveAttendeePublishesChange(t *testing.T) {
	s, notifier := setupNotifyingStore(t)
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	seedBareEvent(t, s, 3, model.EventStatusUpcoming, start, start.Add(8*time.Hour))
	ctx := context.Background()

	contractor := &model.Contractor{ID: 100, Name: "Alex Rivera", Phone: "+15550001234"}
	require.NoError(t, s.DB().Create(contractor).Error)
	require.NoError(t, s.SaveAttendee(ctx, &model.EventAttendee{EventID: 3, ContractorID: 100, SMSOptIn: true}))
	assert.Equal(t, []int64{3}, notifier.published())
}

func TestListRefreshableEventIDs(t *testing.T) {
	s, _ := setupNotifyingStore(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	seedBareEvent(t, s, 1, model.EventStatusActive, now.Add(-2*time.Hour), now.Add(2*time.Hour))
	seedBareEvent(t, s, 2, model.EventStatusDraft, now.Add(-2*time.Hour), now.Add(2*time.Hour))
	// Ended recently: still swept so its view rows get cleared.
	seedBareEvent(t, s, 3, model.EventStatusCompleted, now.Add(-10*time.Hour), now.Add(-6*time.Hour))
	// Ended long ago: out of the sweep set.
	seedBareEvent(t, s, 4, model.EventStatusCompleted, now.Add(-72*time.Hour), now.Add(-64*time.Hour))

	ids, err := s.ListRefreshableEventIDs(context.Background(), now)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 3}, ids)
}

func TestActiveEventForContractor(t *testing.T) {
	s, _ := setupNotifyingStore(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	seedBareEvent(t, s, 1, model.EventStatusActive, now.Add(-time.Hour), now.Add(time.Hour))
	seedBareEvent(t, s, 2, model.EventStatusUpcoming, now.Add(24*time.Hour), now.Add(30*time.Hour))

	contractor := &model.Contractor{ID: 100, Name: "Alex Rivera", Phone: "+15550001234"}
	require.NoError(t, s.DB().Create(contractor).Error)

	// Registered only for the future event: no active event right now.
	require.NoError(t, s.DB().Create(&model.EventAttendee{EventID: 2, ContractorID: 100}).Error)
	event, err := s.ActiveEventForContractor(ctx, 100, now)
	require.NoError(t, err)
	assert.Nil(t, event)

	require.NoError(t, s.DB().Create(&model.EventAttendee{EventID: 1, ContractorID: 100}).Error)
	event, err = s.ActiveEventForContractor(ctx, 100, now)
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, int64(1), event.ID)
}

func TestAttendeeFor(t *testing.T) {
	s, _ := setupNotifyingStore(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	seedBareEvent(t, s, 1, model.EventStatusActive, now.Add(-time.Hour), now.Add(time.Hour))
	ctx := context.Background()

	contractor := &model.Contractor{ID: 100, Name: "Alex Rivera", Phone: "+15550001234"}
	require.NoError(t, s.DB().Create(contractor).Error)
	require.NoError(t, s.DB().Create(&model.EventAttendee{EventID: 1, ContractorID: 100, CheckedIn: true}).Error)

	attendee, err := s.AttendeeFor(ctx, 1, 100)
	require.NoError(t, err)
	require.NotNil(t, attendee)
	assert.True(t, attendee.CheckedIn)

	attendee, err = s.AttendeeFor(ctx, 1, 999)
	require.NoError(t, err)
	assert.Nil(t, attendee)
}

func TestContractorByPhone(t *testing.T) {
	s, _ := setupNotifyingStore(t)
	contractor := &model.Contractor{ID: 100, Name: "Alex Rivera", Phone: "+15550001234"}
	require.NoError(t, s.DB().Create(contractor).Error)
	ctx := context.Background()

	got, err := s.ContractorByPhone(ctx, "+15550001234")
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.ID)

	_, err = s.ContractorByPhone(ctx, "+15559990000")
	assert.ErrorIs(t, err, ErrContractorNotFound)
}

func TestCreateOrchestrationMessagesRejectsDuplicates(t *testing.T) {
	s, _ := setupNotifyingStore(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	seedBareEvent(t, s, 1, model.EventStatusUpcoming, now, now.Add(8*time.Hour))
	ctx := context.Background()

	msgs := []model.OrchestrationMessage{
		{EventID: 1, MessageType: model.MessageTypeSpeakerAlert, ContractorID: 100, SessionID: 10,
			Status: model.MessageStatusPending, ScheduledSendTime: now.Add(time.Hour)},
		{EventID: 1, MessageType: model.MessageTypePCRRequest, ContractorID: 100, SessionID: 10,
			Status: model.MessageStatusPending, ScheduledSendTime: now.Add(2 * time.Hour)},
	}
	require.NoError(t, s.CreateOrchestrationMessages(ctx, msgs))

	// A second run into the same identity space fails as a whole, leaving
	// the original batch untouched.
	retry := []model.OrchestrationMessage{
		{EventID: 1, MessageType: model.MessageTypeSpeakerAlert, ContractorID: 100, SessionID: 10,
			Status: model.MessageStatusPending, ScheduledSendTime: now.Add(time.Hour)},
	}
	assert.ErrorIs(t, s.CreateOrchestrationMessages(ctx, retry), ErrAgendaExists)

	pending, err := s.CountPendingMessages(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending)
}

func TestConciergeLogsSince(t *testing.T) {
	s, _ := setupNotifyingStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	old := &model.ConciergeLog{ID: "log-old", ContractorID: 100, Direction: model.DirectionInbound,
		Body: "old", CreatedAt: now.Add(-48 * time.Hour)}
	recent := &model.ConciergeLog{ID: "log-recent", ContractorID: 100, Direction: model.DirectionInbound,
		Body: "recent", CreatedAt: now.Add(-time.Hour)}
	require.NoError(t, s.AppendConciergeLog(ctx, old))
	require.NoError(t, s.AppendConciergeLog(ctx, recent))

	logs, err := s.ConciergeLogsSince(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "log-recent", logs[0].ID)
}
