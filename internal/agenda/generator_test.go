package agenda

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"power100-experience-backend/config"
	"power100-experience-backend/internal/db"
	"power100-experience-backend/internal/model"
	"power100-experience-backend/internal/store"
)

func testTimeline() config.TimelineConfig {
	return config.TimelineConfig{
		SpeakerAlertLeadMinutes: 15,
		PCRDelayMinutes:         7,
		SponsorRecDelayMinutes:  2,
		PeerMatchLeadMinutes:    30,
		LookaheadMinutes:        60,
		AcceleratedFactor:       10,
	}
}

func setupStore(t *testing.T) store.Store {
	testDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(testDB))
	return store.NewGormStore(testDB, nil, 0)
}

func ts(t time.Time) *time.Time { return &t }

// seedEvent builds a 5-hour event (09:00-14:00 UTC) with four sessions, one
// 15-minute break, a one-hour lunch gap, a 10-minute transition, one sponsor
// and the given contractors registered with SMS opt-in.
func seedEvent(t *testing.T, s store.Store, contractorIDs ...int64) *model.Event {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	event := &model.Event{
		ID:        1,
		Name:      "Power100 Summit",
		Status:    model.EventStatusDraft,
		StartTime: start,
		EndTime:   start.Add(5 * time.Hour),
		Timezone:  "UTC",
	}
	require.NoError(t, s.DB().Create(event).Error)

	sessions := []model.Session{
		{ID: 10, EventID: 1, Title: "Opening Keynote", SpeakerName: "Greg", Location: "Main Hall",
			SessionTime: ts(start.Add(30 * time.Minute)), SessionEnd: ts(start.Add(75 * time.Minute))},
		{ID: 11, EventID: 1, Title: "Scaling Sales", SpeakerName: "Dana", Location: "Room A",
			SessionTime: ts(start.Add(90 * time.Minute)), SessionEnd: ts(start.Add(135 * time.Minute))},
		{ID: 12, EventID: 1, Title: "Hiring Playbook", SpeakerName: "Lee", Location: "Room B",
			SessionTime: ts(start.Add(195 * time.Minute)), SessionEnd: ts(start.Add(240 * time.Minute))},
		{ID: 13, EventID: 1, Title: "Closing Panel", SpeakerName: "Pat", Location: "Main Hall",
			SessionTime: ts(start.Add(250 * time.Minute)), SessionEnd: ts(start.Add(295 * time.Minute))},
	}
	require.NoError(t, s.DB().Create(&sessions).Error)

	sponsor := &model.SponsorSlot{ID: 20, EventID: 1, SponsorName: "RoofPro", BoothNumber: "B4"}
	require.NoError(t, s.DB().Create(sponsor).Error)

	for _, cid := range contractorIDs {
		contractor := &model.Contractor{ID: cid, Name: "Contractor", Phone: phoneFor(cid)}
		require.NoError(t, s.DB().Create(contractor).Error)
		attendee := &model.EventAttendee{EventID: 1, ContractorID: cid, SMSOptIn: true}
		require.NoError(t, s.DB().Create(attendee).Error)
	}
	return event
}

func phoneFor(cid int64) string {
	return fmt.Sprintf("+1555000%04d", cid)
}

func TestGenerateUnknownEvent(t *testing.T) {
	s := setupStore(t)
	g := NewGenerator(s, testTimeline())

	_, err := g.Generate(context.Background(), 999, false)
	assert.ErrorIs(t, err, store.ErrEventNotFound)
}

func TestGenerateZeroAttendees(t *testing.T) {
	s := setupStore(t)
	event := seedEvent(t, s) // no contractors registered
	g := NewGenerator(s, testTimeline())

	summary, err := g.Generate(context.Background(), event.ID, false)
	require.NoError(t, err)

	// Agendas may be generated before registration closes: zero counts, no
	// error, batch times still computed.
	assert.Zero(t, summary.CheckInReminders)
	assert.Zero(t, summary.SpeakerAlerts)
	assert.Zero(t, summary.PCRRequests)
	assert.False(t, summary.SponsorBatchCheckTime.IsZero())
	assert.False(t, summary.OverallPCRTime.IsZero())
}

func TestGenerateRealTimeCounts(t *testing.T) {
	s := setupStore(t)
	event := seedEvent(t, s, 100, 101)
	g := NewGenerator(s, testTimeline())

	summary, err := g.Generate(context.Background(), event.ID, false)
	require.NoError(t, err)

	// Per attendee: 3 countdown reminders, 4 speaker alerts, 4 PCR requests,
	// 3 sponsor recommendations (15m break, lunch, 10m transition), 1 peer
	// match (lunch is the networking window), 1 sponsor batch, 1 overall PCR.
	assert.Equal(t, 6, summary.CheckInReminders)
	assert.Equal(t, 8, summary.SpeakerAlerts)
	assert.Equal(t, 8, summary.PCRRequests)
	assert.Equal(t, 6, summary.SponsorRecommendations)
	assert.Equal(t, 2, summary.PeerMatchPrompts)
	assert.Equal(t, 2, summary.SponsorBatchChecks)
	assert.Equal(t, 2, summary.OverallPCRRequests)
	assert.Zero(t, summary.SkippedSessions)

	// Batch-level times sit after event end.
	assert.True(t, summary.SponsorBatchCheckTime.After(event.EndTime))
	assert.True(t, summary.OverallPCRTime.After(summary.SponsorBatchCheckTime))

	// The run flips a draft event to upcoming.
	refreshed, err := s.GetEvent(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventStatusUpcoming, refreshed.Status)

	pending, err := s.CountPendingMessages(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(34), pending)
}

func TestGenerateSpeakerAlertTiming(t *testing.T) {
	s := setupStore(t)
	event := seedEvent(t, s, 100)
	g := NewGenerator(s, testTimeline())

	_, err := g.Generate(context.Background(), event.ID, false)
	require.NoError(t, err)

	var alert model.OrchestrationMessage
	require.NoError(t, s.DB().
		Where("message_type = ? AND session_id = ?", model.MessageTypeSpeakerAlert, 10).
		First(&alert).Error)

	// Session 10 starts at 09:30; alert leads by 15 minutes.
	want := event.StartTime.Add(15 * time.Minute)
	assert.True(t, alert.ScheduledSendTime.Equal(want),
		"speaker alert at %v, want %v", alert.ScheduledSendTime, want)
}

func TestGenerateAcceleratedCompressesOffsets(t *testing.T) {
	s := setupStore(t)
	event := seedEvent(t, s, 100)
	g := NewGenerator(s, testTimeline())

	summary, err := g.Generate(context.Background(), event.ID, true)
	require.NoError(t, err)
	assert.True(t, summary.Accelerated)

	// Counts are identical to real time: same scheduling logic, compressed.
	assert.Equal(t, 4, summary.SpeakerAlerts)
	assert.Equal(t, 4, summary.PCRRequests)

	// Session 10's alert sits at offset 15min in real time; with factor 10 it
	// lands 1.5 minutes after event start.
	var alert model.OrchestrationMessage
	require.NoError(t, s.DB().
		Where("message_type = ? AND session_id = ?", model.MessageTypeSpeakerAlert, 10).
		First(&alert).Error)
	want := event.StartTime.Add(90 * time.Second)
	assert.True(t, alert.ScheduledSendTime.Equal(want),
		"accelerated alert at %v, want %v", alert.ScheduledSendTime, want)

	// The whole message timeline (pre-event countdown aside) compresses into
	// roughly a tenth of the real 5-hour span.
	var last model.OrchestrationMessage
	require.NoError(t, s.DB().
		Where("event_id = ?", event.ID).
		Order("scheduled_send_time DESC").
		First(&last).Error)
	assert.True(t, last.ScheduledSendTime.Before(event.StartTime.Add(40*time.Minute)))
}

func TestGenerateIsBuildOnce(t *testing.T) {
	s := setupStore(t)
	event := seedEvent(t, s, 100)
	g := NewGenerator(s, testTimeline())

	_, err := g.Generate(context.Background(), event.ID, false)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), event.ID, false)
	assert.ErrorIs(t, err, store.ErrAgendaExists)

	// The duplicate run must not have added rows.
	pending, err := s.CountPendingMessages(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(17), pending)
}

func TestGenerateSkipsSessionsWithoutTimes(t *testing.T) {
	s := setupStore(t)
	event := seedEvent(t, s, 100)

	// A session that arrived without usable times stays on the agenda but is
	// excluded from time-triggered scheduling.
	untimed := &model.Session{ID: 14, EventID: 1, Title: "TBD Fireside"}
	require.NoError(t, s.DB().Create(untimed).Error)

	g := NewGenerator(s, testTimeline())
	summary, err := g.Generate(context.Background(), event.ID, false)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.SpeakerAlerts)
	assert.Equal(t, 1, summary.SkippedSessions)

	var count int64
	require.NoError(t, s.DB().Model(&model.OrchestrationMessage{}).
		Where("session_id = ?", untimed.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGenerateHonorsSMSOptOut(t *testing.T) {
	s := setupStore(t)
	event := seedEvent(t, s, 100)

	optedOut := &model.Contractor{ID: 200, Name: "Quiet", Phone: "+15550009999"}
	require.NoError(t, s.DB().Create(optedOut).Error)
	require.NoError(t, s.DB().Create(&model.EventAttendee{EventID: 1, ContractorID: 200, SMSOptIn: false}).Error)

	g := NewGenerator(s, testTimeline())
	summary, err := g.Generate(context.Background(), event.ID, false)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.SpeakerAlerts)

	var count int64
	require.NoError(t, s.DB().Model(&model.OrchestrationMessage{}).
		Where("contractor_id = ?", 200).Count(&count).Error)
	assert.Zero(t, count)
}
