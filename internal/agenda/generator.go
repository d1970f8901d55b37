// Package agenda builds the orchestration message timeline for an event:
// check-in reminders counting down to the start, per-session speaker alerts
// and PCR requests, sponsor recommendations during breaks, one peer-matching
// prompt before the networking window, and the end-of-day batch sends.
package agenda

import (
	"context"
	"fmt"
	"sort"
	"time"

	"power100-experience-backend/config"
	"power100-experience-backend/internal/model"
	"power100-experience-backend/internal/store"
)

// Batch-send offsets relative to event end.
const (
	sponsorBatchDelay = 10 * time.Minute
	overallPCRDelay   = 15 * time.Minute
)

// A break shorter than this is a room transition, not a sponsor window.
const minBreakLength = 10 * time.Minute

// A break at least this long is treated as the networking window (lunch).
const minNetworkingLength = 20 * time.Minute

// Summary reports what one generation run created, so callers can verify
// completeness without re-querying.
type Summary struct {
	EventID                int64     `json:"event_id"`
	Accelerated            bool      `json:"accelerated"`
	CheckInReminders       int       `json:"check_in_reminders"`
	SpeakerAlerts          int       `json:"speaker_alerts"`
	SponsorRecommendations int       `json:"sponsor_recommendations"`
	PCRRequests            int       `json:"pcr_requests"`
	PeerMatchPrompts       int       `json:"peer_match_prompts"`
	SponsorBatchChecks     int       `json:"sponsor_batch_checks"`
	OverallPCRRequests     int       `json:"overall_pcr_requests"`
	SkippedSessions        int       `json:"skipped_sessions"`
	SponsorBatchCheckTime  time.Time `json:"sponsor_batch_check_time"`
	OverallPCRTime         time.Time `json:"overall_pcr_time"`
}

// Generator schedules orchestration messages for an event.
type Generator struct {
	store store.Store
	cfg   config.TimelineConfig
}

// NewGenerator creates a generator using the configured timeline offsets.
func NewGenerator(s store.Store, cfg config.TimelineConfig) *Generator {
	return &Generator{store: s, cfg: cfg}
}

// Generate builds the complete set of time-triggered messages for the event
// and bulk-inserts them. Accelerated mode divides every offset from event
// start by the configured factor; real-time and accelerated runs share this
// one code path, so the test timeline exercises the same scheduling logic,
// just compressed.
//
// Re-running for the same event fails with store.ErrAgendaExists: generation
// is build-once, duplicate SMS sends are a user-facing harm.
func (g *Generator) Generate(ctx context.Context, eventID int64, accelerated bool) (*Summary, error) {
	event, err := g.store.GetEventAgenda(ctx, eventID)
	if err != nil {
		return nil, err
	}

	factor := 1.0
	if accelerated {
		factor = g.cfg.AcceleratedFactor
	}
	// at maps a real-time instant onto the (possibly compressed) timeline by
	// scaling its offset from event start.
	at := func(realTime time.Time) time.Time {
		offset := realTime.Sub(event.StartTime)
		return event.StartTime.Add(time.Duration(float64(offset) / factor))
	}

	summary := &Summary{
		EventID:               eventID,
		Accelerated:           accelerated,
		SponsorBatchCheckTime: at(event.EndTime.Add(sponsorBatchDelay)),
		OverallPCRTime:        at(event.EndTime.Add(overallPCRDelay)),
	}

	timed, skipped := splitSessions(event.Sessions)
	summary.SkippedSessions = skipped
	breaks := findBreaks(timed)
	networking := pickNetworkingWindow(breaks)

	var msgs []model.OrchestrationMessage
	add := func(m model.OrchestrationMessage) {
		m.EventID = eventID
		m.Status = model.MessageStatusPending
		msgs = append(msgs, m)
	}

	speakerLead := time.Duration(g.cfg.SpeakerAlertLeadMinutes) * time.Minute
	pcrDelay := time.Duration(g.cfg.PCRDelayMinutes) * time.Minute
	sponsorDelay := time.Duration(g.cfg.SponsorRecDelayMinutes) * time.Minute
	peerLead := time.Duration(g.cfg.PeerMatchLeadMinutes) * time.Minute

	for _, attendee := range event.Attendees {
		if !attendee.SMSOptIn {
			continue
		}
		cid := attendee.ContractorID

		// Countdown reminders at T-2min, T-1min and event start. The slot
		// ordinal keys the idempotency index for session-less messages.
		for slot, lead := range []time.Duration{2 * time.Minute, time.Minute, 0} {
			add(model.OrchestrationMessage{
				MessageType:       model.MessageTypeCheckInReminder,
				ContractorID:      cid,
				SessionID:         int64(slot + 1),
				ScheduledSendTime: at(event.StartTime.Add(-lead)),
				Body:              fmt.Sprintf("%s is almost here! Reply CHECKIN when you arrive.", event.Name),
			})
			summary.CheckInReminders++
		}

		for _, session := range timed {
			add(model.OrchestrationMessage{
				MessageType:       model.MessageTypeSpeakerAlert,
				ContractorID:      cid,
				SessionID:         session.ID,
				ScheduledSendTime: at(session.SessionTime.Add(-speakerLead)),
				Body:              fmt.Sprintf("Up next: %s with %s at %s.", session.Title, session.SpeakerName, session.Location),
			})
			summary.SpeakerAlerts++

			add(model.OrchestrationMessage{
				MessageType:       model.MessageTypePCRRequest,
				ContractorID:      cid,
				SessionID:         session.ID,
				ScheduledSendTime: at(session.SessionEnd.Add(pcrDelay)),
				Body:              fmt.Sprintf("How was %q? Rate it 1-10.", session.Title),
			})
			summary.PCRRequests++
		}

		for i, brk := range breaks {
			sponsor := pickSponsor(event.SponsorSlots, i)
			if sponsor == nil {
				continue
			}
			add(model.OrchestrationMessage{
				MessageType:       model.MessageTypeSponsorRec,
				ContractorID:      cid,
				SessionID:         brk.afterSessionID,
				ScheduledSendTime: at(brk.start.Add(sponsorDelay)),
				Body:              fmt.Sprintf("Break time! Visit %s at booth %s.", sponsor.SponsorName, sponsor.BoothNumber),
			})
			summary.SponsorRecommendations++
		}

		if networking != nil {
			add(model.OrchestrationMessage{
				MessageType:       model.MessageTypePeerMatch,
				ContractorID:      cid,
				ScheduledSendTime: at(networking.start.Add(-peerLead)),
				Body:              "We found contractors you should meet over lunch. Reply MATCH to see who.",
			})
			summary.PeerMatchPrompts++
		}

		add(model.OrchestrationMessage{
			MessageType:       model.MessageTypeSponsorBatch,
			ContractorID:      cid,
			ScheduledSendTime: summary.SponsorBatchCheckTime,
			Body:              "Which sponsors did you connect with today? Reply with their names.",
		})
		summary.SponsorBatchChecks++

		add(model.OrchestrationMessage{
			MessageType:       model.MessageTypeOverallPCR,
			ContractorID:      cid,
			ScheduledSendTime: summary.OverallPCRTime,
			Body:              fmt.Sprintf("That's a wrap on %s! How was the event overall, 1-10?", event.Name),
		})
		summary.OverallPCRRequests++
	}

	if err := g.store.CreateOrchestrationMessages(ctx, msgs); err != nil {
		return nil, err
	}

	if event.Status == model.EventStatusDraft {
		if err := g.store.SetEventStatus(ctx, eventID, model.EventStatusUpcoming); err != nil {
			return nil, fmt.Errorf("agenda generated but event status update failed: %w", err)
		}
	}

	return summary, nil
}

// timedSession is a session with both window bounds present and valid.
type timedSession struct {
	ID          int64
	Title       string
	SpeakerName string
	Location    string
	SessionTime time.Time
	SessionEnd  time.Time
}

// splitSessions separates sessions with usable time windows from the rest.
// Malformed sessions still appear on the agenda; they are only excluded from
// time-triggered scheduling.
func splitSessions(sessions []model.Session) ([]timedSession, int) {
	var timed []timedSession
	skipped := 0
	for _, s := range sessions {
		if !s.HasValidWindow() {
			skipped++
			continue
		}
		timed = append(timed, timedSession{
			ID:          s.ID,
			Title:       s.Title,
			SpeakerName: s.SpeakerName,
			Location:    s.Location,
			SessionTime: *s.SessionTime,
			SessionEnd:  *s.SessionEnd,
		})
	}
	sort.Slice(timed, func(i, j int) bool { return timed[i].SessionTime.Before(timed[j].SessionTime) })
	return timed, skipped
}

// breakWindow is a gap between two consecutive timed sessions.
type breakWindow struct {
	afterSessionID int64
	start          time.Time
	length         time.Duration
}

func findBreaks(timed []timedSession) []breakWindow {
	var breaks []breakWindow
	for i := 0; i+1 < len(timed); i++ {
		gap := timed[i+1].SessionTime.Sub(timed[i].SessionEnd)
		if gap >= minBreakLength {
			breaks = append(breaks, breakWindow{
				afterSessionID: timed[i].ID,
				start:          timed[i].SessionEnd,
				length:         gap,
			})
		}
	}
	return breaks
}

// pickNetworkingWindow designates the longest sufficiently-long break as the
// networking (lunch) window. Returns nil when the agenda has no such break.
func pickNetworkingWindow(breaks []breakWindow) *breakWindow {
	var best *breakWindow
	for i := range breaks {
		if breaks[i].length < minNetworkingLength {
			continue
		}
		if best == nil || breaks[i].length > best.length {
			best = &breaks[i]
		}
	}
	return best
}

// pickSponsor rotates through sponsor slots so successive breaks feature
// different sponsors.
func pickSponsor(slots []model.SponsorSlot, breakIndex int) *model.SponsorSlot {
	if len(slots) == 0 {
		return nil
	}
	return &slots[breakIndex%len(slots)]
}
