package concierge

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"power100-experience-backend/internal/model"
)

// ContextStore is the slice of the store the router needs.
type ContextStore interface {
	ActiveEventForContractor(ctx context.Context, contractorID int64, now time.Time) (*model.Event, error)
	AttendeeFor(ctx context.Context, eventID, contractorID int64) (*model.EventAttendee, error)
	SessionsNow(ctx context.Context, contractorID int64) ([]model.SessionNowView, error)
	SessionsNext(ctx context.Context, contractorID int64) ([]model.SessionNextView, error)
	AppendConciergeLog(ctx context.Context, entry *model.ConciergeLog) error
}

// Reply is the routed outcome for one inbound message: which agent answers
// and what event context gets injected into the response. Body is a
// templated acknowledgement; the natural-language reply itself is produced by
// an external AI collaborator fed with this context.
type Reply struct {
	Agent        State                   `json:"agent"`
	Body         string                  `json:"body"`
	Event        *model.Event            `json:"event,omitempty"`
	CheckedIn    bool                    `json:"checked_in"`
	SessionsNow  []model.SessionNowView  `json:"sessions_now,omitempty"`
	SessionsNext []model.SessionNextView `json:"sessions_next,omitempty"`
}

// Router runs the state machine for each inbound message.
type Router struct {
	machine *Machine
	store   ContextStore
	now     func() time.Time
}

// NewRouter creates a router over the shared machine configuration.
func NewRouter(machine *Machine, store ContextStore) *Router {
	return &Router{machine: machine, store: store, now: time.Now}
}

// Machine exposes the declarative configuration for introspection endpoints.
func (r *Router) Machine() *Machine {
	return r.machine
}

// Route processes one inbound message: enter routing, resolve event context,
// land on an agent state, and assemble the context-bearing reply. A failing
// event-context lookup degrades to the standard agent; a contractor texting
// in always gets some reply.
func (r *Router) Route(ctx context.Context, contractor *model.Contractor, body string) (*Reply, error) {
	now := r.now()

	state, ok := r.machine.Next(StateIdle, TriggerMessageReceived, RouteContext{})
	if !ok || state != StateRouting {
		return nil, fmt.Errorf("machine misconfigured: no transition into %s", StateRouting)
	}

	event, lookupErr := r.store.ActiveEventForContractor(ctx, contractor.ID, now)
	if lookupErr != nil {
		log.Printf("Event-context lookup failed for contractor %d, routing to standard agent: %v", contractor.ID, lookupErr)
	}
	rc := RouteContext{HasActiveEvent: event != nil, LookupErr: lookupErr}

	state, ok = r.machine.Next(state, TriggerRouteResolved, rc)
	if !ok {
		return nil, fmt.Errorf("machine misconfigured: routing resolved nowhere")
	}

	reply := &Reply{Agent: state}
	switch state {
	case StateEventAgent:
		r.injectEventContext(ctx, contractor, event, reply)
	default:
		reply.Body = fmt.Sprintf("Hi %s! What can I help your business with today?", firstName(contractor.Name))
	}

	r.logExchange(ctx, contractor.ID, event, body, reply)
	return reply, nil
}

// injectEventContext fills the reply with the session and check-in context
// the event agent speaks from. Context reads come from the eventually
// consistent view tables; a small staleness window beats blocking on a fresh
// recompute, and a read failure just means a thinner reply.
func (r *Router) injectEventContext(ctx context.Context, contractor *model.Contractor, event *model.Event, reply *Reply) {
	reply.Event = event

	if attendee, err := r.store.AttendeeFor(ctx, event.ID, contractor.ID); err != nil {
		log.Printf("Check-in lookup failed for contractor %d at event %d: %v", contractor.ID, event.ID, err)
	} else if attendee != nil {
		reply.CheckedIn = attendee.CheckedIn
	}

	if rows, err := r.store.SessionsNow(ctx, contractor.ID); err != nil {
		log.Printf("Session-now read failed for contractor %d: %v", contractor.ID, err)
	} else {
		reply.SessionsNow = rows
	}
	if rows, err := r.store.SessionsNext(ctx, contractor.ID); err != nil {
		log.Printf("Session-next read failed for contractor %d: %v", contractor.ID, err)
	} else {
		reply.SessionsNext = rows
	}

	switch {
	case len(reply.SessionsNow) > 0:
		top := reply.SessionsNow[0]
		reply.Body = fmt.Sprintf("You're at %s! Happening now: %q in %s. What do you need?", event.Name, top.Title, top.Location)
	case len(reply.SessionsNext) > 0:
		top := reply.SessionsNext[0]
		reply.Body = fmt.Sprintf("You're at %s! Starting in %d min: %q in %s. What do you need?", event.Name, top.MinutesUntilStart, top.Title, top.Location)
	default:
		reply.Body = fmt.Sprintf("You're at %s! Ask me anything about the event or your business.", event.Name)
	}
}

// logExchange records both legs for the monitoring endpoints. Logging
// failures never block the reply path.
func (r *Router) logExchange(ctx context.Context, contractorID int64, event *model.Event, inbound string, reply *Reply) {
	now := r.now()
	var eventID int64
	if event != nil {
		eventID = event.ID
	}

	entries := []*model.ConciergeLog{
		{
			ID:           uuid.NewString(),
			ContractorID: contractorID,
			EventID:      eventID,
			Direction:    model.DirectionInbound,
			Body:         inbound,
			CreatedAt:    now,
		},
		{
			ID:           uuid.NewString(),
			ContractorID: contractorID,
			EventID:      eventID,
			Direction:    model.DirectionOutbound,
			Agent:        string(reply.Agent),
			Body:         reply.Body,
			CreatedAt:    now,
		},
	}
	for _, entry := range entries {
		if err := r.store.AppendConciergeLog(ctx, entry); err != nil {
			log.Printf("Failed to append concierge log for contractor %d: %v", contractorID, err)
		}
	}
}

func firstName(full string) string {
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	if full == "" {
		return "there"
	}
	return full
}
