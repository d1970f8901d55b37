// Package concierge routes inbound contractor SMS messages to the right
// agent context. The routing lives in one declarative state machine so the
// diagram and metadata endpoints derive from the same structure that drives
// behavior and can never drift from it.
package concierge

// State is a conversation state of the routing machine.
type State string

const (
	StateIdle          State = "idle"
	StateRouting       State = "routing"
	StateStandardAgent State = "standard_agent"
	StateEventAgent    State = "event_agent"
)

// TriggerEvent names a machine input.
type TriggerEvent string

const (
	// TriggerMessageReceived fires for every inbound message, including from
	// the agent states: routing is re-evaluated per message, never persisted
	// as a long-lived commitment.
	TriggerMessageReceived TriggerEvent = "message_received"
	// TriggerRouteResolved fires once the event-context lookup completed.
	TriggerRouteResolved TriggerEvent = "route_resolved"
)

// RouteContext carries the facts guards are allowed to inspect. Guards never
// see message content; routing depends only on event-context existence.
type RouteContext struct {
	HasActiveEvent bool
	LookupErr      error
}

// Guard is a named, side-effect-free predicate. The name appears verbatim in
// diagrams and metadata.
type Guard struct {
	Name  string
	Check func(RouteContext) bool
}

var (
	// guardHasActiveEvent passes only on a clean lookup that found an event
	// whose window contains now. A lookup error fails the guard, so the
	// machine falls through to the standard agent rather than blocking.
	guardHasActiveEvent = Guard{
		Name:  "has_active_event",
		Check: func(rc RouteContext) bool { return rc.LookupErr == nil && rc.HasActiveEvent },
	}

	guardAlways = Guard{
		Name:  "always",
		Check: func(RouteContext) bool { return true },
	}
)

// Transition is one row of the declarative transition table.
type Transition struct {
	From  State
	On    TriggerEvent
	Guard Guard
	To    State
}

// Machine is the declarative routing configuration. Transitions are matched
// in table order; the first row whose guard passes wins.
type Machine struct {
	Initial     State
	States      []State
	Transitions []Transition
}

// NewMachine builds the concierge routing machine.
func NewMachine() *Machine {
	return &Machine{
		Initial: StateIdle,
		States:  []State{StateIdle, StateRouting, StateStandardAgent, StateEventAgent},
		Transitions: []Transition{
			{From: StateIdle, On: TriggerMessageReceived, Guard: guardAlways, To: StateRouting},
			{From: StateStandardAgent, On: TriggerMessageReceived, Guard: guardAlways, To: StateRouting},
			{From: StateEventAgent, On: TriggerMessageReceived, Guard: guardAlways, To: StateRouting},
			{From: StateRouting, On: TriggerRouteResolved, Guard: guardHasActiveEvent, To: StateEventAgent},
			{From: StateRouting, On: TriggerRouteResolved, Guard: guardAlways, To: StateStandardAgent},
		},
	}
}

// Next returns the target state for (from, on) under rc. The second return is
// false when no transition matched.
func (m *Machine) Next(from State, on TriggerEvent, rc RouteContext) (State, bool) {
	for _, t := range m.Transitions {
		if t.From == from && t.On == on && t.Guard.Check(rc) {
			return t.To, true
		}
	}
	return from, false
}
