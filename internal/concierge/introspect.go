package concierge

import (
	"fmt"
	"strings"
)

// TransitionMeta is one transition row in serializable form.
type TransitionMeta struct {
	From  string `json:"from"`
	On    string `json:"on"`
	Guard string `json:"guard"`
	To    string `json:"to"`
}

// Metadata is the structured description of the machine configuration for
// monitoring dashboards.
type Metadata struct {
	Initial     string           `json:"initial"`
	States      []string         `json:"states"`
	Events      []string         `json:"events"`
	Guards      []string         `json:"guards"`
	Transitions []TransitionMeta `json:"transitions"`
}

// Metadata derives the structured machine description. Purely read-only over
// the declarative configuration; it encodes no routing logic of its own.
func (m *Machine) Metadata() Metadata {
	meta := Metadata{Initial: string(m.Initial)}

	for _, s := range m.States {
		meta.States = append(meta.States, string(s))
	}

	seenEvents := make(map[string]bool)
	seenGuards := make(map[string]bool)
	for _, t := range m.Transitions {
		meta.Transitions = append(meta.Transitions, TransitionMeta{
			From:  string(t.From),
			On:    string(t.On),
			Guard: t.Guard.Name,
			To:    string(t.To),
		})
		if !seenEvents[string(t.On)] {
			seenEvents[string(t.On)] = true
			meta.Events = append(meta.Events, string(t.On))
		}
		if !seenGuards[t.Guard.Name] {
			seenGuards[t.Guard.Name] = true
			meta.Guards = append(meta.Guards, t.Guard.Name)
		}
	}
	return meta
}

// Diagram renders the machine as Mermaid stateDiagram-v2 source, derived
// entirely from the transition table.
func (m *Machine) Diagram() string {
	var b strings.Builder
	b.WriteString("stateDiagram-v2\n")
	fmt.Fprintf(&b, "    [*] --> %s\n", m.Initial)
	for _, t := range m.Transitions {
		fmt.Fprintf(&b, "    %s --> %s: %s [%s]\n", t.From, t.To, t.On, t.Guard.Name)
	}
	return b.String()
}
