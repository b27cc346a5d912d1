package session

import (
	"encoding/json"
	"fmt"
)

// EventKind identifies what an Event changes.
type EventKind string

const (
	EventOA        EventKind = "oa"         // text edit of the OA entry
	EventAB        EventKind = "ab"         // text edit of the AB entry
	EventPeriod    EventKind = "period"     // text edit of the period entry, in seconds
	EventAMPerAB   EventKind = "am_per_ab"  // slider value
	EventProgress  EventKind = "progress"   // manual progress override
	EventAutorun   EventKind = "autorun"    // autorun toggle
	EventTracePath EventKind = "trace_path" // trace visibility toggle
	EventTick      EventKind = "tick"       // frame tick
)

// Event is a single user or scheduler input. Only the field matching Kind is
// meaningful: Text for entry edits, Value for sliders, Flag for toggles.
type Event struct {
	Kind  EventKind `json:"kind"`
	At    float64   `json:"at,omitempty"` // seconds from session start, used by scripted runs
	Text  string    `json:"text,omitempty"`
	Value float64   `json:"value,omitempty"`
	Flag  bool      `json:"flag,omitempty"`
}

// Edit returns a text edit event for an entry kind.
func Edit(kind EventKind, text string) Event { return Event{Kind: kind, Text: text} }

// Slide returns a slider event.
func Slide(kind EventKind, value float64) Event { return Event{Kind: kind, Value: value} }

// Toggle returns a checkbox event.
func Toggle(kind EventKind, on bool) Event { return Event{Kind: kind, Flag: on} }

// Tick returns a frame tick event.
func Tick() Event { return Event{Kind: EventTick} }

func (k EventKind) valid() bool {
	switch k {
	case EventOA, EventAB, EventPeriod, EventAMPerAB, EventProgress,
		EventAutorun, EventTracePath, EventTick:
		return true
	}
	return false
}

// UnmarshalJSON implements json.Unmarshaler for Event, rejecting unknown kinds.
func (e *Event) UnmarshalJSON(data []byte) error {
	type rawEvent Event
	var aux rawEvent
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if !aux.Kind.valid() {
		return fmt.Errorf("unknown event kind %q", aux.Kind)
	}
	*e = Event(aux)
	return nil
}
