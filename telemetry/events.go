// Package telemetry provides collision statistics, perf timing, bookmarks and snapshots.
package telemetry

import "gonum.org/v1/gonum/spatial/r2"

// EventType identifies telemetry events.
type EventType string

const (
	EventLaunch      EventType = "launch"
	EventStick       EventType = "stick"
	EventDespawn     EventType = "despawn"
	EventPickup      EventType = "pickup"
	EventRoomAdvance EventType = "room_advance"
	EventDamage      EventType = "damage"
)

// Event represents a single gameplay event, written one per row to events.csv.
type Event struct {
	Type     EventType `csv:"type"`
	Tick     int64     `csv:"tick"`
	EntityID uint32    `csv:"entity"`
	OtherID  uint32    `csv:"other"`
	X        float64   `csv:"x"`
	Y        float64   `csv:"y"`
	Strength float64   `csv:"strength"` // impact or launch speed, when it applies
}

// NewEvent creates an event at pos.
func NewEvent(typ EventType, tick int64, entityID uint32, pos r2.Vec) Event {
	return Event{
		Type:     typ,
		Tick:     tick,
		EntityID: entityID,
		X:        pos.X,
		Y:        pos.Y,
	}
}

// With returns a copy of the event naming the other party and a strength.
func (e Event) With(otherID uint32, strength float64) Event {
	e.OtherID = otherID
	e.Strength = strength
	return e
}

// EventLog buffers events between flushes.
type EventLog struct {
	events []Event
}

// Add appends an event.
func (l *EventLog) Add(e Event) {
	l.events = append(l.events, e)
}

// Len returns the number of buffered events.
func (l *EventLog) Len() int {
	return len(l.events)
}

// Drain returns the buffered events and empties the log.
func (l *EventLog) Drain() []Event {
	out := l.events
	l.events = nil
	return out
}
