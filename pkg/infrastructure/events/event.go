// Package events provides an in-memory audit trail of planning activity:
// run lifecycle and planned order transitions, keyed by plan id.
package events

import (
	"time"
)

// Event is one audit record in a plan's stream
type Event interface {
	Type() string
	StreamID() string
	Data() interface{}
	Timestamp() time.Time
}

// Store appends and reads per-plan event streams
type Store interface {
	Append(streamID string, event Event) error
	Read(streamID string) ([]Event, error)
}

// BaseEvent is the concrete event carried by the in-memory store
type BaseEvent struct {
	EventType string
	Stream    string
	EventData interface{}
	EventTime time.Time
}

func (e BaseEvent) Type() string {
	return e.EventType
}

func (e BaseEvent) StreamID() string {
	return e.Stream
}

func (e BaseEvent) Data() interface{} {
	return e.EventData
}

func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// NewEvent creates an event stamped with the current time
func NewEvent(eventType, streamID string, data interface{}) Event {
	return BaseEvent{
		EventType: eventType,
		Stream:    streamID,
		EventData: data,
		EventTime: time.Now(),
	}
}
