package events

import "time"

// Event is anything the backend announces on the bus, such as a
// completed assistant turn.
type Event interface {
	// EventType is the routing code, e.g. "ASSISTANT_TURN_COMPLETED".
	EventType() string

	// Payload carries the event body as loose key/value pairs.
	Payload() map[string]interface{}

	// Timestamp is when the event happened, not when it was published.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation most publishers need.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

// New stamps the event with the current time.
func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string { return e.Type }

func (e BaseEvent) Payload() map[string]interface{} { return e.Data }

func (e BaseEvent) Timestamp() time.Time { return e.OccurredAt }
