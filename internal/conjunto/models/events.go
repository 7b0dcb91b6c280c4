package models

import "time"

// EventType discriminates domain events for presentation-layer filtering
// (the SSE transport keys its event field by this name).
type EventType string

const (
	EventCreated EventType = "CREATED"
	EventUpdated EventType = "UPDATED"
	EventDeleted EventType = "DELETED"
)

// Event is a domain event with a serializable snapshot of the conjunto at
// the time of the event. Events are never persisted: subscribers not
// connected at emission time miss them, except for the single most recent
// event replayed to late joiners.
type Event struct {
	Type      EventType    `json:"tipo"`
	Conjunto  ConjuntoView `json:"conjunto"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewEvent builds an event carrying a snapshot of the given view.
func NewEvent(eventType EventType, view *ConjuntoView, now time.Time) Event {
	return Event{Type: eventType, Conjunto: *view, Timestamp: now}
}
