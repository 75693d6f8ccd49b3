package models

import (
	"fmt"
	"time"
)

// EventType is a client-submitted study event
type EventType string

const (
	EventNext        EventType = "NEXT"
	EventPrevious    EventType = "PREVIOUS"
	EventGotoIndex   EventType = "GOTO_INDEX"
	EventSelectLeft  EventType = "SELECT_LEFT"
	EventSelectRight EventType = "SELECT_RIGHT"
)

// ParseEventType validates a caller-supplied event type string
func ParseEventType(s string) (EventType, error) {
	switch EventType(s) {
	case EventNext, EventPrevious, EventGotoIndex, EventSelectLeft, EventSelectRight:
		return EventType(s), nil
	}
	return "", fmt.Errorf("unknown event type %q", s)
}

// EventCommand is one client event submission. ClientEventID is the
// idempotency key: resubmitting the same id against the same session is a
// no-op that re-renders current state.
type EventCommand struct {
	ClientEventID  string
	ClientSequence int64
	Type           EventType
	TargetIndex    *int
	TargetTileID   *string
}

// Attempt is the immutable audit record of one applied event. Exactly one
// row exists per (session, client event id); it is never updated.
type Attempt struct {
	ID             string
	SessionID      string
	ClientEventID  string
	ClientSequence int64
	Type           EventType
	TargetIndex    *int
	TargetTileID   *string
	LeftTileID     *string
	RightTileID    *string
	IsCorrect      *bool
	CreatedAt      time.Time
}
