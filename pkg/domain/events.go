package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSessionCreated EventType = "session_created"
	EventTurn           EventType = "turn"
	EventAnswerFallback EventType = "answer_fallback"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Track     Kind      `json:"track"`
}

// TurnEvent describes one processed user message.
type TurnEvent struct {
	EventBase
	Step            string `json:"step,omitempty"`
	Intent          Intent `json:"intent,omitempty"`
	ValidationError string `json:"validation_error,omitempty"`
	Completed       bool   `json:"completed,omitempty"`
}

// FallbackEvent is emitted when the answer generator failed or was absent
// and a deterministic answer was used instead.
type FallbackEvent struct {
	EventBase
	Sources int   `json:"sources"`
	Err     error `json:"-"`
}

// TurnHooks defines callbacks for dialogue observability.
// Every field is optional.
type TurnHooks struct {
	OnSessionCreated func(context.Context, *EventBase)
	OnTurn           func(context.Context, *TurnEvent)
	OnAnswerFallback func(context.Context, *FallbackEvent)
}

// Merge combines two hook sets; both callbacks fire when both are set.
func (h TurnHooks) Merge(other TurnHooks) TurnHooks {
	return TurnHooks{
		OnSessionCreated: chain(h.OnSessionCreated, other.OnSessionCreated),
		OnTurn:           chain(h.OnTurn, other.OnTurn),
		OnAnswerFallback: chain(h.OnAnswerFallback, other.OnAnswerFallback),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
