package stream

import (
	"iter"
	"strings"

	"github.com/benepick/benepick/pkg/domain"
)

// Event names on the wire.
const (
	EventSession         = "session"
	EventStep            = "step"
	EventIntent          = "intent"
	EventSlots           = "slots"
	EventProfile         = "profile"
	EventValidationError = "validation_error"
	EventSources         = "sources"
	EventMessage         = "message"
	EventAnswer          = "answer"
	EventTokens          = "tokens"
	EventDone            = "done"
	EventError           = "error"
)

// Event is one typed server-sent event. Data is serialized as JSON.
type Event struct {
	Name string
	Data any
}

// Frame is the track-independent projection of a turn result.
type Frame struct {
	SessionID string

	// Header is the step (registration, onboarding) or intent (chat) event.
	Header Event

	// Slots is the slots (registration) or profile (onboarding, chat) event.
	Slots Event

	ValidationError string

	// Sources is emitted when non-nil, even if empty.
	Sources []domain.PolicySource

	// Text is the response, streamed one word at a time under TextEvent.
	Text      string
	TextEvent string

	Tokens *domain.Tokens

	// Done is the payload of the terminal event.
	Done any
}

// Framer is implemented by turn results that can be streamed.
type Framer interface {
	Frame() Frame
}

// TextChunk is the payload of message and answer events.
type TextChunk struct {
	Text string `json:"text"`
}

// Words splits a response into typing-effect chunks. Each chunk keeps a
// trailing space so concatenating them restores the text plus one space.
func Words(text string) []string {
	parts := strings.Split(text, " ")
	for i, p := range parts {
		parts[i] = p + " "
	}
	return parts
}

// Events yields the events of a frame in protocol order.
func Events(f Frame) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		if !yield(Event{Name: EventSession, Data: map[string]string{"session_id": f.SessionID}}) {
			return
		}
		if f.Header.Name != "" && !yield(f.Header) {
			return
		}
		if f.Slots.Name != "" && !yield(f.Slots) {
			return
		}
		if f.ValidationError != "" {
			if !yield(Event{Name: EventValidationError, Data: map[string]string{"error": f.ValidationError}}) {
				return
			}
		}
		if f.Sources != nil {
			if !yield(Event{Name: EventSources, Data: f.Sources}) {
				return
			}
		}

		name := f.TextEvent
		if name == "" {
			name = EventMessage
		}
		for _, w := range Words(f.Text) {
			if !yield(Event{Name: name, Data: TextChunk{Text: w}}) {
				return
			}
		}

		if f.Tokens != nil {
			if !yield(Event{Name: EventTokens, Data: f.Tokens}) {
				return
			}
		}
		yield(Event{Name: EventDone, Data: f.Done})
	}
}
