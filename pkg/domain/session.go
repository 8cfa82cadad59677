package domain

import "time"

// Kind identifies the dialogue track a session belongs to.
type Kind string

const (
	KindRegistration Kind = "registration"
	KindOnboarding   Kind = "onboarding"
	KindChat         Kind = "chat"
)

// Prefix returns the conventional session ID prefix for the track.
// Chat sessions carry no prefix.
func (k Kind) Prefix() string {
	switch k {
	case KindRegistration:
		return "reg_"
	case KindOnboarding:
		return "onb_"
	default:
		return ""
	}
}

// Valid reports whether k is one of the known tracks.
func (k Kind) Valid() bool {
	switch k {
	case KindRegistration, KindOnboarding, KindChat:
		return true
	}
	return false
}

// Role is the author of a history entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the append-only conversation history.
type Message struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Session represents one in-flight conversation.
// It is owned by the session store; dialogue services load a copy, mutate it
// for the duration of a single turn and save it back.
type Session struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	// Step is the current state-machine state of the track (empty for chat).
	Step string `json:"step,omitempty"`

	// Registration holds the slots of a registration session.
	Registration RegistrationSlots `json:"registration"`

	// Profile holds the slots of onboarding and chat sessions.
	Profile Profile `json:"profile"`

	// UserID is the authenticated owner of an onboarding session.
	UserID int64 `json:"user_id,omitempty"`

	History []Message `json:"history,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is zero for sessions that live until explicitly deleted.
	ExpiresAt time.Time `json:"expires_at"`

	// Sealed carries the encrypted payload when the session is stored
	// through an encrypting middleware. Empty otherwise.
	Sealed string `json:"sealed,omitempty"`
}

// NewSession creates an empty session of the given kind.
func NewSession(id string, kind Kind, now time.Time) *Session {
	return &Session{
		ID:        id,
		Kind:      kind,
		History:   []Message{},
		CreatedAt: now,
	}
}

// Append records a turn in the history.
func (s *Session) Append(role Role, text string, at time.Time) {
	s.History = append(s.History, Message{Role: role, Text: text, At: at})
}

// Expired reports whether the session has passed its expiry timestamp.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Clone returns a deep copy so stores can isolate their state from callers.
func (s *Session) Clone() *Session {
	c := *s
	if s.History != nil {
		c.History = make([]Message, len(s.History))
		copy(c.History, s.History)
	}
	return &c
}
