package ports

import (
	"context"

	"github.com/benepick/benepick/pkg/domain"
)

// SessionStore defines the interface for persisting conversation sessions.
// Implementations must be safe for concurrent use across distinct session IDs.
// Concurrent writes to the same ID are last-write-wins.
type SessionStore interface {
	// Save persists the session under session.ID.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves the session for a given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes the session.
	// Returns domain.ErrSessionNotFound if the session did not exist.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of the stored sessions.
	List(ctx context.Context) ([]string, error)
}
