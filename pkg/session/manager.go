package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/benepick/benepick/internal/logging"
	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/ports"
	"github.com/google/uuid"
)

// DefaultCompletionGrace is how long a completed session stays readable before deletion.
const DefaultCompletionGrace = 60 * time.Second

// Manager orchestrates session creation, access and expiry.
type Manager struct {
	store  ports.SessionStore
	grace  time.Duration
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
	hooks  domain.TurnHooks
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithCompletionGrace sets the delay between completion and deletion.
func WithCompletionGrace(d time.Duration) Option {
	return func(m *Manager) {
		m.grace = d
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithHooks registers observability callbacks fired on session creation.
func WithHooks(hooks domain.TurnHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		grace:  DefaultCompletionGrace,
		now:    time.Now,
		newID:  randomHex,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// randomHex returns 32 lowercase hex characters.
func randomHex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewID mints an identifier for a session of the given track.
func (m *Manager) NewID(kind domain.Kind) string {
	return kind.Prefix() + m.newID()
}

// Now returns the manager's notion of the current time.
func (m *Manager) Now() time.Time {
	return m.now()
}

// Create initializes and persists a fresh session.
func (m *Manager) Create(ctx context.Context, kind domain.Kind) (*domain.Session, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown session kind %q", kind)
	}
	s := domain.NewSession(m.NewID(kind), kind, m.now().UTC())

	// Persist immediately to reserve the ID.
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	m.logger.Debug("session created", "session_id", s.ID, "track", kind)
	if m.hooks.OnSessionCreated != nil {
		m.hooks.OnSessionCreated(ctx, &domain.EventBase{
			Timestamp: s.CreatedAt,
			Type:      domain.EventSessionCreated,
			SessionID: s.ID,
			Track:     kind,
		})
	}
	return s, nil
}

// Get loads a session. Expired sessions are deleted on access and reported
// as domain.ErrSessionNotFound.
func (m *Manager) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	s, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.Expired(m.now()) {
		if err := m.store.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			m.logger.Warn("failed to delete expired session", "session_id", sessionID, "err", err)
		}
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Resume returns the session for sessionID if it exists, is live and belongs
// to the track. Otherwise it creates a new one and reports created=true.
func (m *Manager) Resume(ctx context.Context, kind domain.Kind, sessionID string) (s *domain.Session, created bool, err error) {
	if sessionID != "" {
		s, err = m.Get(ctx, sessionID)
		switch {
		case err == nil && s.Kind == kind:
			return s, false, nil
		case err == nil:
			m.logger.Debug("session belongs to another track", "session_id", sessionID, "track", s.Kind, "want", kind)
		case !errors.Is(err, domain.ErrSessionNotFound):
			return nil, false, fmt.Errorf("failed to check session existence: %w", err)
		}
	}

	s, err = m.Create(ctx, kind)
	if err != nil {
		return nil, false, err
	}
	return s, true, nil
}

// Save persists the session.
func (m *Manager) Save(ctx context.Context, s *domain.Session) error {
	return m.store.Save(ctx, s)
}

// Delete removes the session. Returns domain.ErrSessionNotFound if it did not exist.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.store.Delete(ctx, sessionID)
}

// ExpireAfter stamps the session to expire d from now.
func (m *Manager) ExpireAfter(s *domain.Session, d time.Duration) {
	s.ExpiresAt = m.now().Add(d).UTC()
}

// ScheduleDeletion stamps a completed session with the completion grace period.
func (m *Manager) ScheduleDeletion(s *domain.Session) {
	m.ExpireAfter(s, m.grace)
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Count returns the number of live sessions per track.
func (m *Manager) Count(ctx context.Context) (map[domain.Kind]int, error) {
	ids, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[domain.Kind]int{
		domain.KindRegistration: 0,
		domain.KindOnboarding:   0,
		domain.KindChat:         0,
	}
	now := m.now()
	for _, id := range ids {
		s, err := m.store.Load(ctx, id)
		if err != nil {
			continue
		}
		if !s.Expired(now) {
			counts[s.Kind]++
		}
	}
	return counts, nil
}

// Sweep removes every expired session and returns how many were deleted.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	ids, err := m.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	now := m.now()
	removed := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		s, err := m.store.Load(ctx, id)
		if err != nil {
			if !errors.Is(err, domain.ErrSessionNotFound) {
				m.logger.Warn("sweep: failed to load session", "session_id", id, "err", err)
			}
			continue
		}
		if !s.Expired(now) {
			continue
		}
		if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			m.logger.Warn("sweep: failed to delete session", "session_id", id, "err", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// RunSweeper calls Sweep every interval until ctx is done. afterPass, when
// not nil, runs after every pass.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration, afterPass func(context.Context)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.Sweep(ctx)
			if err != nil && ctx.Err() == nil {
				m.logger.Error("session sweep failed", "err", err)
			} else if n > 0 {
				m.logger.Info("expired sessions removed", "count", n)
			}
			if afterPass != nil && ctx.Err() == nil {
				afterPass(ctx)
			}
		}
	}
}
