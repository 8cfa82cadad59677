package dialog

import (
	"context"
	"log/slog"

	"github.com/benepick/benepick/internal/logging"
	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/session"
)

// Effect is a side effect requested by a pure transition.
type Effect int

const (
	EffectNone Effect = iota
	// EffectCreateUser asks the service to create the account and issue tokens.
	EffectCreateUser
	// EffectPersistProfile asks the service to store the onboarding profile.
	EffectPersistProfile
)

// DefaultTopK is the number of policies fetched per chat search.
const DefaultTopK = 5

type options struct {
	logger *slog.Logger
	hooks  domain.TurnHooks
	topK   int
}

// Option configures a dialogue service.
type Option func(*options)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHooks registers observability callbacks.
func WithHooks(hooks domain.TurnHooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// WithTopK sets how many policies a chat search returns.
func WithTopK(k int) Option {
	return func(o *options) {
		if k > 0 {
			o.topK = k
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger: logging.NewNop(),
		topK:   DefaultTopK,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) turn(ctx context.Context, e *domain.TurnEvent) {
	o.logger.Debug("turn processed",
		"track", e.Track,
		"session_id", e.SessionID,
		"step", e.Step,
		"intent", e.Intent,
		"validation_error", e.ValidationError,
		"completed", e.Completed,
	)
	if o.hooks.OnTurn != nil {
		o.hooks.OnTurn(ctx, e)
	}
}

// deleteTrackSession deletes a session only if it belongs to the track.
func deleteTrackSession(ctx context.Context, sessions *session.Manager, kind domain.Kind, sessionID string) error {
	sess, err := sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Kind != kind {
		return domain.ErrSessionNotFound
	}
	return sessions.Delete(ctx, sessionID)
}
