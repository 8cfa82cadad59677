package benepick

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/benepick/benepick/internal/logging"
	"github.com/benepick/benepick/pkg/adapters/memory"
	"github.com/benepick/benepick/pkg/adapters/sqlite"
	"github.com/benepick/benepick/pkg/dialog"
	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/ports"
	"github.com/benepick/benepick/pkg/session"
)

// Engine is the high-level entry point of the library.
// It owns the session manager and the three dialogue services.
type Engine struct {
	store     ports.SessionStore
	users     ports.UserStore
	auth      ports.Authenticator
	searcher  ports.PolicySearcher
	catalog   ports.PolicyCatalog
	tokens    ports.TokenIssuer
	generator ports.AnswerGenerator
	hooks     domain.TurnHooks
	logger    *slog.Logger
	grace     time.Duration
	topK      int
	db        *sqlite.DB

	sessions     *session.Manager
	registration *dialog.RegistrationService
	onboarding   *dialog.OnboardingService
	chat         *dialog.ChatService
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithSessionStore replaces the default in-memory session store.
func WithSessionStore(store ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithUserStore injects the account store. Stores that also implement
// ports.Authenticator enable password login.
func WithUserStore(users ports.UserStore) Option {
	return func(e *Engine) {
		e.users = users
		if auth, ok := users.(ports.Authenticator); ok {
			e.auth = auth
		}
	}
}

// WithPolicySearcher injects the policy search. Searchers that also implement
// ports.PolicyCatalog enable policy lookup.
func WithPolicySearcher(searcher ports.PolicySearcher) Option {
	return func(e *Engine) {
		e.searcher = searcher
		if catalog, ok := searcher.(ports.PolicyCatalog); ok {
			e.catalog = catalog
		}
	}
}

// WithTokenIssuer replaces the default in-memory token issuer.
func WithTokenIssuer(tokens ports.TokenIssuer) Option {
	return func(e *Engine) {
		e.tokens = tokens
	}
}

// WithAnswerGenerator enables generated chat answers.
func WithAnswerGenerator(gen ports.AnswerGenerator) Option {
	return func(e *Engine) {
		e.generator = gen
	}
}

// WithTurnHooks registers observability hooks.
func WithTurnHooks(hooks domain.TurnHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithCompletionGrace sets how long finished registration and onboarding
// sessions are kept before deletion.
func WithCompletionGrace(d time.Duration) Option {
	return func(e *Engine) {
		e.grace = d
	}
}

// WithTopK sets how many policies a chat search returns.
func WithTopK(k int) Option {
	return func(e *Engine) {
		e.topK = k
	}
}

// New initializes a new Engine.
// Unless both a user store and a policy searcher are injected, it opens the
// SQLite database at dbPath for the missing ones (":memory:" is accepted).
func New(dbPath string, opts ...Option) (*Engine, error) {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}

	if e.users == nil || e.searcher == nil {
		if dbPath == "" {
			return nil, errors.New("dbPath is required when no user store or policy searcher is provided")
		}
		db, err := sqlite.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		e.db = db
		if e.users == nil {
			WithUserStore(sqlite.NewUserStore(db))(e)
		}
		if e.searcher == nil {
			WithPolicySearcher(sqlite.NewPolicyStore(db))(e)
		}
	}
	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.tokens == nil {
		e.tokens = memory.NewTokenIssuer()
	}

	sessionOpts := []session.Option{session.WithLogger(e.logger), session.WithHooks(e.hooks)}
	if e.grace > 0 {
		sessionOpts = append(sessionOpts, session.WithCompletionGrace(e.grace))
	}
	e.sessions = session.NewManager(e.store, sessionOpts...)

	dialogOpts := []dialog.Option{dialog.WithLogger(e.logger), dialog.WithHooks(e.hooks), dialog.WithTopK(e.topK)}
	e.registration = dialog.NewRegistrationService(e.sessions, e.users, e.tokens, dialogOpts...)
	e.onboarding = dialog.NewOnboardingService(e.sessions, e.users, dialogOpts...)
	e.chat = dialog.NewChatService(e.sessions, e.searcher, e.generator, dialogOpts...)

	return e, nil
}

// Registration returns the registration track.
func (e *Engine) Registration() *dialog.RegistrationService { return e.registration }

// Onboarding returns the onboarding track.
func (e *Engine) Onboarding() *dialog.OnboardingService { return e.onboarding }

// Chat returns the chat track.
func (e *Engine) Chat() *dialog.ChatService { return e.chat }

// Sessions returns the session manager shared by the tracks.
func (e *Engine) Sessions() *session.Manager { return e.sessions }

// Tokens returns the token issuer.
func (e *Engine) Tokens() ports.TokenIssuer { return e.tokens }

// Users returns the account store.
func (e *Engine) Users() ports.UserStore { return e.users }

// Authenticator returns the password authenticator, or nil.
func (e *Engine) Authenticator() ports.Authenticator { return e.auth }

// Catalog returns the policy catalog, or nil.
func (e *Engine) Catalog() ports.PolicyCatalog { return e.catalog }

// DB returns the database opened by New, or nil when every store was injected.
func (e *Engine) DB() *sqlite.DB { return e.db }

// Close releases the database opened by New.
func (e *Engine) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}
