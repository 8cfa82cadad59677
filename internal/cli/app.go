// Package cli wires configuration into the engine and adapters used by the
// benepick commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/benepick/benepick"
	"github.com/benepick/benepick/internal/config"
	"github.com/benepick/benepick/internal/logging"
	httpadapter "github.com/benepick/benepick/pkg/adapters/http"
	"github.com/benepick/benepick/pkg/adapters/mcp"
	"github.com/benepick/benepick/pkg/adapters/memory"
	"github.com/benepick/benepick/pkg/adapters/openai"
	"github.com/benepick/benepick/pkg/adapters/redis"
	"github.com/benepick/benepick/pkg/input"
	"github.com/benepick/benepick/pkg/observability"
	"github.com/benepick/benepick/pkg/persistence/middleware"
	"github.com/benepick/benepick/pkg/ports"
)

// App holds the assembled engine and its ambient collaborators.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Engine  *benepick.Engine
	Metrics *observability.Metrics

	closers []func() error
}

// NewLogger builds the application logger from the log section.
func NewLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(level, cfg.Log.Format), nil
}

// OpenSessionStore returns the configured session backend wrapped with
// history redaction and, when a key is set, encryption.
func OpenSessionStore(cfg *config.Config) (ports.SessionStore, func() error, error) {
	var (
		store   ports.SessionStore
		closeFn = func() error { return nil }
	)
	switch strings.ToLower(cfg.Session.Backend) {
	case "", "memory":
		store = memory.NewStore()
	case "redis":
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithTTL(cfg.Session.TTL),
			redis.WithPrefix(cfg.Redis.Prefix),
		)
		store, closeFn = rs, rs.Close
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}

	mws := []middleware.Middleware{middleware.NewRedactionMiddleware(middleware.DefaultRedactionPatterns)}
	key, err := cfg.EncryptionKey()
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	if key != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	return middleware.Chain(store, mws...), closeFn, nil
}

// NewApp assembles the engine described by cfg.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	app := &App{Config: cfg, Logger: logger, Metrics: observability.NewMetrics()}

	store, closeStore, err := OpenSessionStore(cfg)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closeStore)

	opts := []benepick.Option{
		benepick.WithLogger(logger),
		benepick.WithSessionStore(store),
		benepick.WithCompletionGrace(cfg.Session.CompletionGrace),
		benepick.WithTurnHooks(app.Metrics.Hooks(logger)),
	}
	if cfg.OpenAI.APIKey != "" {
		gen := openai.New(cfg.OpenAI.APIKey,
			openai.WithBaseURL(cfg.OpenAI.BaseURL),
			openai.WithModel(cfg.OpenAI.Model),
			openai.WithLogger(logger),
		)
		opts = append(opts, benepick.WithAnswerGenerator(gen))
	} else {
		logger.Info("answer generation disabled, using templated answers")
	}

	engine, err := benepick.New(cfg.DB.Path, opts...)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Engine = engine
	app.closers = append(app.closers, engine.Close)
	return app, nil
}

// HTTPServer builds the HTTP adapter over the engine.
func (a *App) HTTPServer() (*httpadapter.Server, error) {
	e := a.Engine
	return httpadapter.New(httpadapter.Services{
		Registration: e.Registration(),
		Onboarding:   e.Onboarding(),
		Chat:         e.Chat(),
		Sessions:     e.Sessions(),
		Tokens:       e.Tokens(),
		Users:        e.Users(),
		Auth:         e.Authenticator(),
		Policies:     e.Catalog(),
		Metrics:      a.Metrics,
	},
		httpadapter.WithLogger(a.Logger),
		httpadapter.WithSanitizer(input.New(a.Config.Input.MaxSize)),
		httpadapter.WithRateLimit(a.Config.RateLimit.Requests, a.Config.RateLimit.Window),
		httpadapter.WithVersion(version()),
	)
}

// MCPServer builds the MCP adapter over the chat track.
func (a *App) MCPServer() *mcp.Server {
	return mcp.NewServer(a.Engine.Chat(), a.Engine.Sessions(),
		mcp.WithLogger(a.Logger),
		mcp.WithSanitizer(input.New(a.Config.Input.MaxSize)),
		mcp.WithVersion(version()),
	)
}

// RefreshGauges publishes the active session counts.
func (a *App) RefreshGauges(ctx context.Context) {
	counts, err := a.Engine.Sessions().Count(ctx)
	if err != nil {
		a.Logger.Warn("session count failed", "err", err)
		return
	}
	a.Metrics.SetActiveSessions(counts)
}

// Close releases the stores in reverse order of opening.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func version() string {
	return strings.TrimSpace(benepick.Version)
}
