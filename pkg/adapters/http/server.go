// Package http exposes the dialogue tracks over JSON and server-sent events.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/benepick/benepick/internal/logging"
	"github.com/benepick/benepick/pkg/dialog"
	"github.com/benepick/benepick/pkg/input"
	"github.com/benepick/benepick/pkg/observability"
	"github.com/benepick/benepick/pkg/ports"
	"github.com/benepick/benepick/pkg/session"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MaxBodySize caps request bodies.
const MaxBodySize = 1 << 20

// Services bundles the collaborators behind the HTTP surface.
// Auth, Policies and Metrics are optional.
type Services struct {
	Registration *dialog.RegistrationService
	Onboarding   *dialog.OnboardingService
	Chat         *dialog.ChatService
	Sessions     *session.Manager
	Tokens       ports.TokenIssuer
	Users        ports.UserStore
	Auth         ports.Authenticator
	Policies     ports.PolicyCatalog
	Metrics      *observability.Metrics
}

// Server routes HTTP requests to the dialogue services.
type Server struct {
	svc       Services
	logger    *slog.Logger
	sanitizer input.Sanitizer
	limiter   *RateLimiter
	spec      *openapi3.T
	version   string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithSanitizer sets the message sanitizer.
func WithSanitizer(san input.Sanitizer) Option {
	return func(s *Server) {
		s.sanitizer = san
	}
}

// WithRateLimit limits conversation endpoints to requests per window per client IP.
func WithRateLimit(requests int, window time.Duration) Option {
	return func(s *Server) {
		if requests > 0 && window > 0 {
			s.limiter = NewRateLimiter(requests, window)
		}
	}
}

// WithVersion sets the build version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// New builds a Server. It fails if the embedded API description is invalid.
func New(svc Services, opts ...Option) (*Server, error) {
	spec, err := LoadSpec()
	if err != nil {
		return nil, err
	}
	s := &Server{
		svc:       svc,
		logger:    logging.NewNop(),
		sanitizer: input.New(0),
		spec:      spec,
		version:   "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limiter == nil {
		s.limiter = NewRateLimiter(30, time.Minute)
	}
	return s, nil
}

// Close releases background resources.
func (s *Server) Close() {
	s.limiter.Stop()
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.health)
	r.Get("/info", s.info)
	r.Get("/openapi.yaml", s.openAPI)
	if s.svc.Metrics != nil {
		r.Handle("/metrics", s.svc.Metrics.Handler())
	}

	limited := s.limiter.Middleware(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, newAPIError(http.StatusTooManyRequests, CodeRateLimited, msgRateLimited, nil))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequestSize(MaxBodySize))

		r.Route("/auth", func(r chi.Router) {
			r.With(limited).Post("/register/conversation", s.registrationTurn)
			r.With(limited).Post("/register/conversation/stream", s.registrationStream)
			r.Delete("/register/conversation/{session_id}", s.deleteRegistration)
			if s.svc.Auth != nil {
				r.With(limited).Post("/login", s.login)
			}
			r.Post("/refresh", s.refresh)
			r.With(s.requireAuth).Post("/logout", s.logout)
			r.With(s.requireAuth).Get("/me", s.me)
		})

		r.Route("/onboarding", func(r chi.Router) {
			r.With(limited, s.requireAuth).Post("/conversation", s.onboardingTurn)
			r.With(limited, s.requireAuth).Post("/conversation/stream", s.onboardingStream)
			r.Delete("/conversation/{session_id}", s.deleteOnboarding)
			r.With(s.requireAuth).Post("/complete", s.completeOnboarding)
		})

		r.Route("/chat", func(r chi.Router) {
			r.With(limited).Post("/conversation", s.chatTurn)
			r.With(limited).Post("/conversation/stream", s.chatStream)
			r.Delete("/conversation/{session_id}", s.deleteChat)
			r.Get("/health", s.chatHealth)
		})

		if s.svc.Policies != nil {
			r.Get("/policies/{policy_id}", s.getPolicy)
		}
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
