package observability

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/benepick/benepick/internal/logging"
	"github.com/benepick/benepick/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the benepick collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	turns            *prometheus.CounterVec
	sessionsCreated  *prometheus.CounterVec
	validationErrors *prometheus.CounterVec
	answerFallbacks  prometheus.Counter
	streamEvents     *prometheus.CounterVec
	activeSessions   *prometheus.GaugeVec
}

// NewMetrics registers the benepick collectors plus the Go and process
// collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "benepick_turns_total",
				Help: "Total number of processed conversation turns",
			},
			[]string{"track", "step"},
		),
		sessionsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "benepick_sessions_created_total",
				Help: "Total number of created sessions",
			},
			[]string{"track"},
		),
		validationErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "benepick_validation_errors_total",
				Help: "Total number of rejected slot values",
			},
			[]string{"track"},
		),
		answerFallbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "benepick_answer_fallbacks_total",
				Help: "Total number of templated answers used instead of generated ones",
			},
		),
		streamEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "benepick_stream_events_total",
				Help: "Total number of server-sent events written",
			},
			[]string{"event"},
		),
		activeSessions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "benepick_active_sessions",
				Help: "Live sessions per track as of the last sweep",
			},
			[]string{"track"},
		),
	}
	m.registry.MustRegister(
		m.turns,
		m.sessionsCreated,
		m.validationErrors,
		m.answerFallbacks,
		m.streamEvents,
		m.activeSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StreamEvent counts one written server-sent event.
func (m *Metrics) StreamEvent(name string) {
	m.streamEvents.WithLabelValues(name).Inc()
}

// SetActiveSessions records the per-track session count.
func (m *Metrics) SetActiveSessions(counts map[domain.Kind]int) {
	for _, k := range []domain.Kind{domain.KindRegistration, domain.KindOnboarding, domain.KindChat} {
		m.activeSessions.WithLabelValues(string(k)).Set(float64(counts[k]))
	}
}

// Hooks returns lifecycle hooks that record metrics and write one audit
// log line per event. logger may be nil.
func (m *Metrics) Hooks(logger *slog.Logger) domain.TurnHooks {
	if logger == nil {
		logger = logging.NewNop()
	}
	return domain.TurnHooks{
		OnSessionCreated: func(ctx context.Context, e *domain.EventBase) {
			logger.Info("session_created", "track", e.Track, "session_id", e.SessionID)
			m.sessionsCreated.WithLabelValues(string(e.Track)).Inc()
		},
		OnTurn: func(ctx context.Context, e *domain.TurnEvent) {
			step := e.Step
			if e.Track == domain.KindChat {
				step = string(e.Intent)
			}
			logger.Info("turn",
				"track", e.Track,
				"session_id", e.SessionID,
				"step", step,
				"completed", e.Completed,
			)
			m.turns.WithLabelValues(string(e.Track), step).Inc()
			if e.ValidationError != "" {
				m.validationErrors.WithLabelValues(string(e.Track)).Inc()
			}
		},
		OnAnswerFallback: func(ctx context.Context, e *domain.FallbackEvent) {
			logger.Warn("answer_fallback", "session_id", e.SessionID, "sources", e.Sources, "err", e.Err)
			m.answerFallbacks.Inc()
		},
	}
}
