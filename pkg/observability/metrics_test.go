package observability_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics()
	hooks := m.Hooks(nil)
	ctx := context.Background()

	hooks.OnSessionCreated(ctx, &domain.EventBase{Track: domain.KindRegistration, SessionID: "reg_1"})
	hooks.OnTurn(ctx, &domain.TurnEvent{
		EventBase:       domain.EventBase{Track: domain.KindRegistration, SessionID: "reg_1"},
		Step:            string(domain.RegCollectEmail),
		ValidationError: "올바른 이메일 형식이 아니에요.",
	})
	hooks.OnTurn(ctx, &domain.TurnEvent{
		EventBase: domain.EventBase{Track: domain.KindChat, SessionID: "c1"},
		Intent:    domain.IntentChitchat,
	})
	hooks.OnAnswerFallback(ctx, &domain.FallbackEvent{Sources: 2})
	m.StreamEvent("message")
	m.StreamEvent("message")
	m.SetActiveSessions(map[domain.Kind]int{domain.KindChat: 3})

	expected := `
# HELP benepick_turns_total Total number of processed conversation turns
# TYPE benepick_turns_total counter
benepick_turns_total{step="chitchat",track="chat"} 1
benepick_turns_total{step="collect_email",track="registration"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "benepick_turns_total"))

	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "benepick_validation_errors_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Registry(), "benepick_sessions_created_total"))
	assert.Equal(t, 3, testutil.CollectAndCount(m.Registry(), "benepick_active_sessions"))
}

func TestMetrics_Handler(t *testing.T) {
	m := observability.NewMetrics()
	m.StreamEvent("done")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `benepick_stream_events_total{event="done"} 1`)
}

func TestHooks_MergeWithOthers(t *testing.T) {
	m := observability.NewMetrics()
	called := false
	hooks := m.Hooks(nil).Merge(domain.TurnHooks{OnAnswerFallback: func(context.Context, *domain.FallbackEvent) { called = true }})

	hooks.OnAnswerFallback(context.Background(), &domain.FallbackEvent{})
	assert.True(t, called)
}
