package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benepick/benepick/pkg/adapters/memory"
	httpadapter "github.com/benepick/benepick/pkg/adapters/http"
	"github.com/benepick/benepick/pkg/adapters/sqlite"
	"github.com/benepick/benepick/pkg/dialog"
	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/input"
	"github.com/benepick/benepick/pkg/observability"
	"github.com/benepick/benepick/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const seed = `
policies:
  - policy_id: P001
    title: 청년 월세 한시 특별지원
    summary: 청년 월세를 월 최대 20만원 지원
    source_type: central
  - policy_id: P002
    title: 서울시 청년수당
    summary: 미취업 청년 활동지원금
    source_type: regional
    ctpv_nm: 서울특별시
`

type fixture struct {
	handler  http.Handler
	server   *httpadapter.Server
	sessions *session.Manager
	tokens   *memory.TokenIssuer
	users    *sqlite.UserStore
}

func newFixture(t *testing.T, opts ...httpadapter.Option) *fixture {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	policies := sqlite.NewPolicyStore(db)
	_, err = policies.ImportPolicies(context.Background(), strings.NewReader(seed))
	require.NoError(t, err)

	users := sqlite.NewUserStore(db, sqlite.WithBcryptCost(bcrypt.MinCost))
	tokens := memory.NewTokenIssuer()
	sessions := session.NewManager(memory.NewStore())
	metrics := observability.NewMetrics()
	hooks := dialog.WithHooks(metrics.Hooks(nil))

	srv, err := httpadapter.New(httpadapter.Services{
		Registration: dialog.NewRegistrationService(sessions, users, tokens, hooks),
		Onboarding:   dialog.NewOnboardingService(sessions, users, hooks),
		Chat:         dialog.NewChatService(sessions, policies, nil, hooks),
		Sessions:     sessions,
		Tokens:       tokens,
		Users:        users,
		Auth:         users,
		Policies:     policies,
		Metrics:      metrics,
	}, opts...)
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	return &fixture{handler: srv.Handler(), server: srv, sessions: sessions, tokens: tokens, users: users}
}

func (f *fixture) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type envelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
		Path    string         `json:"path"`
	} `json:"error"`
}

func msg(text, sessionID string) map[string]string {
	return map[string]string{"message": text, "session_id": sessionID}
}

func register(t *testing.T, f *fixture) dialog.RegistrationResult {
	t.Helper()
	const path = "/api/auth/register/conversation"

	res := decodeBody[dialog.RegistrationResult](t, f.do(t, http.MethodPost, path, msg("시작", ""), ""))
	id := res.SessionID
	for _, text := range []string{"홍길동", "hong@example.com", "password1", "password1", "네"} {
		rec := f.do(t, http.MethodPost, path, msg(text, id), "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res = decodeBody[dialog.RegistrationResult](t, rec)
	}
	require.True(t, res.IsCompleted)
	require.NotNil(t, res.Tokens)
	return res
}

func TestServer_Ops(t *testing.T) {
	f := newFixture(t, httpadapter.WithVersion("1.2.3"))

	rec := f.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	info := decodeBody[map[string]string](t, f.do(t, http.MethodGet, "/info", nil, ""))
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, "1.0.0", info["api_version"])

	rec = f.do(t, http.MethodGet, "/openapi.yaml", nil, "")
	assert.Contains(t, rec.Body.String(), "openapi: 3.0.3")

	rec = f.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = f.do(t, http.MethodOptions, "/api/chat/conversation", nil, "")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_RoutesAreDocumented(t *testing.T) {
	f := newFixture(t)
	spec, err := httpadapter.LoadSpec()
	require.NoError(t, err)

	routes, ok := f.handler.(chi.Routes)
	require.True(t, ok)
	err = chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		assert.NotNil(t, spec.Paths.Value(route), "%s %s is not in openapi.yaml", method, route)
		return nil
	})
	require.NoError(t, err)
}

func TestServer_RegistrationThenOnboarding(t *testing.T) {
	f := newFixture(t)
	reg := register(t, f)
	access := reg.Tokens.AccessToken

	assert.Equal(t, "hong@example.com", reg.Tokens.User.Email)
	assert.NotContains(t, f.do(t, http.MethodGet, "/api/auth/me", nil, access).Body.String(), "password")

	const path = "/api/onboarding/conversation"
	onb := decodeBody[dialog.OnboardingResult](t, f.do(t, http.MethodPost, path, msg("", ""), access))
	assert.Equal(t, domain.OnbCollectRegion, onb.Step)
	assert.Contains(t, onb.Response, "홍길동님")
	assert.Len(t, onb.QuickReplies, 8)

	for _, text := range []string{"서울", "청년", "1, 2"} {
		onb = decodeBody[dialog.OnboardingResult](t, f.do(t, http.MethodPost, path, msg(text, onb.SessionID), access))
	}
	assert.True(t, onb.IsCompleted)

	me := decodeBody[map[string]any](t, f.do(t, http.MethodGet, "/api/auth/me", nil, access))
	assert.Equal(t, true, me["onboarding_completed"])
	assert.Equal(t, "서울", me["profile"].(map[string]any)["region"])
}

func TestServer_OnboardingComplete(t *testing.T) {
	f := newFixture(t)
	access := register(t, f).Tokens.AccessToken

	onb := decodeBody[dialog.OnboardingResult](t, f.do(t, http.MethodPost, "/api/onboarding/conversation", msg("", ""), access))

	rec := f.do(t, http.MethodPost, "/api/onboarding/complete", map[string]any{
		"session_id": onb.SessionID,
		"profile":    map[string]string{"region": "부산", "life_cycle": "노년", "interests": "의료/건강"},
	}, access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "온보딩이 완료되었습니다.", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "의료/건강", user["profile"].(map[string]any)["interest"])

	_, err := f.sessions.Get(context.Background(), onb.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	rec = f.do(t, http.MethodPost, "/api/onboarding/complete", map[string]any{"profile": map[string]string{}}, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_AuthErrors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/onboarding/conversation", msg("서울", ""), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decodeBody[envelope](t, rec)
	assert.Equal(t, "AUTHENTICATION_ERROR", env.Error.Code)
	assert.Equal(t, "/api/onboarding/conversation", env.Error.Path)

	rec = f.do(t, http.MethodPost, "/api/onboarding/conversation", msg("서울", ""), "bogus")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_TokenLifecycle(t *testing.T) {
	f := newFixture(t)
	reg := register(t, f)

	rec := f.do(t, http.MethodPost, "/api/auth/refresh", map[string]string{"refresh_token": reg.Tokens.RefreshToken}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rotated := decodeBody[domain.Tokens](t, rec)
	assert.NotEqual(t, reg.Tokens.AccessToken, rotated.AccessToken)

	rec = f.do(t, http.MethodPost, "/api/auth/refresh", map[string]string{"refresh_token": reg.Tokens.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "유효하지 않거나 만료된 리프레시 토큰입니다", decodeBody[envelope](t, rec).Error.Message)

	rec = f.do(t, http.MethodPost, "/api/auth/refresh", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/auth/logout", nil, rotated.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/auth/me", nil, rotated.AccessToken).Code)

	rec = f.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "HONG@example.com", "password": "password1"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	login := decodeBody[domain.Tokens](t, rec)
	assert.Equal(t, "bearer", login.TokenType)
	assert.Equal(t, "홍길동", login.User.Name)

	rec = f.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "hong@example.com", "password": "nope-nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_ChatAndDelete(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/chat/conversation", msg("서울 청년 월세 지원", ""), "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[dialog.ChatResult](t, rec)
	assert.True(t, res.ReadyToSearch)
	require.NotEmpty(t, res.Sources)
	assert.Equal(t, "P001", res.Sources[0].PolicyID)

	health := decodeBody[map[string]any](t, f.do(t, http.MethodGet, "/api/chat/health", nil, ""))
	assert.Equal(t, "ready", health["database"])
	assert.Equal(t, float64(2), health["policy_count"])
	assert.Equal(t, "not_configured", health["generator"])
	assert.Equal(t, float64(1), health["active_sessions"].(map[string]any)["chat"])

	rec = f.do(t, http.MethodDelete, "/api/auth/register/conversation/"+res.SessionID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "other tracks cannot delete chat sessions")

	rec = f.do(t, http.MethodDelete, "/api/chat/conversation/"+res.SessionID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"세션이 삭제되었습니다."}`, rec.Body.String())

	rec = f.do(t, http.MethodDelete, "/api/chat/conversation/"+res.SessionID, nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeBody[envelope](t, rec)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Equal(t, res.SessionID, env.Error.Details["session_id"])

	rec = f.do(t, http.MethodGet, "/api/policies/P002", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/policies/P404", nil, "").Code)
}

func TestServer_BadRequests(t *testing.T) {
	f := newFixture(t, httpadapter.WithSanitizer(input.New(32)))

	rec := f.do(t, http.MethodPost, "/api/chat/conversation", msg("   ", ""), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeBody[envelope](t, rec)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "메시지를 입력해주세요", env.Error.Message)

	rec = f.do(t, http.MethodPost, "/api/chat/conversation", msg(strings.Repeat("가", 20), ""), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/chat/conversation", strings.NewReader("{not json"))
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ChatStream(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/chat/conversation/stream", msg("안녕하세요", ""), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	var names []string
	for _, line := range strings.Split(body, "\n") {
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			if len(names) == 0 || names[len(names)-1] != name {
				names = append(names, name)
			}
		}
	}
	assert.Equal(t, []string{"session", "intent", "profile", "message", "done"}, names)
	assert.Contains(t, body, `data: {"intent":"chitchat"}`)
	assert.Contains(t, body, `data: {"ready_to_search":false}`)

	metrics := f.do(t, http.MethodGet, "/metrics", nil, "").Body.String()
	assert.Contains(t, metrics, `benepick_stream_events_total{event="done"} 1`)
}

func TestServer_StreamErrorEvent(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/chat/conversation/stream", msg("", ""), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "event: error\ndata: {\"error\":\"메시지를 입력해주세요\"}\n\n", rec.Body.String())
}

func TestServer_RegistrationStreamCarriesTokens(t *testing.T) {
	f := newFixture(t)
	const path = "/api/auth/register/conversation"

	res := decodeBody[dialog.RegistrationResult](t, f.do(t, http.MethodPost, path, msg("시작", ""), ""))
	for _, text := range []string{"홍길동", "hong@example.com", "password1", "password1"} {
		f.do(t, http.MethodPost, path, msg(text, res.SessionID), "")
	}

	body := f.do(t, http.MethodPost, path+"/stream", msg("네", res.SessionID), "").Body.String()
	tokens := strings.Index(body, "event: tokens")
	done := strings.Index(body, "event: done")
	require.Positive(t, tokens)
	assert.Less(t, tokens, done)
	assert.Contains(t, body, `data: {"is_completed":true}`)
	assert.NotContains(t, body, "password1")
}

func TestServer_RateLimit(t *testing.T) {
	f := newFixture(t, httpadapter.WithRateLimit(2, time.Minute))

	for range 2 {
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/chat/conversation", msg("안녕", ""), "").Code)
	}
	rec := f.do(t, http.MethodPost, "/api/chat/conversation", msg("안녕", ""), "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decodeBody[envelope](t, rec).Error.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Deletes are not throttled.
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/api/chat/conversation/x", nil, "").Code)
}
