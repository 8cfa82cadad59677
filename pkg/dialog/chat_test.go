package dialog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/benepick/benepick/pkg/adapters/memory"
	"github.com/benepick/benepick/pkg/dialog"
	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/session"
	"github.com/benepick/benepick/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStepChat(t *testing.T) {
	tests := []struct {
		name    string
		profile domain.Profile
		msg     string
		intent  domain.Intent
		action  dialog.ChatAction
		ready   bool
		want    domain.Profile
	}{
		{
			name:   "chitchat",
			msg:    "안녕하세요",
			intent: domain.IntentChitchat,
			action: dialog.ChatReplyChitchat,
		},
		{
			name:   "search without region",
			msg:    "청년 지원 알려줘",
			intent: domain.IntentWelfareSearch,
			action: dialog.ChatAskRegion,
			want:   domain.Profile{LifeCycle: "청년"},
		},
		{
			name:   "search without life cycle",
			msg:    "28살 서울 월세 지원",
			intent: domain.IntentWelfareSearch,
			action: dialog.ChatAskLifeCycle,
			want:   domain.Profile{Region: "서울"},
		},
		{
			name:    "ready",
			profile: domain.Profile{Region: "서울"},
			msg:     "청년이에요",
			intent:  domain.IntentWelfareSearch,
			action:  dialog.ChatSearch,
			ready:   true,
			want:    domain.Profile{Region: "서울", LifeCycle: "청년"},
		},
		{
			name:   "detail without slots asks to clarify",
			msg:    "자세히 알려주세요",
			intent: domain.IntentPolicyDetail,
			action: dialog.ChatClarify,
		},
		{
			name:    "profile is never cleared",
			profile: domain.Profile{Region: "부산", LifeCycle: "노년"},
			msg:     "고마워요",
			intent:  domain.IntentChitchat,
			action:  dialog.ChatReplyChitchat,
			want:    domain.Profile{Region: "부산", LifeCycle: "노년"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := dialog.StepChat(tt.profile, tt.msg)
			assert.Equal(t, tt.intent, out.Intent)
			assert.Equal(t, tt.action, out.Action)
			assert.Equal(t, tt.ready, out.ReadyToSearch)
			assert.Equal(t, tt.want, out.Profile)
			if tt.action == dialog.ChatSearch {
				assert.Empty(t, out.Response)
				assert.NotEmpty(t, out.Query)
			} else {
				assert.NotEmpty(t, out.Response)
			}
		})
	}
}

func TestStepChat_Query(t *testing.T) {
	out := dialog.StepChat(domain.Profile{Region: "서울"}, "청년 월세")
	assert.Equal(t, "서울 청년 청년 월세", out.Query)
}

func TestChatService_EmptyMessage(t *testing.T) {
	env := newEnv(t)
	_, err := env.chat.Converse(context.Background(), dialog.ChatRequest{Message: "   "})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "메시지를 입력해주세요", verr.Message)
}

func TestChatService_SlotFillingThenSearch(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	sources := []domain.PolicySource{
		{Policy: domain.Policy{PolicyID: "p1", Title: "청년 월세 지원"}, Score: 1},
		{Policy: domain.Policy{PolicyID: "p2", Title: "청년 주거급여"}, Score: 0.92},
	}
	env.searcher.On("Search", mock.Anything, "서울 청년 청년이에요", domain.SearchFilter{Region: "서울"}, dialog.DefaultTopK).
		Return(sources, nil).Once()

	first, err := env.chat.Converse(ctx, dialog.ChatRequest{Message: "28살 서울 월세 지원"})
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{32}$`, first.SessionID)
	assert.Equal(t, domain.IntentWelfareSearch, first.Intent)
	assert.False(t, first.ReadyToSearch)
	assert.Equal(t, "서울", first.UserProfile.Region)
	assert.Contains(t, first.Response, "현재 상황에 해당하는 것이 있으신가요?")
	assert.Nil(t, first.Sources)

	second, err := env.chat.Converse(ctx, dialog.ChatRequest{Message: "청년이에요", SessionID: first.SessionID})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.True(t, second.ReadyToSearch)
	assert.Equal(t, domain.Profile{Region: "서울", LifeCycle: "청년"}, second.UserProfile)
	assert.Equal(t, sources, second.Sources)
	assert.Equal(t, dialog.FallbackAnswer(sources), second.Response)
	assert.Contains(t, second.Response, "1. 청년 월세 지원\n2. 청년 주거급여")

	assert.Equal(t, []string{
		stream.EventSession, stream.EventIntent, stream.EventProfile, stream.EventSources, stream.EventAnswer, stream.EventDone,
	}, eventNames(second))

	stored, err := env.sessions.Get(ctx, first.SessionID)
	require.NoError(t, err)
	assert.Len(t, stored.History, 4)

	env.searcher.AssertExpectations(t)
}

func TestChatService_Generator(t *testing.T) {
	ctx := context.Background()
	sources := []domain.PolicySource{{Policy: domain.Policy{Title: "노인 돌봄"}}}

	tests := []struct {
		name     string
		text     string
		err      error
		want     string
		fallback bool
	}{
		{name: "generated", text: "노인 돌봄 서비스를 신청해보세요.", want: "노인 돌봄 서비스를 신청해보세요."},
		{name: "empty", text: "  ", want: "답변을 생성하지 못했습니다."},
		{name: "failed", err: errors.New("upstream 503"), want: "관련 정책 1건을 찾았습니다. 상세 내용은 정책 카드를 확인해주세요.", fallback: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &mockSearcher{}
			searcher.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(sources, nil).Once()
			gen := &mockGenerator{}
			gen.On("Generate", mock.Anything, "부산 어르신 돌봄 혜택", sources).Return(tt.text, tt.err).Once()

			var fallbacks []*domain.FallbackEvent
			hooks := domain.TurnHooks{OnAnswerFallback: func(_ context.Context, e *domain.FallbackEvent) {
				fallbacks = append(fallbacks, e)
			}}
			svc := dialog.NewChatService(session.NewManager(memory.NewStore()), searcher, gen, dialog.WithHooks(hooks))
			require.True(t, svc.GeneratorConfigured())

			res, err := svc.Converse(ctx, dialog.ChatRequest{Message: "부산 어르신 돌봄 혜택"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Response)
			if tt.fallback {
				require.Len(t, fallbacks, 1)
				assert.Equal(t, 1, fallbacks[0].Sources)
				assert.ErrorIs(t, fallbacks[0].Err, tt.err)
			} else {
				assert.Empty(t, fallbacks)
			}
			gen.AssertExpectations(t)
		})
	}
}

func TestChatService_SearchFailureYieldsNoSources(t *testing.T) {
	env := newEnv(t)
	env.searcher.On("Search", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrUnavailable).Once()

	res, err := env.chat.Converse(context.Background(), dialog.ChatRequest{Message: "서울 청년 지원"})
	require.NoError(t, err)
	assert.True(t, res.ReadyToSearch)
	assert.Empty(t, res.Sources)
	assert.Equal(t, "죄송합니다. 검색 조건에 맞는 정책을 찾지 못했습니다. 다른 키워드로 다시 검색해보세요.", res.Response)
	assert.False(t, env.chat.GeneratorConfigured())
}

func TestChatService_UnknownSessionStartsFresh(t *testing.T) {
	env := newEnv(t)
	res, err := env.chat.Converse(context.Background(), dialog.ChatRequest{Message: "안녕", SessionID: "doesnotexist"})
	require.NoError(t, err)
	assert.NotEqual(t, "doesnotexist", res.SessionID)
	assert.Equal(t, domain.IntentChitchat, res.Intent)
}

func TestChatService_TurnHook(t *testing.T) {
	var turns []*domain.TurnEvent
	env := newEnv(t, dialog.WithHooks(domain.TurnHooks{OnTurn: func(_ context.Context, e *domain.TurnEvent) {
		turns = append(turns, e)
	}}))

	res, err := env.chat.Converse(context.Background(), dialog.ChatRequest{Message: "반가워요"})
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, domain.KindChat, turns[0].Track)
	assert.Equal(t, res.SessionID, turns[0].SessionID)
	assert.Equal(t, domain.IntentChitchat, turns[0].Intent)
}

func TestFallbackAnswer_ListsAtMostThree(t *testing.T) {
	sources := make([]domain.PolicySource, 5)
	for i := range sources {
		sources[i].Title = string(rune('A' + i))
	}
	text := dialog.FallbackAnswer(sources)
	assert.Contains(t, text, "3. C")
	assert.NotContains(t, text, "4. D")
	assert.Equal(t, "죄송합니다. 답변 생성 중 오류가 발생했습니다.", dialog.GenerationFailedAnswer(nil))
}
