package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/benepick/benepick/pkg/adapters/memory"
	"github.com/benepick/benepick/pkg/dialog"
	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/input"
	"github.com/benepick/benepick/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSearcher []domain.PolicySource

func (s staticSearcher) Search(context.Context, string, domain.SearchFilter, int) ([]domain.PolicySource, error) {
	return s, nil
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *session.Manager) {
	t.Helper()
	sessions := session.NewManager(memory.NewStore())
	searcher := staticSearcher{{Policy: domain.Policy{PolicyID: "P001", Title: "청년 월세 한시 특별지원"}, Score: 1}}
	chat := dialog.NewChatService(sessions, searcher, nil)
	return NewServer(chat, sessions, opts...), sessions
}

func TestHandleChat(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	first, err := s.handleChat(ctx, mcp.CallToolRequest{}, map[string]any{"message": "서울 사는 청년인데 월세 지원 있나요?"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.SessionID)
	assert.True(t, first.ReadyToSearch)
	require.Len(t, first.Sources, 1)
	assert.Contains(t, first.Response, "청년 월세 한시 특별지원")

	second, err := s.handleChat(ctx, mcp.CallToolRequest{}, map[string]any{"message": "고마워", "session_id": first.SessionID})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, domain.IntentChitchat, second.Intent)
	assert.Equal(t, "서울", second.UserProfile.Region)
}

func TestHandleChat_Rejections(t *testing.T) {
	s, _ := newTestServer(t, WithSanitizer(input.New(16)))
	ctx := context.Background()

	_, err := s.handleChat(ctx, mcp.CallToolRequest{}, map[string]any{"message": ""})
	require.Error(t, err)
	assert.Equal(t, "메시지를 입력해주세요", err.Error())

	_, err = s.handleChat(ctx, mcp.CallToolRequest{}, map[string]any{"message": strings.Repeat("a", 17)})
	assert.ErrorIs(t, err, input.ErrTooLarge)

	_, err = s.handleChat(ctx, mcp.CallToolRequest{}, map[string]any{"message": 42})
	assert.ErrorContains(t, err, "invalid arguments")
}

func TestHandleDelete(t *testing.T) {
	s, sessions := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleChat(ctx, mcp.CallToolRequest{}, map[string]any{"message": "안녕하세요"})
	require.NoError(t, err)

	del, err := s.handleDelete(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": res.SessionID})
	require.NoError(t, err)
	assert.True(t, del.Deleted)

	_, err = sessions.Get(ctx, res.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	del, err = s.handleDelete(ctx, mcp.CallToolRequest{}, map[string]any{"session_id": res.SessionID})
	require.NoError(t, err)
	assert.False(t, del.Deleted)

	_, err = s.handleDelete(ctx, mcp.CallToolRequest{}, map[string]any{})
	assert.Error(t, err)
}

func TestHandleSessions(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleChat(ctx, mcp.CallToolRequest{}, map[string]any{"message": "안녕하세요"})
	require.NoError(t, err)

	contents, err := s.handleSessions(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, SessionsURI, text.URI)

	var counts map[string]int
	require.NoError(t, json.Unmarshal([]byte(text.Text), &counts))
	assert.Equal(t, 1, counts["chat"])
}
