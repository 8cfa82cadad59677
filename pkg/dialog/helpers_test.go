package dialog_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/benepick/benepick/pkg/adapters/memory"
	"github.com/benepick/benepick/pkg/dialog"
	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/session"
	"github.com/benepick/benepick/pkg/stream"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) CreateUser(ctx context.Context, email, password, name string) (*domain.User, error) {
	args := m.Called(ctx, email, password, name)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserStore) UserExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserStore) FindUserByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserStore) SaveProfile(ctx context.Context, userID int64, profile domain.Profile) error {
	args := m.Called(ctx, userID, profile)
	return args.Error(0)
}

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, query string, filter domain.SearchFilter, topK int) ([]domain.PolicySource, error) {
	args := m.Called(ctx, query, filter, topK)
	sources, _ := args.Get(0).([]domain.PolicySource)
	return sources, args.Error(1)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, query string, sources []domain.PolicySource) (string, error) {
	args := m.Called(ctx, query, sources)
	return args.String(0), args.Error(1)
}

type env struct {
	sessions     *session.Manager
	users        *mockUserStore
	tokens       *memory.TokenIssuer
	searcher     *mockSearcher
	registration *dialog.RegistrationService
	onboarding   *dialog.OnboardingService
	chat         *dialog.ChatService
}

func newEnv(t *testing.T, opts ...dialog.Option) *env {
	t.Helper()
	e := &env{
		sessions: session.NewManager(memory.NewStore()),
		users:    &mockUserStore{},
		tokens:   memory.NewTokenIssuer(),
		searcher: &mockSearcher{},
	}
	e.registration = dialog.NewRegistrationService(e.sessions, e.users, e.tokens, opts...)
	e.onboarding = dialog.NewOnboardingService(e.sessions, e.users, opts...)
	e.chat = dialog.NewChatService(e.sessions, e.searcher, nil, opts...)
	return e
}

// streamEvents renders the events of a result as "name data" lines.
func streamEvents(t *testing.T, f stream.Framer) []string {
	t.Helper()
	var out []string
	for e := range stream.Events(f.Frame()) {
		data, err := json.Marshal(e.Data)
		require.NoError(t, err)
		out = append(out, e.Name+" "+string(data))
	}
	return out
}

func eventNames(f stream.Framer) []string {
	var names []string
	for e := range stream.Events(f.Frame()) {
		if len(names) > 0 && names[len(names)-1] == e.Name && (e.Name == stream.EventMessage || e.Name == stream.EventAnswer) {
			continue
		}
		names = append(names, e.Name)
	}
	return names
}
