package middleware_test

import (
	"context"
	"testing"
	"time"

	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactionMiddleware_MasksHistory(t *testing.T) {
	underlyingStore := NewMockStore()
	store := middleware.NewRedactionMiddleware(middleware.DefaultRedactionPatterns)(underlyingStore)
	ctx := context.Background()

	s := domain.NewSession("chat-1", domain.KindChat, time.Now())
	s.Append(domain.RoleUser, "연락처는 010-1234-5678 이에요", time.Now())
	s.Append(domain.RoleUser, "주민번호 900101-1234567", time.Now())
	s.Profile.Region = "서울"
	require.NoError(t, store.Save(ctx, s))

	stored, err := underlyingStore.Load(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, "연락처는 *** 이에요", stored.History[0].Text)
	assert.Equal(t, "주민번호 ***", stored.History[1].Text)
	assert.Equal(t, "서울", stored.Profile.Region)

	// The caller's copy is untouched.
	assert.Equal(t, "연락처는 010-1234-5678 이에요", s.History[0].Text)
}

func TestChain_OrderIsOutermostFirst(t *testing.T) {
	underlyingStore := NewMockStore()
	key := make([]byte, 32)
	store := middleware.Chain(underlyingStore,
		middleware.NewRedactionMiddleware(middleware.DefaultRedactionPatterns),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)
	ctx := context.Background()

	s := domain.NewSession("chat-2", domain.KindChat, time.Now())
	s.Append(domain.RoleUser, "01012345678", time.Now())
	require.NoError(t, store.Save(ctx, s))

	loaded, err := store.Load(ctx, "chat-2")
	require.NoError(t, err)
	assert.Equal(t, "***", loaded.History[0].Text, "redaction runs before sealing")
}
