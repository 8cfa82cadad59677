package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/benepick/benepick/pkg/adapters/redis"
	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ports.RunSessionStoreContract(t, store)
}

func TestRedisStore_SessionExpiry(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("test:"))
	ctx := context.Background()

	s := domain.NewSession("reg_abc", domain.KindRegistration, time.Now())
	s.Step = string(domain.RegCompleted)
	s.ExpiresAt = time.Now().Add(60 * time.Second)
	require.NoError(t, store.Save(ctx, s))

	assert.True(t, mr.Exists("test:reg_abc"))
	ttl := mr.TTL("test:reg_abc")
	assert.InDelta(t, 60, ttl.Seconds(), 2)

	mr.FastForward(61 * time.Second)

	_, err := store.Load(ctx, "reg_abc")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisStore_DefaultTTL(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewSession("chat-1", domain.KindChat, time.Now())))
	assert.Equal(t, time.Hour, mr.TTL("benepick:session:chat-1"))
}

func TestRedisStore_SaveAlreadyExpiredRemoves(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	s := domain.NewSession("onb_1", domain.KindOnboarding, time.Now())
	require.NoError(t, store.Save(ctx, s))

	s.ExpiresAt = time.Now().Add(-time.Second)
	require.NoError(t, store.Save(ctx, s))

	_, err := store.Load(ctx, "onb_1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ids, "onb_1")
}

func TestRedisStore_ListPrunesIndex(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	s := domain.NewSession("reg_old", domain.KindRegistration, time.Now())
	s.ExpiresAt = time.Now().Add(time.Second)
	require.NoError(t, store.Save(ctx, s))

	// The index score is second-granular wall-clock time.
	time.Sleep(2100 * time.Millisecond)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, ids, "reg_old")
}
