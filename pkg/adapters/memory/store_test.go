package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benepick/benepick/pkg/adapters/memory"
	"github.com/benepick/benepick/pkg/domain"
	"github.com/benepick/benepick/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryStore_SaveIsolatesCaller(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	s := domain.NewSession("chat-1", domain.KindChat, time.Now())
	s.Append(domain.RoleUser, "안녕", time.Now())
	require.NoError(t, store.Save(ctx, s))

	s.History[0].Text = "changed"
	s.Profile.Region = "서울"

	loaded, err := store.Load(ctx, "chat-1")
	require.NoError(t, err)
	assert.Equal(t, "안녕", loaded.History[0].Text)
	assert.Empty(t, loaded.Profile.Region)
}

func TestMemoryStore_ConcurrentDistinctIDs(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s-%d", i)
			assert.NoError(t, store.Save(ctx, domain.NewSession(id, domain.KindChat, time.Now())))
			_, err := store.Load(ctx, id)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 50)
}
