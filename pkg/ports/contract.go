package ports

import (
	"context"
	"testing"
	"time"

	"github.com/benepick/benepick/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		s := domain.NewSession(sessionID, domain.KindRegistration, time.Now().UTC())
		s.Step = string(domain.RegCollectEmail)
		s.Registration = domain.RegistrationSlots{Name: "홍길동", Password: "secret123"}
		s.Append(domain.RoleUser, "홍길동", time.Now().UTC())

		require.NoError(t, store.Save(ctx, s), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, s.ID, loaded.ID)
		assert.Equal(t, domain.KindRegistration, loaded.Kind)
		assert.Equal(t, s.Step, loaded.Step)
		assert.Equal(t, "홍길동", loaded.Registration.Name)
		assert.Equal(t, "secret123", loaded.Registration.Password)
		require.Len(t, loaded.History, 1)
		assert.Equal(t, "홍길동", loaded.History[0].Text)
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Step = "mutated"
		loaded.History = append(loaded.History, domain.Message{Role: domain.RoleAssistant, Text: "x"})

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", again.Step)
		assert.Len(t, again.History, 1)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSession(sessionID, domain.KindChat, time.Now())))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		err = store.Delete(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "second Delete should report a missing session")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, domain.NewSession(id1, domain.KindChat, time.Now())))
		require.NoError(t, store.Save(ctx, domain.NewSession(id2, domain.KindOnboarding, time.Now())))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
