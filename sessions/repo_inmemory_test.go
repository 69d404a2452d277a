package sessions_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkobayashi/summarize-portal/sessions"
)

func TestInMemoryRepo_Get(t *testing.T) {
	repo := sessions.NewInMemoryRepo()

	t.Run("creates an empty session on first access", func(t *testing.T) {
		session, err := repo.Get("session-1")
		require.NoError(t, err)
		require.Equal(t, "session-1", session.ID)
		require.Nil(t, session.TokenSet)
		require.Nil(t, session.PendingAction)
		require.Nil(t, session.AuthRequest)
	})

	t.Run("requires a session id", func(t *testing.T) {
		_, err := repo.Get("")
		require.Error(t, err)
	})
}

func TestInMemoryRepo_Update(t *testing.T) {
	repo := sessions.NewInMemoryRepo()

	t.Run("mutation is visible to subsequent reads", func(t *testing.T) {
		_, err := repo.Update("session-1", func(s *sessions.Session) {
			s.PendingAction = &sessions.PendingAction{Payload: "Hello", SubmittedAt: time.Now()}
		})
		require.NoError(t, err)

		session, err := repo.Get("session-1")
		require.NoError(t, err)
		require.NotNil(t, session.PendingAction)
		require.Equal(t, "Hello", session.PendingAction.Payload)
	})

	t.Run("returned session is a copy", func(t *testing.T) {
		session, err := repo.Update("session-2", func(s *sessions.Session) {
			s.TokenSet = &sessions.TokenSet{AccessToken: "token"}
		})
		require.NoError(t, err)

		session.TokenSet.AccessToken = "tampered"

		stored, err := repo.Get("session-2")
		require.NoError(t, err)
		require.Equal(t, "token", stored.TokenSet.AccessToken)
	})

	t.Run("sessions with different ids never interact", func(t *testing.T) {
		_, err := repo.Update("session-a", func(s *sessions.Session) {
			s.PendingAction = &sessions.PendingAction{Payload: "for a"}
		})
		require.NoError(t, err)

		other, err := repo.Get("session-b")
		require.NoError(t, err)
		require.Nil(t, other.PendingAction)
	})

	t.Run("requires a mutation", func(t *testing.T) {
		_, err := repo.Update("session-1", nil)
		require.Error(t, err)
	})

	t.Run("concurrent updates to the same session serialize", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Update("session-racy", func(s *sessions.Session) {
					if s.LastResult == nil {
						s.LastResult = &sessions.Result{}
					}
					s.LastResult.Output += "x"
				})
				require.NoError(t, err)
			}()
		}
		wg.Wait()

		session, err := repo.Get("session-racy")
		require.NoError(t, err)
		require.Len(t, session.LastResult.Output, 50)
	})
}

func TestInMemoryRepo_Destroy(t *testing.T) {
	repo := sessions.NewInMemoryRepo()

	_, err := repo.Update("session-1", func(s *sessions.Session) {
		s.TokenSet = &sessions.TokenSet{AccessToken: "token"}
		s.LastResult = &sessions.Result{Output: "summary"}
	})
	require.NoError(t, err)

	require.NoError(t, repo.Destroy("session-1"))

	t.Run("all state is discarded", func(t *testing.T) {
		session, err := repo.Get("session-1")
		require.NoError(t, err)
		require.Nil(t, session.TokenSet)
		require.Nil(t, session.LastResult)
	})

	t.Run("destroying an unknown session is not an error", func(t *testing.T) {
		require.NoError(t, repo.Destroy("never-seen"))
	})
}
