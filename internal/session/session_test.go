package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMock(t *testing.T) {
	ctx := context.Background()
	user := User{ID: 7, Username: "mock", Nickname: "Mock"}

	t.Run("create and retrieve", func(t *testing.T) {
		m := NewMock()
		sess := New("a", user, time.Hour)

		require.Nil(t, m.CreateSession(ctx, *sess, time.Hour))
		require.ErrorIs(t, m.CreateSession(ctx, *sess, time.Hour), ErrSessionIDNotUnique)

		actual, err := m.RetrieveSession(ctx, "a")
		require.Nil(t, err)
		require.True(t, sess.Equal(*actual))
	})

	t.Run("absolute expiration", func(t *testing.T) {
		m := NewMock()
		sess := New("b", user, -time.Second)

		require.Nil(t, m.CreateSession(ctx, *sess, time.Hour))

		_, err := m.RetrieveSession(ctx, "b")
		require.ErrorIs(t, err, ErrSessionDNE)
	})

	t.Run("invalidate", func(t *testing.T) {
		m := NewMock()
		sess := New("c", user, time.Hour)

		require.Nil(t, m.CreateSession(ctx, *sess, time.Hour))
		require.Nil(t, m.InvalidateUserSessionsBefore(ctx, user.ID, time.Now().Add(time.Second)))

		_, err := m.RetrieveSession(ctx, "c")
		require.ErrorIs(t, err, ErrSessionDNE)
	})

	t.Run("touch dne", func(t *testing.T) {
		m := NewMock()
		require.ErrorIs(t, m.TouchSession(ctx, "missing", time.Hour), ErrSessionDNE)
	})

	t.Run("delete", func(t *testing.T) {
		m := NewMock()
		sess := New("d", user, time.Hour)

		require.Nil(t, m.CreateSession(ctx, *sess, time.Hour))
		require.Nil(t, m.DeleteSession(ctx, *sess))

		_, err := m.RetrieveSession(ctx, "d")
		require.ErrorIs(t, err, ErrSessionDNE)
	})
}

func TestContext(t *testing.T) {
	ctx := context.Background()

	_, ok := UserFromContext(ctx)
	require.False(t, ok)

	sess := New("id", User{ID: 3, Username: "ctx"}, time.Hour)
	ctx = WithSession(ctx, sess)

	user, ok := UserFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, int64(3), user.ID)
	require.True(t, sess.IsAuthorized(3))
	require.False(t, sess.IsAuthorized(4))
}
