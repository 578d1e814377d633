package session

import (
	"context"
	"testing"
	"time"

	"github.com/tjper/suihei/internal/rand"
	iredis "github.com/tjper/suihei/internal/redis"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func InitSuite(ctx context.Context, t *testing.T) *Suite {
	t.Helper()

	rdb := iredis.InitSuite(ctx, t).Redis

	return &Suite{
		Manager: NewManager(zap.NewNop(), rdb),
	}
}

type Suite struct {
	Manager *Manager
}

func (s Suite) NewSession(ctx context.Context, t *testing.T, userID int64, username string) *Session {
	t.Helper()

	id, err := rand.GenerateString(16)
	require.Nil(t, err)

	return New(
		id,
		User{
			ID:       userID,
			Username: username,
			Nickname: username,
		},
		time.Minute,
	)
}

func (s Suite) CreateSession(ctx context.Context, t *testing.T, userID int64, username string) *Session {
	t.Helper()

	sess := s.NewSession(ctx, t, userID, username)

	err := s.Manager.CreateSession(ctx, *sess, time.Minute)
	require.Nil(t, err)

	return sess
}
