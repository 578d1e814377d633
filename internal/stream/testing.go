package stream

import (
	"context"
	"testing"
	"time"

	"github.com/tjper/suihei/internal/event"
	iredis "github.com/tjper/suihei/internal/redis"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// InitSuite creates a Suite backed by the test Redis instance. Each Suite
// uses its own stream key.
func InitSuite(ctx context.Context, t *testing.T) *Suite {
	t.Helper()

	rdb := iredis.InitSuite(ctx, t).Redis
	key := "test-stream-" + t.Name()

	err := rdb.Del(ctx, key).Err()
	require.Nil(t, err)

	client, err := Init(ctx, zap.NewNop(), rdb, key)
	require.Nil(t, err)

	return &Suite{Client: client}
}

type Suite struct {
	Client *Client
}

func (s Suite) ReadEvent(ctx context.Context, t *testing.T) *event.ChangeEvent {
	t.Helper()

	m, err := s.Client.Read(ctx)
	require.Nil(t, err)

	e, err := event.Parse(m.Payload)
	require.Nil(t, err)

	return e
}

func (s Suite) AssertNoEvent(ctx context.Context, t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()

	_, err := s.Client.Read(ctx)
	require.NotNil(t, err)
}
