// Package redis provides Redis helpers shared by integration tests.
package redis

import (
	"context"
	"os"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

// InitSuite connects to the test Redis instance. The address defaults to
// redis:6379 and may be overridden with SUIHEI_TEST_REDIS_ADDR.
func InitSuite(ctx context.Context, t *testing.T) *Suite {
	t.Helper()

	redisAddr := "redis:6379"
	if addr := os.Getenv("SUIHEI_TEST_REDIS_ADDR"); addr != "" {
		redisAddr = addr
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: "",
	})
	err := rdb.Ping(ctx).Err()
	require.Nil(t, err)

	t.Cleanup(func() { _ = rdb.Close() })

	return &Suite{Redis: rdb}
}

type Suite struct {
	Redis *redis.Client
}
