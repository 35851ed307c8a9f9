package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestConnectRedisEnablesCacheAndQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	deps := ConnectRedis(context.Background(), client, &Config{RedisAddr: mr.Addr(), AnalyticsCacheTTL: time.Minute}, nil)
	t.Cleanup(func() { _ = deps.Close() })
	require.NotNil(t, deps.Cache)
	require.NotNil(t, deps.Queue)
}

func TestConnectRedisWithoutServerDisablesQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	client := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	deps := ConnectRedis(context.Background(), client, &Config{RedisAddr: addr}, nil)
	require.Nil(t, deps.Cache)
	require.True(t, deps.Queue == nil, "queue must be an untyped nil so no alerts are wired")
	require.NoError(t, deps.Close())
}
