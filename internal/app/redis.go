package app

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/omnimarket/omnimarket/internal/analytics"
	"github.com/omnimarket/omnimarket/jobs"
)

// RedisDeps holds the collaborators that only work with a reachable Redis.
// Both stay nil when the ping fails, so services fall back to uncached
// analytics and skip low-stock alerts.
type RedisDeps struct {
	Cache *analytics.Cache
	Queue jobs.Enqueuer

	queue *jobs.Client
}

// ConnectRedis pings client and builds the analytics cache and job queue on success.
func ConnectRedis(ctx context.Context, client *redis.Client, cfg *Config, logger *slog.Logger) RedisDeps {
	if logger == nil {
		logger = slog.Default()
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping, analytics cache and job queue disabled", slog.Any("error", err))
		return RedisDeps{}
	}
	queue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	return RedisDeps{
		Cache: analytics.NewCache(client, cfg.AnalyticsCacheTTL),
		Queue: queue,
		queue: queue,
	}
}

// Close releases the job queue client.
func (d RedisDeps) Close() error {
	return d.queue.Close()
}
