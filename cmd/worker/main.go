package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/omnimarket/omnimarket/internal/analytics"
	"github.com/omnimarket/omnimarket/internal/app"
	jobmetrics "github.com/omnimarket/omnimarket/internal/jobs"
	"github.com/omnimarket/omnimarket/internal/platform/kv"
	"github.com/omnimarket/omnimarket/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	codec, err := kv.CodecByName(cfg.StoreCodec)
	if err != nil {
		logger.Error("store codec", slog.Any("error", err))
		os.Exit(1)
	}
	store, err := kv.Open(ctx, cfg.StoreOptions())
	if err != nil {
		logger.Error("open store", slog.String("driver", cfg.StoreDriver), slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := kv.Close(store); err != nil {
			logger.Warn("store close", slog.Any("error", err))
		}
	}()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	services := app.NewServices(app.ServiceDeps{
		Store:  store,
		Codec:  codec,
		Logger: logger,
		Cache:  analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL),
	})
	metrics := jobmetrics.NewMetrics(nil)

	scanJob := jobs.NewLowStockScanJob(services.Catalog, services.Settings, logger, metrics)
	alertJob := &jobs.LowStockAlertJob{Logger: logger}
	summaryJob := jobs.NewSalesSummaryJob(services.Analytics, logger, metrics)

	scanTask, err := jobs.NewLowStockScanTask("")
	if err != nil {
		logger.Error("build low stock task", slog.Any("error", err))
		os.Exit(1)
	}
	summaryTask, err := jobs.NewSalesSummaryTask("", time.Now().UTC())
	if err != nil {
		logger.Error("build sales summary task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLowStockScan, Handler: scanJob.Handle},
			{Type: jobs.TaskLowStockAlert, Handler: alertJob.Handle},
			{Type: jobs.TaskSalesSummary, Handler: summaryJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.LowStockCron, Task: scanTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.SalesSummaryCron, Task: summaryTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
