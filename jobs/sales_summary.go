package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/omnimarket/omnimarket/internal/analytics"
	jobmetrics "github.com/omnimarket/omnimarket/internal/jobs"
)

// SummaryService is the analytics surface used by the summary job.
type SummaryService interface {
	Invalidate(ctx context.Context) error
	Summary(ctx context.Context, branchID string) (analytics.Summary, error)
}

// SalesSummaryJob drops the cached dashboard figures and computes them again
// so the first dashboard request of the day is served from cache.
type SalesSummaryJob struct {
	Analytics SummaryService
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewSalesSummaryJob initialises the summary handler.
func NewSalesSummaryJob(svc SummaryService, logger *slog.Logger, metrics *jobmetrics.Metrics) *SalesSummaryJob {
	return &SalesSummaryJob{Analytics: svc, Logger: logger, Metrics: metrics}
}

// Handle processes TaskSalesSummary tasks.
func (j *SalesSummaryJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Analytics == nil {
		return errors.New("sales summary: handler not configured")
	}
	var payload SalesSummaryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := j.Metrics.Track(TaskSalesSummary)
	defer func() { err = tracker.End(err) }()

	logger := loggerOrDefault(j.Logger).With(slog.String("branch_id", payload.BranchID))
	if err := j.Analytics.Invalidate(ctx); err != nil {
		logger.Error("invalidate analytics cache", slog.Any("error", err))
		return err
	}
	summary, err := j.Analytics.Summary(ctx, payload.BranchID)
	if err != nil {
		logger.Error("compute summary", slog.Any("error", err))
		return err
	}
	attrs := []any{
		slog.String("revenue", summary.TotalRevenue.String()),
		slog.Int("transactions", summary.TransactionCount),
		slog.Int("low_stock", summary.LowStockCount),
	}
	if summary.TopProduct != nil {
		attrs = append(attrs, slog.String("top_product", summary.TopProduct.Name))
	}
	logger.Info("sales summary refreshed", attrs...)
	return nil
}
