package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/omnimarket/omnimarket/internal/catalog"
	"github.com/omnimarket/omnimarket/internal/inventory"
	jobmetrics "github.com/omnimarket/omnimarket/internal/jobs"
)

// ProductLister lists catalog products.
type ProductLister interface {
	List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, error)
}

// ThresholdSource provides the low-stock threshold.
type ThresholdSource interface {
	LowStockThreshold(ctx context.Context) (int, error)
}

// Enqueuer submits tasks to the queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// LowStockScanJob counts products at or below the threshold per branch.
type LowStockScanJob struct {
	Products   ProductLister
	Thresholds ThresholdSource
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

// NewLowStockScanJob initialises the scan handler.
func NewLowStockScanJob(products ProductLister, thresholds ThresholdSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{Products: products, Thresholds: thresholds, Logger: logger, Metrics: metrics}
}

// Handle executes the scan.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Products == nil || j.Thresholds == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	_, err := j.Scan(ctx, payload.BranchID)
	return err
}

// Scan returns the number of low-stock products per branch.
func (j *LowStockScanJob) Scan(ctx context.Context, branchID string) (counts map[string]int, err error) {
	tracker := j.Metrics.Track(TaskLowStockScan)
	defer func() { err = tracker.End(err) }()

	threshold, err := j.Thresholds.LowStockThreshold(ctx)
	if err != nil {
		return nil, err
	}
	products, err := j.Products.List(ctx, catalog.ListFilter{BranchID: branchID, LowStockOnly: true, Threshold: threshold})
	if err != nil {
		return nil, err
	}
	logger := loggerOrDefault(j.Logger).With(slog.Int("threshold", threshold))
	counts = map[string]int{}
	for _, p := range products {
		counts[p.BranchID]++
		logger.Warn("low stock",
			slog.String("product_id", p.ID),
			slog.String("product", p.Name),
			slog.String("branch_id", p.BranchID),
			slog.String("stock", p.Stock.String()),
		)
	}
	branches := make([]string, 0, len(counts))
	for branch := range counts {
		branches = append(branches, branch)
	}
	sort.Strings(branches)
	for _, branch := range branches {
		j.Metrics.SetLowStock(branch, counts[branch])
	}
	logger.Info("low stock scan finished", slog.Int("products", len(products)), slog.Int("branches", len(branches)))
	return counts, nil
}

// LowStockAlertJob logs alerts raised by LowStockNotifier.
type LowStockAlertJob struct {
	Logger *slog.Logger
}

// Handle processes TaskLowStockAlert tasks.
func (j *LowStockAlertJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LowStockAlertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.ProductID == "" {
		return fmt.Errorf("low stock alert: product id missing: %w", asynq.SkipRetry)
	}
	var logger *slog.Logger
	if j != nil {
		logger = j.Logger
	}
	loggerOrDefault(logger).Warn("low stock alert",
		slog.String("product_id", payload.ProductID),
		slog.String("product", payload.ProductName),
		slog.String("branch_id", payload.BranchID),
		slog.String("stock", payload.Stock),
		slog.Int("threshold", payload.Threshold),
	)
	return nil
}

// LowStockNotifier enqueues an alert whenever a manual adjustment leaves a
// product at or below the threshold.
type LowStockNotifier struct {
	queue      Enqueuer
	thresholds ThresholdSource
	logger     *slog.Logger
}

var _ inventory.IntegrationHandler = (*LowStockNotifier)(nil)

// NewLowStockNotifier builds LowStockNotifier.
func NewLowStockNotifier(queue Enqueuer, thresholds ThresholdSource, logger *slog.Logger) *LowStockNotifier {
	return &LowStockNotifier{queue: queue, thresholds: thresholds, logger: loggerOrDefault(logger)}
}

// HandleInventoryAdjustmentPosted implements inventory.IntegrationHandler.
func (n *LowStockNotifier) HandleInventoryAdjustmentPosted(ctx context.Context, evt inventory.AdjustmentPostedEvent) error {
	if n == nil || n.queue == nil || n.thresholds == nil {
		return nil
	}
	threshold, err := n.thresholds.LowStockThreshold(ctx)
	if err != nil {
		return err
	}
	if evt.NewStock.GreaterThan(decimal.NewFromInt(int64(threshold))) {
		return nil
	}
	task, err := NewLowStockAlertTask(LowStockAlertPayload{
		AdjustmentID: evt.AdjustmentID,
		ProductID:    evt.ProductID,
		ProductName:  evt.ProductName,
		BranchID:     evt.BranchID,
		Stock:        evt.NewStock.String(),
		Threshold:    threshold,
		PostedAt:     evt.PostedAt,
	})
	if err != nil {
		return err
	}
	info, err := n.queue.Enqueue(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue low stock alert: %w", err)
	}
	if info != nil {
		n.logger.Info("low stock alert enqueued", slog.String("task_id", info.ID), slog.String("product_id", evt.ProductID))
	}
	return nil
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
