package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan counts low-stock products per branch.
	TaskLowStockScan = "inventory:low_stock_scan"
	// TaskLowStockAlert reports a single product that fell to the threshold.
	TaskLowStockAlert = "inventory:low_stock_alert"
	// TaskSalesSummary refreshes the cached dashboard summary.
	TaskSalesSummary = "sales:summary"
)

// LowStockScanPayload scopes a scan. An empty BranchID scans every branch.
type LowStockScanPayload struct {
	BranchID string `json:"branch_id,omitempty"`
}

// LowStockAlertPayload describes the product behind an alert.
type LowStockAlertPayload struct {
	AdjustmentID string    `json:"adjustment_id"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	BranchID     string    `json:"branch_id"`
	Stock        string    `json:"stock"`
	Threshold    int       `json:"threshold"`
	PostedAt     time.Time `json:"posted_at"`
}

// SalesSummaryPayload carries scheduling metadata.
type SalesSummaryPayload struct {
	BranchID     string    `json:"branch_id,omitempty"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewLowStockScanTask constructs an Asynq task for the low-stock scan.
func NewLowStockScanTask(branchID string) (*asynq.Task, error) {
	body, err := json.Marshal(LowStockScanPayload{BranchID: branchID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, body, asynq.Queue(QueueDefault)), nil
}

// NewLowStockAlertTask constructs an Asynq task for a low-stock alert.
func NewLowStockAlertTask(payload LowStockAlertPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockAlert, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// NewSalesSummaryTask constructs an Asynq task for the summary refresh.
func NewSalesSummaryTask(branchID string, at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(SalesSummaryPayload{BranchID: branchID, ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSalesSummary, body, asynq.Queue(QueueDefault)), nil
}

// TaskByName builds a task with its default payload. ok is false for unknown names.
func TaskByName(name string, now time.Time) (task *asynq.Task, ok bool, err error) {
	switch name {
	case TaskLowStockScan:
		task, err = NewLowStockScanTask("")
	case TaskSalesSummary:
		task, err = NewSalesSummaryTask("", now)
	default:
		return nil, false, nil
	}
	return task, true, err
}
