package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentPostedEvent represents a manual adjustment that has been persisted.
type AdjustmentPostedEvent struct {
	AdjustmentID string
	ProductID    string
	ProductName  string
	BranchID     string
	NewStock     decimal.Decimal
	Delta        decimal.Decimal
	PostedAt     time.Time
}
