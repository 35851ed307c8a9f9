// Package stocklog holds the append-only audit trail of manual stock adjustments.
package stocklog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omnimarket/omnimarket/internal/platform/kv"
)

// Reason classifies a manual adjustment.
type Reason string

const (
	ReasonNewStockIn          Reason = "New Stock In"
	ReasonDamagedGoods        Reason = "Damaged Goods"
	ReasonExpired             Reason = "Expired"
	ReasonStocktakeCorrection Reason = "Stocktake Correction"
	ReasonInternalUse         Reason = "Internal Use"
	ReasonOther               Reason = "Other"
)

// UnspecifiedReason is recorded when Other is chosen without free text.
const UnspecifiedReason = "Unspecified Adjustment"

// ErrInvalidReason indicates a reason outside the closed set.
var ErrInvalidReason = errors.New("stocklog: invalid reason")

// Reasons lists the closed set in display order.
func Reasons() []Reason {
	return []Reason{
		ReasonNewStockIn,
		ReasonDamagedGoods,
		ReasonExpired,
		ReasonStocktakeCorrection,
		ReasonInternalUse,
		ReasonOther,
	}
}

// Valid reports whether r belongs to the closed set.
func (r Reason) Valid() bool {
	for _, known := range Reasons() {
		if r == known {
			return true
		}
	}
	return false
}

// ReasonText returns the text stored on the adjustment record.
func ReasonText(reason Reason, custom string) (string, error) {
	if !reason.Valid() {
		return "", ErrInvalidReason
	}
	if reason != ReasonOther {
		return string(reason), nil
	}
	if text := strings.TrimSpace(custom); text != "" {
		return text, nil
	}
	return UnspecifiedReason, nil
}

// StockAdjustment is an immutable record of one manual stock change.
type StockAdjustment struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	BranchID    string          `json:"branchId"`
	Date        time.Time       `json:"date"`
	OldStock    decimal.Decimal `json:"oldStock"`
	NewStock    decimal.Decimal `json:"newStock"`
	Delta       decimal.Decimal `json:"delta"`
	Reason      string          `json:"reason"`
	AdjustedBy  string          `json:"adjustedBy"`
}

// Filter narrows List results. Empty fields match everything.
type Filter struct {
	BranchID  string
	ProductID string
	Limit     int
}

// Journal stores adjustments under the stock_adjustments key.
type Journal struct {
	mu  sync.Mutex
	doc *kv.Document[[]StockAdjustment]
}

// NewJournal builds a Journal on store.
func NewJournal(store kv.Store, codec kv.Codec) *Journal {
	return &Journal{
		doc: kv.NewDocument(store, codec, kv.KeyStockAdjustments, func() []StockAdjustment { return []StockAdjustment{} }),
	}
}

// Append adds adj to the end of the log.
func (j *Journal) Append(ctx context.Context, adj StockAdjustment) error {
	if adj.ID == "" || adj.ProductID == "" {
		return errors.New("stocklog: adjustment requires id and product id")
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	all, err := j.doc.Load(ctx)
	if err != nil {
		return err
	}
	return j.doc.Save(ctx, append(all, adj))
}

// List returns matching adjustments in insertion order. A positive Limit keeps
// only the most recent entries.
func (j *Journal) List(ctx context.Context, filter Filter) ([]StockAdjustment, error) {
	j.mu.Lock()
	all, err := j.doc.Load(ctx)
	j.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]StockAdjustment, 0, len(all))
	for _, adj := range all {
		if filter.BranchID != "" && adj.BranchID != filter.BranchID {
			continue
		}
		if filter.ProductID != "" && adj.ProductID != filter.ProductID {
			continue
		}
		out = append(out, adj)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[len(out)-filter.Limit:]
	}
	return out, nil
}
