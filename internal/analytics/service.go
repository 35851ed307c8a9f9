// Package analytics derives dashboard figures from sales and catalog data.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/omnimarket/omnimarket/internal/catalog"
	"github.com/omnimarket/omnimarket/internal/sales"
)

// DigestSize is the number of most recent transactions in an insight digest.
const DigestSize = 20

const recentSize = 5

// TransactionSource lists completed sales.
type TransactionSource interface {
	List(ctx context.Context, filter sales.TransactionFilter) ([]sales.Transaction, error)
}

// ProductSource lists catalog products.
type ProductSource interface {
	List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Product, error)
}

// ThresholdSource provides the low-stock threshold.
type ThresholdSource interface {
	LowStockThreshold(ctx context.Context) (int, error)
}

// TopProduct is the best selling product by revenue.
type TopProduct struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// RecentTransaction is a compact row of the latest sales.
type RecentTransaction struct {
	ID            string              `json:"id"`
	Date          time.Time           `json:"date"`
	Total         decimal.Decimal     `json:"total"`
	PaymentMethod sales.PaymentMethod `json:"paymentMethod"`
	CashierName   string              `json:"cashierName"`
}

// Summary holds the dashboard figures of one branch, or of all branches when BranchID is empty.
type Summary struct {
	BranchID          string                     `json:"branchId,omitempty"`
	TotalRevenue      decimal.Decimal            `json:"totalRevenue"`
	TransactionCount  int                        `json:"transactionCount"`
	LowStockCount     int                        `json:"lowStockCount"`
	LowStockThreshold int                        `json:"lowStockThreshold"`
	RevenueByMethod   map[string]decimal.Decimal `json:"revenueByMethod"`
	TopProduct        *TopProduct                `json:"topProduct,omitempty"`
	Recent            []RecentTransaction        `json:"recent"`
	GeneratedAt       time.Time                  `json:"generatedAt"`
}

// DigestEntry condenses one transaction for an external sales analyst.
type DigestEntry struct {
	Date  time.Time       `json:"date"`
	Total decimal.Decimal `json:"total"`
	Items []string        `json:"items"`
}

// Service coordinates analytics computation with the cache layer.
type Service struct {
	transactions TransactionSource
	products     ProductSource
	thresholds   ThresholdSource
	cache        *Cache
	group        singleflight.Group
	now          func() time.Time
}

// NewService wires the data sources with an optional Cache.
func NewService(transactions TransactionSource, products ProductSource, thresholds ThresholdSource, cache *Cache) *Service {
	return &Service{transactions: transactions, products: products, thresholds: thresholds, cache: cache, now: time.Now}
}

// Summary returns the cached dashboard figures, computing them once per cache
// version even under concurrent callers.
func (s *Service) Summary(ctx context.Context, branchID string) (Summary, error) {
	key, err := s.cache.BuildKey(ctx, "omnimarket", "analytics", "summary", branchToken(branchID))
	if err != nil {
		return Summary{}, err
	}
	resultChan := s.group.DoChan(key, func() (any, error) {
		// Shared by every caller waiting on key, so one caller leaving must not cancel it.
		ctx := context.WithoutCancel(ctx)
		var summary Summary
		err := s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (any, error) {
			return s.computeSummary(ctx, branchID)
		})
		return summary, err
	})
	select {
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return Summary{}, res.Err
		}
		return res.Val.(Summary), nil
	}
}

// Invalidate drops every cached summary.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

func (s *Service) computeSummary(ctx context.Context, branchID string) (Summary, error) {
	txs, err := s.transactions.List(ctx, sales.TransactionFilter{BranchID: branchID})
	if err != nil {
		return Summary{}, err
	}
	threshold, err := s.thresholds.LowStockThreshold(ctx)
	if err != nil {
		return Summary{}, err
	}
	low, err := s.products.List(ctx, catalog.ListFilter{BranchID: branchID, LowStockOnly: true, Threshold: threshold})
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		BranchID:          branchID,
		TotalRevenue:      decimal.Zero,
		TransactionCount:  len(txs),
		LowStockCount:     len(low),
		LowStockThreshold: threshold,
		RevenueByMethod:   map[string]decimal.Decimal{},
		Recent:            []RecentTransaction{},
		GeneratedAt:       s.now().UTC(),
	}
	byProduct := map[string]*TopProduct{}
	order := []string{}
	for _, tx := range txs {
		summary.TotalRevenue = summary.TotalRevenue.Add(tx.Total)
		method := string(tx.PaymentMethod)
		summary.RevenueByMethod[method] = summary.RevenueByMethod[method].Add(tx.Total)
		for _, item := range tx.Items {
			top, ok := byProduct[item.ID]
			if !ok {
				top = &TopProduct{ProductID: item.ID, Name: item.Name, Revenue: decimal.Zero}
				byProduct[item.ID] = top
				order = append(order, item.ID)
			}
			top.Revenue = top.Revenue.Add(item.Subtotal)
		}
	}
	for _, id := range order {
		if summary.TopProduct == nil || byProduct[id].Revenue.GreaterThan(summary.TopProduct.Revenue) {
			summary.TopProduct = byProduct[id]
		}
	}
	for i := len(txs) - 1; i >= 0 && len(summary.Recent) < recentSize; i-- {
		tx := txs[i]
		summary.Recent = append(summary.Recent, RecentTransaction{
			ID:            tx.ID,
			Date:          tx.Date,
			Total:         tx.Total,
			PaymentMethod: tx.PaymentMethod,
			CashierName:   tx.CashierName,
		})
	}
	return summary, nil
}

// InsightDigest condenses the latest DigestSize transactions into the form
// handed to an external AI analyst. Items read "name (qty unit)".
func (s *Service) InsightDigest(ctx context.Context, branchID string) ([]DigestEntry, error) {
	txs, err := s.transactions.List(ctx, sales.TransactionFilter{BranchID: branchID, Limit: DigestSize})
	if err != nil {
		return nil, err
	}
	out := make([]DigestEntry, 0, len(txs))
	for _, tx := range txs {
		items := make([]string, 0, len(tx.Items))
		for _, item := range tx.Items {
			items = append(items, fmt.Sprintf("%s (%d %s)", item.Name, item.Qty, item.SelectedUnit))
		}
		out = append(out, DigestEntry{Date: tx.Date, Total: tx.Total, Items: items})
	}
	return out, nil
}

func branchToken(branchID string) string {
	if branchID == "" {
		return "-"
	}
	return branchID
}
