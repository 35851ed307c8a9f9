// Package inventory applies manual stock adjustments and sale deductions.
package inventory

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/omnimarket/omnimarket/internal/catalog"
	"github.com/omnimarket/omnimarket/internal/inventory/stocklog"
)

// CatalogPort abstracts the product store used by the ledger.
type CatalogPort interface {
	AdjustStock(ctx context.Context, input catalog.AdjustStockInput) (stocklog.StockAdjustment, error)
	ApplyDeductions(ctx context.Context, deductions []catalog.Deduction) error
}

// HistoryPort lists recorded adjustments.
type HistoryPort interface {
	List(ctx context.Context, filter stocklog.Filter) ([]stocklog.StockAdjustment, error)
}

// Service coordinates inventory operations.
type Service struct {
	catalog     CatalogPort
	history     HistoryPort
	integration IntegrationHandler
	logger      *slog.Logger
}

// NewService builds Service. integration and logger are optional.
func NewService(catalog CatalogPort, history HistoryPort, integration IntegrationHandler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{catalog: catalog, history: history, integration: integration, logger: logger}
}

// Adjust applies a manual adjustment and returns the single audit record it produced.
func (s *Service) Adjust(ctx context.Context, input AdjustmentInput) (stocklog.StockAdjustment, error) {
	if input.ProductID == "" {
		return stocklog.StockAdjustment{}, ErrProductRequired
	}
	reason, err := stocklog.ReasonText(input.Reason, input.CustomReason)
	if err != nil {
		return stocklog.StockAdjustment{}, err
	}
	next := func(current decimal.Decimal) (decimal.Decimal, error) {
		return NextStock(input.Mode, current, input.Amount)
	}
	adj, err := s.catalog.AdjustStock(ctx, catalog.AdjustStockInput{
		ProductID: input.ProductID,
		Next:      next,
		Reason:    reason,
		Actor:     input.Actor,
	})
	if err != nil {
		return stocklog.StockAdjustment{}, err
	}
	s.logger.Info("stock adjusted",
		slog.String("product_id", adj.ProductID),
		slog.String("mode", string(input.Mode)),
		slog.String("delta", adj.Delta.String()),
		slog.String("reason", adj.Reason),
		slog.String("actor", adj.AdjustedBy),
	)
	if s.integration != nil {
		evt := AdjustmentPostedEvent{
			AdjustmentID: adj.ID,
			ProductID:    adj.ProductID,
			ProductName:  adj.ProductName,
			BranchID:     adj.BranchID,
			NewStock:     adj.NewStock,
			Delta:        adj.Delta,
			PostedAt:     adj.Date,
		}
		if err := s.integration.HandleInventoryAdjustmentPosted(ctx, evt); err != nil {
			s.logger.Warn("adjustment integration", slog.String("adjustment_id", adj.ID), slog.Any("error", err))
		}
	}
	return adj, nil
}

// DeductSale removes sold base quantities. Sale deductions are neither floored
// nor recorded in the adjustment log.
func (s *Service) DeductSale(ctx context.Context, deductions []catalog.Deduction) error {
	return s.catalog.ApplyDeductions(ctx, deductions)
}

// History lists recorded adjustments in insertion order.
func (s *Service) History(ctx context.Context, filter stocklog.Filter) ([]stocklog.StockAdjustment, error) {
	return s.history.List(ctx, filter)
}
