package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/omnimarket/omnimarket/internal/inventory/stocklog"
	"github.com/omnimarket/omnimarket/internal/shared"
	"github.com/omnimarket/omnimarket/internal/units"
)

// StockRecorder receives adjustment records produced by AdjustStock.
type StockRecorder interface {
	Append(ctx context.Context, adj stocklog.StockAdjustment) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates catalog reads and writes. Writes are serialised.
type Service struct {
	mu        sync.Mutex
	repo      Repository
	recorder  StockRecorder
	audit     AuditPort
	logger    *slog.Logger
	validator *validator.Validate
	now       func() time.Time
	newID     func(prefix string) string
}

// NewService builds Service. audit and logger are optional.
func NewService(repo Repository, recorder StockRecorder, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		recorder:  recorder,
		audit:     audit,
		logger:    logger,
		validator: validator.New(),
		now:       time.Now,
		newID:     newID,
	}
}

func newID(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString())
}

// List returns products matching filter in insertion order.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]Product, 0, len(all))
	for _, p := range all {
		if filter.BranchID != "" && p.BranchID != filter.BranchID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(p.SKU, strings.TrimSpace(filter.Search)) {
			continue
		}
		if filter.LowStockOnly && !p.IsLowStock(filter.Threshold) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

// ListByBranch returns the products of one branch. Search matches the name
// case-insensitively or the SKU by substring; LowStockOnly keeps stock <= Threshold.
func (s *Service) ListByBranch(ctx context.Context, branchID string, filter ListFilter) ([]Product, error) {
	if branchID == "" {
		return nil, ErrBranchRequired
	}
	filter.BranchID = branchID
	return s.List(ctx, filter)
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return Product{}, err
	}
	idx := indexOf(all, id)
	if idx < 0 {
		return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return all[idx].Clone(), nil
}

// Upsert inserts a new product or replaces the one with the same id in place.
// A replace keeps the stored stock; stock only moves through AdjustStock and
// ApplyDeductions. SKU uniqueness is not enforced.
func (s *Service) Upsert(ctx context.Context, input UpsertInput) (Product, error) {
	product := input.Product.Clone()
	product.Name = strings.TrimSpace(product.Name)
	product.BaseUnit = strings.TrimSpace(product.BaseUnit)
	if err := s.validate(product); err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.repo.All(ctx)
	if err != nil {
		return Product{}, err
	}
	idx := -1
	if product.ID != "" {
		idx = indexOf(all, product.ID)
	}
	action := "product.update"
	if idx < 0 {
		if product.Stock.IsNegative() {
			return Product{}, ErrNegativeStock
		}
		if product.ID == "" {
			product.ID = s.newID("P")
		}
		all = append(all, product)
		action = "product.create"
	} else {
		product.Stock = all[idx].Stock
		all[idx] = product
	}
	if err := s.repo.SaveAll(ctx, all); err != nil {
		return Product{}, err
	}
	s.record(ctx, input.Actor, action, product.ID, map[string]any{"name": product.Name, "branchId": product.BranchID})
	return product.Clone(), nil
}

// Delete removes a product permanently. Unknown ids are a no-op.
func (s *Service) Delete(ctx context.Context, id string, actor shared.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.repo.All(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(all, id)
	if idx < 0 {
		return nil
	}
	removed := all[idx]
	all = append(all[:idx], all[idx+1:]...)
	if err := s.repo.SaveAll(ctx, all); err != nil {
		return err
	}
	s.record(ctx, actor, "product.delete", id, map[string]any{"name": removed.Name})
	return nil
}

// AdjustStock sets the product's stock without clamping and appends exactly
// one StockAdjustment describing the change. The read, Next and the write all
// happen under the write lock.
func (s *Service) AdjustStock(ctx context.Context, input AdjustStockInput) (stocklog.StockAdjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.repo.All(ctx)
	if err != nil {
		return stocklog.StockAdjustment{}, err
	}
	idx := indexOf(all, input.ProductID)
	if idx < 0 {
		return stocklog.StockAdjustment{}, fmt.Errorf("%w: %s", ErrProductNotFound, input.ProductID)
	}
	product := all[idx]
	oldStock := product.Stock
	newStock := input.NewStock
	if input.Next != nil {
		if newStock, err = input.Next(oldStock); err != nil {
			return stocklog.StockAdjustment{}, err
		}
	}
	product.Stock = newStock
	all[idx] = product
	if err := s.repo.SaveAll(ctx, all); err != nil {
		return stocklog.StockAdjustment{}, err
	}

	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		reason = stocklog.UnspecifiedReason
	}
	adj := stocklog.StockAdjustment{
		ID:          s.newID("ADJ"),
		ProductID:   product.ID,
		ProductName: product.Name,
		BranchID:    product.BranchID,
		Date:        s.now().UTC(),
		OldStock:    oldStock,
		NewStock:    newStock,
		Delta:       newStock.Sub(oldStock),
		Reason:      reason,
		AdjustedBy:  input.Actor.Label(),
	}
	if s.recorder != nil {
		if err := s.recorder.Append(ctx, adj); err != nil {
			return stocklog.StockAdjustment{}, fmt.Errorf("catalog: record adjustment: %w", err)
		}
	}
	return adj, nil
}

// ApplyDeductions subtracts base quantities for completed sales. Stock is not
// floored and no adjustment is recorded. Unknown products are skipped.
func (s *Service) ApplyDeductions(ctx context.Context, deductions []Deduction) error {
	if len(deductions) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.repo.All(ctx)
	if err != nil {
		return err
	}
	for _, d := range deductions {
		idx := indexOf(all, d.ProductID)
		if idx < 0 {
			s.logger.Warn("deduct stock for unknown product", slog.String("product_id", d.ProductID), slog.String("qty", d.BaseQty.String()))
			continue
		}
		all[idx].Stock = all[idx].Stock.Sub(d.BaseQty)
	}
	return s.repo.SaveAll(ctx, all)
}

// DefineConversion resolves a new conversion and appends it to the product.
func (s *Service) DefineConversion(ctx context.Context, input ConversionInput) (Product, error) {
	return s.mutateConversions(ctx, input.ProductID, input.Actor, "product.conversion.define", func(p Product) ([]units.Conversion, error) {
		conv, err := units.Resolve(p.BaseUnit, p.Conversions, input.Definition)
		if err != nil {
			return nil, err
		}
		return units.Append(p.Conversions, conv), nil
	})
}

// EditConversion resolves def again and replaces the conversion at Index.
// Conversions that were resolved through the edited one keep their quantities.
func (s *Service) EditConversion(ctx context.Context, input ConversionInput) (Product, error) {
	return s.mutateConversions(ctx, input.ProductID, input.Actor, "product.conversion.edit", func(p Product) ([]units.Conversion, error) {
		conv, err := units.ResolveAt(p.BaseUnit, p.Conversions, input.Index, input.Definition)
		if err != nil {
			return nil, err
		}
		return units.Replace(p.Conversions, input.Index, conv)
	})
}

// RemoveConversion drops the conversion at index.
func (s *Service) RemoveConversion(ctx context.Context, productID string, index int, actor shared.Actor) (Product, error) {
	return s.mutateConversions(ctx, productID, actor, "product.conversion.remove", func(p Product) ([]units.Conversion, error) {
		return units.Remove(p.Conversions, index)
	})
}

func (s *Service) mutateConversions(ctx context.Context, productID string, actor shared.Actor, action string, fn func(Product) ([]units.Conversion, error)) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.repo.All(ctx)
	if err != nil {
		return Product{}, err
	}
	idx := indexOf(all, productID)
	if idx < 0 {
		return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	list, err := fn(all[idx].Clone())
	if err != nil {
		return Product{}, err
	}
	all[idx].Conversions = list
	if err := s.repo.SaveAll(ctx, all); err != nil {
		return Product{}, err
	}
	s.record(ctx, actor, action, productID, map[string]any{"conversions": len(list)})
	return all[idx].Clone(), nil
}

func (s *Service) record(ctx context.Context, actor shared.Actor, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		Actor:    actor.Label(),
		Action:   action,
		Entity:   "product",
		EntityID: entityID,
		Meta:     meta,
		At:       s.now().UTC(),
	}); err != nil {
		s.logger.Warn("audit product change", slog.String("action", action), slog.Any("error", err))
	}
}

func indexOf(products []Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}
