package sales

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/omnimarket/omnimarket/internal/catalog"
	"github.com/omnimarket/omnimarket/internal/shared"
)

// LedgerPort deducts sold quantities from stock.
type LedgerPort interface {
	DeductSale(ctx context.Context, deductions []catalog.Deduction) error
}

// Service completes checkouts and lists transactions.
type Service struct {
	repo        Repository
	ledger      LedgerPort
	idempotency *shared.IdempotencyStore
	logger      *slog.Logger
	now         func() time.Time
}

// NewService builds Service. idem and logger are optional.
func NewService(repo Repository, ledger LedgerPort, idem *shared.IdempotencyStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, ledger: ledger, idempotency: idem, logger: logger, now: time.Now}
}

// Checkout validates payment, stores the transaction and then deducts every
// line from stock using the conversions captured in the line snapshot.
func (s *Service) Checkout(ctx context.Context, input CheckoutInput) (Transaction, error) {
	if len(input.Items) == 0 {
		return Transaction{}, ErrEmptyCart
	}
	if !input.Method.Valid() {
		return Transaction{}, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, input.Method)
	}
	branchID := input.BranchID
	if branchID == "" {
		branchID = input.Actor.BranchID
	}
	if branchID == "" {
		return Transaction{}, ErrBranchRequired
	}

	items := make([]CartItem, 0, len(input.Items))
	deductions := make([]catalog.Deduction, 0, len(input.Items))
	for _, in := range input.Items {
		item := in.clone()
		if item.Qty < 1 {
			return Transaction{}, fmt.Errorf("%w: %s", ErrInvalidQuantity, item.ID)
		}
		price, err := item.PriceFor(item.SelectedUnit)
		if err != nil {
			return Transaction{}, err
		}
		item.UnitPrice = price
		item.Subtotal = LineSubtotal(item.Qty, price)
		baseQty, err := item.BaseQuantity()
		if err != nil {
			return Transaction{}, err
		}
		items = append(items, item)
		deductions = append(deductions, catalog.Deduction{ProductID: item.ID, BaseQty: baseQty})
	}
	total := CartTotal(items)
	if !IsPaymentValid(input.Method, total, input.CashReceived) {
		return Transaction{}, ErrInsufficientPayment
	}

	if s.idempotency != nil && input.IdempotencyKey != "" {
		if err := s.idempotency.CheckAndInsert(ctx, input.IdempotencyKey, "sales"); err != nil {
			return Transaction{}, err
		}
	}

	tx := Transaction{
		ID:            "TX-" + strings.ToUpper(uuid.NewString()),
		BranchID:      branchID,
		Date:          s.now().UTC(),
		Items:         items,
		Total:         total,
		CashierName:   input.Actor.Label(),
		PaymentMethod: input.Method,
	}
	if input.Method == PaymentCash {
		cash := input.CashReceived
		change := Change(total, cash)
		tx.CashReceived = &cash
		tx.Change = &change
	}

	if err := s.repo.Append(ctx, tx); err != nil {
		s.releaseKey(ctx, input.IdempotencyKey)
		return Transaction{}, fmt.Errorf("sales: save transaction: %w", err)
	}
	if err := s.ledger.DeductSale(ctx, deductions); err != nil {
		s.logger.Error("deduct sold stock", slog.String("transaction_id", tx.ID), slog.Any("error", err))
		return tx, fmt.Errorf("sales: deduct stock: %w", err)
	}
	s.logger.Info("checkout completed",
		slog.String("transaction_id", tx.ID),
		slog.String("branch_id", tx.BranchID),
		slog.String("method", string(tx.PaymentMethod)),
		slog.String("total", tx.Total.String()),
		slog.Int("lines", len(tx.Items)),
	)
	return tx, nil
}

func (s *Service) releaseKey(ctx context.Context, key string) {
	if s.idempotency == nil || key == "" {
		return
	}
	if err := s.idempotency.Delete(ctx, key); err != nil {
		s.logger.Warn("release idempotency key", slog.Any("error", err))
	}
}

// List returns matching transactions, oldest first. A positive Limit keeps the
// most recent ones.
func (s *Service) List(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Transaction, 0, len(all))
	for _, tx := range all {
		if filter.BranchID != "" && tx.BranchID != filter.BranchID {
			continue
		}
		out = append(out, tx)
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[len(out)-filter.Limit:]
	}
	return out, nil
}

// Get returns one transaction.
func (s *Service) Get(ctx context.Context, id string) (Transaction, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return Transaction{}, err
	}
	for _, tx := range all {
		if tx.ID == id {
			return tx, nil
		}
	}
	return Transaction{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
}
