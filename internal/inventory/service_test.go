package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/omnimarket/omnimarket/internal/catalog"
	"github.com/omnimarket/omnimarket/internal/inventory/stocklog"
	"github.com/omnimarket/omnimarket/internal/platform/kv"
	"github.com/omnimarket/omnimarket/internal/shared"
)

var clerk = shared.Actor{ID: "u7", Name: "Rina", BranchID: "B001", Role: shared.RoleBranchAdmin}

type captureIntegration struct {
	events []AdjustmentPostedEvent
	err    error
}

func (c *captureIntegration) HandleInventoryAdjustmentPosted(_ context.Context, evt AdjustmentPostedEvent) error {
	c.events = append(c.events, evt)
	return c.err
}

func newLedger(t *testing.T, integration IntegrationHandler) (*Service, *catalog.Service) {
	t.Helper()
	store := kv.NewMemory()
	journal := stocklog.NewJournal(store, kv.JSON)
	products := catalog.NewService(catalog.NewRepository(store, kv.JSON), journal, nil, nil)
	return NewService(products, journal, integration, nil), products
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// laggyStore delays reads so interleaved read-modify-write cycles overlap.
type laggyStore struct {
	kv.Store
	delay time.Duration
}

func (s laggyStore) Get(ctx context.Context, key string) ([]byte, error) {
	time.Sleep(s.delay)
	return s.Store.Get(ctx, key)
}

func TestNextStock(t *testing.T) {
	cases := []struct {
		name    string
		mode    Mode
		current int64
		amount  int64
		want    string
	}{
		{"add", ModeAdd, 10, 5, "15"},
		{"remove within stock", ModeRemove, 10, 4, "6"},
		{"remove floors at zero", ModeRemove, 5, 8, "0"},
		{"set", ModeSet, 5, 42, "42"},
		{"set floors at zero", ModeSet, 5, -3, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NextStock(tc.mode, d(tc.current), d(tc.amount))
			require.NoError(t, err)
			require.Equal(t, tc.want, got.String())
		})
	}

	_, err := NextStock(Mode("multiply"), d(1), d(1))
	require.ErrorIs(t, err, ErrInvalidMode)
}

func TestAdjustRemoveFloorsAndRecords(t *testing.T) {
	ledger, products := newLedger(t, nil)
	ctx := context.Background()

	_, err := products.AdjustStock(ctx, catalog.AdjustStockInput{ProductID: "P002", NewStock: d(5), Reason: "Stocktake Correction", Actor: clerk})
	require.NoError(t, err)

	adj, err := ledger.Adjust(ctx, AdjustmentInput{ProductID: "P002", Mode: ModeRemove, Amount: d(8), Reason: stocklog.ReasonDamagedGoods, Actor: clerk})
	require.NoError(t, err)
	require.Equal(t, "0", adj.NewStock.String())
	require.Equal(t, "-5", adj.Delta.String())
	require.Equal(t, "Damaged Goods", adj.Reason)

	history, err := ledger.History(ctx, stocklog.Filter{ProductID: "P002"})
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, entry := range history {
		require.True(t, entry.Delta.Equal(entry.NewStock.Sub(entry.OldStock)))
	}
}

func TestAdjustOtherReasonFallback(t *testing.T) {
	ledger, _ := newLedger(t, nil)
	ctx := context.Background()

	adj, err := ledger.Adjust(ctx, AdjustmentInput{ProductID: "P001", Mode: ModeSet, Amount: d(490), Reason: stocklog.ReasonOther, Actor: clerk})
	require.NoError(t, err)
	require.Equal(t, stocklog.UnspecifiedReason, adj.Reason)

	adj, err = ledger.Adjust(ctx, AdjustmentInput{ProductID: "P001", Mode: ModeAdd, Amount: d(1), Reason: stocklog.ReasonOther, CustomReason: "Bonus from supplier", Actor: clerk})
	require.NoError(t, err)
	require.Equal(t, "Bonus from supplier", adj.Reason)
	require.Equal(t, "491", adj.NewStock.String())
}

func TestAdjustRejectsBadInput(t *testing.T) {
	ledger, _ := newLedger(t, nil)
	ctx := context.Background()

	_, err := ledger.Adjust(ctx, AdjustmentInput{Mode: ModeAdd, Amount: d(1), Reason: stocklog.ReasonExpired})
	require.ErrorIs(t, err, ErrProductRequired)

	_, err = ledger.Adjust(ctx, AdjustmentInput{ProductID: "P001", Mode: ModeAdd, Amount: d(1), Reason: "Lost"})
	require.ErrorIs(t, err, stocklog.ErrInvalidReason)

	_, err = ledger.Adjust(ctx, AdjustmentInput{ProductID: "P001", Mode: "double", Amount: d(1), Reason: stocklog.ReasonExpired})
	require.ErrorIs(t, err, ErrInvalidMode)

	_, err = ledger.Adjust(ctx, AdjustmentInput{ProductID: "P404", Mode: ModeAdd, Amount: d(1), Reason: stocklog.ReasonExpired})
	require.ErrorIs(t, err, catalog.ErrProductNotFound)

	history, err := ledger.History(ctx, stocklog.Filter{})
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestAdjustNotifiesIntegration(t *testing.T) {
	integration := &captureIntegration{err: errors.New("queue down")}
	ledger, _ := newLedger(t, integration)

	adj, err := ledger.Adjust(context.Background(), AdjustmentInput{ProductID: "P001", Mode: ModeRemove, Amount: d(495), Reason: stocklog.ReasonInternalUse, Actor: clerk})
	require.NoError(t, err)
	require.Len(t, integration.events, 1)
	require.Equal(t, adj.ID, integration.events[0].AdjustmentID)
	require.Equal(t, "5", integration.events[0].NewStock.String())
	require.Equal(t, "B001", integration.events[0].BranchID)
}

func TestDeductSaleThenAdjust(t *testing.T) {
	ledger, products := newLedger(t, nil)
	ctx := context.Background()

	require.NoError(t, ledger.DeductSale(ctx, []catalog.Deduction{{ProductID: "P001", BaseQty: d(120)}}))
	product, err := products.Get(ctx, "P001")
	require.NoError(t, err)
	require.Equal(t, "380", product.Stock.String())

	adj, err := ledger.Adjust(ctx, AdjustmentInput{ProductID: "P001", Mode: ModeAdd, Amount: d(50), Reason: stocklog.ReasonNewStockIn, Actor: clerk})
	require.NoError(t, err)
	require.Equal(t, "380", adj.OldStock.String())
	require.Equal(t, "430", adj.NewStock.String())
	require.Equal(t, "50", adj.Delta.String())

	history, err := ledger.History(ctx, stocklog.Filter{})
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestConcurrentAdjustmentsAndSalesDoNotLoseUpdates(t *testing.T) {
	store := laggyStore{Store: kv.NewMemory(), delay: time.Millisecond}
	journal := stocklog.NewJournal(store, kv.JSON)
	products := catalog.NewService(catalog.NewRepository(store, kv.JSON), journal, nil, nil)
	ledger := NewService(products, journal, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 25)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Adjust(ctx, AdjustmentInput{ProductID: "P001", Mode: ModeAdd, Amount: d(1), Reason: stocklog.ReasonNewStockIn, Actor: clerk})
			errs <- err
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- ledger.DeductSale(ctx, []catalog.Deduction{{ProductID: "P001", BaseQty: d(2)}})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	product, err := products.Get(ctx, "P001")
	require.NoError(t, err)
	require.Equal(t, "510", product.Stock.String())

	history, err := ledger.History(ctx, stocklog.Filter{ProductID: "P001"})
	require.NoError(t, err)
	require.Len(t, history, 20)
	sum := decimal.Zero
	for _, adj := range history {
		require.Equal(t, "1", adj.Delta.String())
		sum = sum.Add(adj.Delta)
	}
	require.Equal(t, "20", sum.String())
}
