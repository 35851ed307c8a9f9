package stocklog

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/omnimarket/omnimarket/internal/platform/kv"
)

func TestReasonText(t *testing.T) {
	text, err := ReasonText(ReasonDamagedGoods, "ignored")
	require.NoError(t, err)
	require.Equal(t, "Damaged Goods", text)

	text, err = ReasonText(ReasonOther, "  Sample for customer ")
	require.NoError(t, err)
	require.Equal(t, "Sample for customer", text)

	text, err = ReasonText(ReasonOther, "")
	require.NoError(t, err)
	require.Equal(t, UnspecifiedReason, text)

	_, err = ReasonText(Reason("Theft"), "")
	require.ErrorIs(t, err, ErrInvalidReason)
}

func TestJournalAppendOnlyOrderAndFilters(t *testing.T) {
	ctx := context.Background()
	journal := NewJournal(kv.NewMemory(), kv.JSON)
	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	entries := []StockAdjustment{
		{ID: "ADJ-1", ProductID: "P001", BranchID: "B001", Date: at, OldStock: decimal.NewFromInt(500), NewStock: decimal.NewFromInt(510), Delta: decimal.NewFromInt(10), Reason: "New Stock In"},
		{ID: "ADJ-2", ProductID: "P002", BranchID: "B001", Date: at, OldStock: decimal.NewFromInt(200), NewStock: decimal.NewFromInt(190), Delta: decimal.NewFromInt(-10), Reason: "Expired"},
		{ID: "ADJ-3", ProductID: "P009", BranchID: "B002", Date: at, OldStock: decimal.NewFromInt(5), NewStock: decimal.NewFromInt(0), Delta: decimal.NewFromInt(-5), Reason: "Damaged Goods"},
	}
	for _, adj := range entries {
		require.NoError(t, journal.Append(ctx, adj))
	}

	all, err := journal.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []string{"ADJ-1", "ADJ-2", "ADJ-3"}, []string{all[0].ID, all[1].ID, all[2].ID})

	branch, err := journal.List(ctx, Filter{BranchID: "B001"})
	require.NoError(t, err)
	require.Len(t, branch, 2)

	product, err := journal.List(ctx, Filter{ProductID: "P002"})
	require.NoError(t, err)
	require.Len(t, product, 1)
	require.Equal(t, "-10", product[0].Delta.String())

	latest, err := journal.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	require.Equal(t, "ADJ-3", latest[0].ID)

	require.Error(t, journal.Append(ctx, StockAdjustment{ProductID: "P001"}))
}
