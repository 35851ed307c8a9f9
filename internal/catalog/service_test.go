package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/omnimarket/omnimarket/internal/inventory/stocklog"
	"github.com/omnimarket/omnimarket/internal/platform/kv"
	"github.com/omnimarket/omnimarket/internal/shared"
	"github.com/omnimarket/omnimarket/internal/units"
)

var admin = shared.Actor{ID: "u1", Name: "Demo User", BranchID: "B001", Role: shared.RoleBranchAdmin}

type fixture struct {
	svc     *Service
	journal *stocklog.Journal
	audit   *shared.AuditLogger
	store   *kv.MemoryStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := kv.NewMemory()
	journal := stocklog.NewJournal(store, kv.JSON)
	audit := shared.NewAuditLogger(store, kv.JSON)
	svc := NewService(NewRepository(store, kv.JSON), journal, audit, nil)
	return fixture{svc: svc, journal: journal, audit: audit, store: store}
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestStarterCatalogIsServedWhenEmpty(t *testing.T) {
	f := newFixture(t)
	products, err := f.svc.ListByBranch(context.Background(), "B001", ListFilter{})
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "P001", products[0].ID)
	require.Equal(t, "500", products[0].Stock.String())
	require.Len(t, products[0].Conversions, 2)

	products, err = f.svc.ListByBranch(context.Background(), "B002", ListFilter{})
	require.NoError(t, err)
	require.Empty(t, products)

	_, err = f.svc.ListByBranch(context.Background(), "", ListFilter{})
	require.ErrorIs(t, err, ErrBranchRequired)
}

func TestListSearchAndLowStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	products, err := f.svc.ListByBranch(ctx, "B001", ListFilter{Search: "indomie"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "P002", products[0].ID)

	products, err = f.svc.ListByBranch(ctx, "B001", ListFilter{Search: "8991"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "P001", products[0].ID)

	products, err = f.svc.ListByBranch(ctx, "B001", ListFilter{LowStockOnly: true, Threshold: 200})
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "P002", products[0].ID)

	products, err = f.svc.ListByBranch(ctx, "B001", ListFilter{LowStockOnly: true, Threshold: 10})
	require.NoError(t, err)
	require.Empty(t, products)
}

func TestUpsertInsertsAndReplacesInPlace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Upsert(ctx, UpsertInput{Actor: admin, Product: Product{
		Name: "Teh Botol", SKU: "8991001", BranchID: "B001", BaseUnit: "Botol",
		BasePrice: dec(4000), Stock: dec(24),
	}})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.NotNil(t, created.Conversions)

	all, err := f.svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, created.ID, all[2].ID)

	updated := all[0]
	updated.Name = "Kopi Kapal Api Special Mix"
	updated.Stock = dec(9999)
	saved, err := f.svc.Upsert(ctx, UpsertInput{Actor: admin, Product: updated})
	require.NoError(t, err)
	require.Equal(t, "500", saved.Stock.String())

	all, err = f.svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "P001", all[0].ID)
	require.Equal(t, "Kopi Kapal Api Special Mix", all[0].Name)
	require.Equal(t, "500", all[0].Stock.String())

	history, err := f.journal.List(ctx, stocklog.Filter{ProductID: "P001"})
	require.NoError(t, err)
	require.Empty(t, history)

	logs, err := f.audit.List(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, "product.create", logs[0].Action)
	require.Equal(t, "product.update", logs[1].Action)
}

func TestUpsertValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Upsert(ctx, UpsertInput{Product: Product{BranchID: "B001", BaseUnit: "Pcs"}})
	require.ErrorIs(t, err, ErrInvalidProduct)

	_, err = f.svc.Upsert(ctx, UpsertInput{Product: Product{Name: "Gula", BranchID: "B001", BaseUnit: "Kg", BasePrice: dec(-1)}})
	require.ErrorIs(t, err, ErrInvalidProduct)

	_, err = f.svc.Upsert(ctx, UpsertInput{Product: Product{Name: "Gula", BranchID: "B001", BaseUnit: "Kg", Stock: dec(-5)}})
	require.ErrorIs(t, err, ErrNegativeStock)

	_, err = f.svc.Upsert(ctx, UpsertInput{Product: Product{
		Name: "Gula", BranchID: "B001", BaseUnit: "Kg",
		Conversions: []units.Conversion{{Name: "kg", Quantity: dec(1), Price: dec(1)}},
	}})
	require.ErrorIs(t, err, units.ErrDuplicateUnitName)
}

func TestDeleteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Delete(ctx, "P002", admin))
	require.NoError(t, f.svc.Delete(ctx, "P002", admin))
	require.NoError(t, f.svc.Delete(ctx, "nope", admin))

	_, err := f.svc.Get(ctx, "P002")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestAdjustStockRecordsOneAdjustment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	adj, err := f.svc.AdjustStock(ctx, AdjustStockInput{ProductID: "P001", NewStock: dec(430), Reason: "Stocktake Correction", Actor: admin})
	require.NoError(t, err)
	require.Equal(t, "500", adj.OldStock.String())
	require.Equal(t, "430", adj.NewStock.String())
	require.Equal(t, "-70", adj.Delta.String())
	require.Equal(t, "Demo User", adj.AdjustedBy)
	require.Equal(t, "B001", adj.BranchID)
	require.Equal(t, "Kopi Kapal Api Mix", adj.ProductName)

	product, err := f.svc.Get(ctx, "P001")
	require.NoError(t, err)
	require.Equal(t, "430", product.Stock.String())

	logged, err := f.journal.List(ctx, stocklog.Filter{ProductID: "P001"})
	require.NoError(t, err)
	require.Len(t, logged, 1)
	require.Equal(t, adj.ID, logged[0].ID)

	_, err = f.svc.AdjustStock(ctx, AdjustStockInput{ProductID: "missing", NewStock: dec(1), Actor: admin})
	require.ErrorIs(t, err, ErrProductNotFound)
	logged, err = f.journal.List(ctx, stocklog.Filter{})
	require.NoError(t, err)
	require.Len(t, logged, 1)
}

func TestAdjustStockDerivesFromStoredStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.ApplyDeductions(ctx, []Deduction{{ProductID: "P001", BaseQty: dec(120)}}))
	adj, err := f.svc.AdjustStock(ctx, AdjustStockInput{
		ProductID: "P001",
		NewStock:  dec(999),
		Next:      func(current decimal.Decimal) (decimal.Decimal, error) { return current.Add(dec(50)), nil },
		Reason:    "New Stock In",
		Actor:     admin,
	})
	require.NoError(t, err)
	require.Equal(t, "380", adj.OldStock.String())
	require.Equal(t, "430", adj.NewStock.String())
	require.Equal(t, "50", adj.Delta.String())

	errRejected := errors.New("rejected")
	_, err = f.svc.AdjustStock(ctx, AdjustStockInput{
		ProductID: "P001",
		Next:      func(decimal.Decimal) (decimal.Decimal, error) { return decimal.Zero, errRejected },
		Actor:     admin,
	})
	require.ErrorIs(t, err, errRejected)

	product, err := f.svc.Get(ctx, "P001")
	require.NoError(t, err)
	require.Equal(t, "430", product.Stock.String())
	logged, err := f.journal.List(ctx, stocklog.Filter{})
	require.NoError(t, err)
	require.Len(t, logged, 1)
}

func TestApplyDeductionsIsUnflooredAndSkipsUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.svc.ApplyDeductions(ctx, []Deduction{
		{ProductID: "P002", BaseQty: dec(240)},
		{ProductID: "ghost", BaseQty: dec(1)},
	})
	require.NoError(t, err)

	product, err := f.svc.Get(ctx, "P002")
	require.NoError(t, err)
	require.Equal(t, "-40", product.Stock.String())

	logged, err := f.journal.List(ctx, stocklog.Filter{})
	require.NoError(t, err)
	require.Empty(t, logged)
}

func TestConversionWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.DefineConversion(ctx, ConversionInput{ProductID: "P002", Actor: admin, Definition: units.Definition{
		Name: "Pack", Reference: "Bungkus", Multiplier: dec(5), Price: dec(17000),
	}})
	require.NoError(t, err)
	require.Len(t, product.Conversions, 2)
	require.Equal(t, "Pack", product.Conversions[1].Name)

	product, err = f.svc.DefineConversion(ctx, ConversionInput{ProductID: "P002", Actor: admin, Definition: units.Definition{
		Name: "Bal", Reference: "Pack", Multiplier: dec(4), Price: dec(66000),
	}})
	require.NoError(t, err)
	require.Equal(t, "20", product.Conversions[2].Quantity.String())

	_, err = f.svc.DefineConversion(ctx, ConversionInput{ProductID: "P002", Definition: units.Definition{
		Name: "KARTON", Reference: "Bungkus", Multiplier: dec(2), Price: dec(1),
	}})
	require.ErrorIs(t, err, units.ErrDuplicateUnitName)

	product, err = f.svc.EditConversion(ctx, ConversionInput{ProductID: "P002", Index: 1, Actor: admin, Definition: units.Definition{
		Name: "Pack", Reference: "Bungkus", Multiplier: dec(6), Price: dec(20000),
	}})
	require.NoError(t, err)
	require.Equal(t, "6", product.Conversions[1].Quantity.String())
	require.Equal(t, "20", product.Conversions[2].Quantity.String())

	product, err = f.svc.RemoveConversion(ctx, "P002", 0, admin)
	require.NoError(t, err)
	require.Equal(t, []string{"Bungkus", "Pack", "Bal"}, units.Names(product.BaseUnit, product.Conversions))

	stored, err := f.svc.Get(ctx, "P002")
	require.NoError(t, err)
	require.Len(t, stored.Conversions, 2)

	_, err = f.svc.RemoveConversion(ctx, "missing", 0, admin)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	product, err := f.svc.Get(ctx, "P001")
	require.NoError(t, err)
	product.Conversions[0].Name = "Mutated"

	again, err := f.svc.Get(ctx, "P001")
	require.NoError(t, err)
	require.Equal(t, "Renceng", again.Conversions[0].Name)
}
