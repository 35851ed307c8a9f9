// Package catalog stores products per branch and owns their stock figures.
package catalog

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/omnimarket/omnimarket/internal/shared"
	"github.com/omnimarket/omnimarket/internal/units"
)

// Product is a sellable item of one branch. Stock is counted in BaseUnit.
type Product struct {
	ID          string             `json:"id"`
	Name        string             `json:"name" validate:"required"`
	SKU         string             `json:"sku"`
	Category    string             `json:"category"`
	BranchID    string             `json:"branchId" validate:"required"`
	BaseUnit    string             `json:"baseUnit" validate:"required"`
	BasePrice   decimal.Decimal    `json:"basePrice"`
	Stock       decimal.Decimal    `json:"stock"`
	Conversions []units.Conversion `json:"conversions"`
	Image       string             `json:"image,omitempty"`
}

// Clone returns a copy that shares no slices with p.
func (p Product) Clone() Product {
	out := p
	out.Conversions = units.Clone(p.Conversions)
	return out
}

// IsLowStock reports whether stock is at or below threshold.
func (p Product) IsLowStock(threshold int) bool {
	return p.Stock.LessThanOrEqual(decimal.NewFromInt(int64(threshold)))
}

// ListFilter narrows product listings. Empty fields match everything.
type ListFilter struct {
	BranchID     string
	Search       string
	LowStockOnly bool
	Threshold    int
}

// UpsertInput carries a product to insert or replace.
type UpsertInput struct {
	Product Product
	Actor   shared.Actor
}

// AdjustStockInput sets a product's stock. When Next is set it derives the new
// figure from the stored stock under the write lock and NewStock is ignored.
type AdjustStockInput struct {
	ProductID string
	NewStock  decimal.Decimal
	Next      func(current decimal.Decimal) (decimal.Decimal, error)
	Reason    string
	Actor     shared.Actor
}

// ConversionInput defines or edits one conversion of a product. Index is
// ignored when defining a new conversion.
type ConversionInput struct {
	ProductID  string
	Index      int
	Definition units.Definition
	Actor      shared.Actor
}

// Deduction removes BaseQty base units from a product.
type Deduction struct {
	ProductID string
	BaseQty   decimal.Decimal
}

var (
	// ErrProductNotFound indicates an unknown product id.
	ErrProductNotFound = errors.New("catalog: product not found")
	// ErrInvalidProduct indicates a product failing validation.
	ErrInvalidProduct = errors.New("catalog: invalid product")
	// ErrNegativeStock indicates a new product created with negative stock.
	ErrNegativeStock = errors.New("catalog: initial stock must be >= 0")
	// ErrBranchRequired indicates a branch-scoped call without a branch id.
	ErrBranchRequired = errors.New("catalog: branch id required")
)
