package sales

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/omnimarket/omnimarket/internal/catalog"
	"github.com/omnimarket/omnimarket/internal/units"
)

// CartItem is a priced cart line. It carries its own copy of the product data
// taken when the line was created, so later catalog edits do not affect it.
type CartItem struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	SKU          string             `json:"sku"`
	Category     string             `json:"category"`
	BranchID     string             `json:"branchId"`
	BaseUnit     string             `json:"baseUnit"`
	BasePrice    decimal.Decimal    `json:"basePrice"`
	Stock        decimal.Decimal    `json:"stock"`
	Conversions  []units.Conversion `json:"conversions"`
	Image        string             `json:"image,omitempty"`
	SelectedUnit string             `json:"selectedUnit"`
	Qty          int                `json:"qty"`
	UnitPrice    decimal.Decimal    `json:"unitPrice"`
	Subtotal     decimal.Decimal    `json:"subtotal"`
}

// NewCartItem snapshots p into a one-piece line priced in its base unit.
func NewCartItem(p catalog.Product) CartItem {
	item := CartItem{
		ID:           p.ID,
		Name:         p.Name,
		SKU:          p.SKU,
		Category:     p.Category,
		BranchID:     p.BranchID,
		BaseUnit:     p.BaseUnit,
		BasePrice:    p.BasePrice,
		Stock:        p.Stock,
		Conversions:  units.Clone(p.Conversions),
		Image:        p.Image,
		SelectedUnit: p.BaseUnit,
		Qty:          1,
		UnitPrice:    p.BasePrice,
	}
	item.Subtotal = LineSubtotal(item.Qty, item.UnitPrice)
	return item
}

// PriceFor returns the price of one unit of the snapshot.
func (i CartItem) PriceFor(unit string) (decimal.Decimal, error) {
	return units.PriceOf(i.BaseUnit, i.BasePrice, i.Conversions, unit)
}

// BaseQuantity converts the line quantity into base units of the snapshot.
func (i CartItem) BaseQuantity() (decimal.Decimal, error) {
	return units.ToBase(i.BaseUnit, i.Conversions, i.SelectedUnit, decimal.NewFromInt(int64(i.Qty)))
}

func (i CartItem) clone() CartItem {
	out := i
	out.Conversions = units.Clone(i.Conversions)
	return out
}

// PriceForSelection returns the price of one unit of p.
func PriceForSelection(p catalog.Product, unit string) (decimal.Decimal, error) {
	return units.PriceOf(p.BaseUnit, p.BasePrice, p.Conversions, unit)
}

// LineSubtotal is qty times unitPrice.
func LineSubtotal(qty int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

// CartTotal sums line subtotals.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}

// IsPaymentValid reports whether a payment can complete a sale of total.
// QRIS is always valid; cash must cover the total.
func IsPaymentValid(method PaymentMethod, total, cash decimal.Decimal) bool {
	switch method {
	case PaymentQRIS:
		return true
	case PaymentCash:
		return cash.GreaterThanOrEqual(total)
	default:
		return false
	}
}

// Change is the cash returned to the customer, never negative.
func Change(total, cash decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, cash.Sub(total))
}

// Cart is an in-progress sale. It is not safe for concurrent use.
type Cart struct {
	items []CartItem
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	for i, item := range c.items {
		out[i] = item.clone()
	}
	return out
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.items)
}

// Add puts one base unit of p in the cart. A line for the same product that
// is still in its base unit is incremented instead of adding a new line.
func (c *Cart) Add(p catalog.Product) CartItem {
	for i := range c.items {
		if c.items[i].ID == p.ID && c.items[i].SelectedUnit == c.items[i].BaseUnit {
			c.setQty(i, c.items[i].Qty+1)
			return c.items[i].clone()
		}
	}
	item := NewCartItem(p)
	c.items = append(c.items, item)
	return item.clone()
}

// SetQty changes a line quantity. Values below one become one.
func (c *Cart) SetQty(index, qty int) error {
	if err := c.check(index); err != nil {
		return err
	}
	c.setQty(index, qty)
	return nil
}

// Increment adds one to a line quantity.
func (c *Cart) Increment(index int) error {
	if err := c.check(index); err != nil {
		return err
	}
	c.setQty(index, c.items[index].Qty+1)
	return nil
}

// Decrement subtracts one from a line quantity, stopping at one.
func (c *Cart) Decrement(index int) error {
	if err := c.check(index); err != nil {
		return err
	}
	c.setQty(index, c.items[index].Qty-1)
	return nil
}

// ChangeUnit re-prices a line for unit and keeps its quantity.
func (c *Cart) ChangeUnit(index int, unit string) error {
	if err := c.check(index); err != nil {
		return err
	}
	item := &c.items[index]
	price, err := item.PriceFor(unit)
	if err != nil {
		return err
	}
	item.SelectedUnit = unit
	item.UnitPrice = price
	item.Subtotal = LineSubtotal(item.Qty, price)
	return nil
}

// Remove deletes a line.
func (c *Cart) Remove(index int) error {
	if err := c.check(index); err != nil {
		return err
	}
	c.items = append(c.items[:index], c.items[index+1:]...)
	return nil
}

// Total sums line subtotals.
func (c *Cart) Total() decimal.Decimal {
	return CartTotal(c.items)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) setQty(index, qty int) {
	if qty < 1 {
		qty = 1
	}
	item := &c.items[index]
	item.Qty = qty
	item.Subtotal = LineSubtotal(qty, item.UnitPrice)
}

func (c *Cart) check(index int) error {
	if index < 0 || index >= len(c.items) {
		return fmt.Errorf("%w: %d", ErrLineNotFound, index)
	}
	return nil
}
