package inventory

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/omnimarket/omnimarket/internal/inventory/stocklog"
	"github.com/omnimarket/omnimarket/internal/shared"
)

// Mode selects how an adjustment amount is applied to the current stock.
type Mode string

const (
	// ModeAdd adds the amount to the current stock.
	ModeAdd Mode = "add"
	// ModeRemove subtracts the amount, never going below zero.
	ModeRemove Mode = "remove"
	// ModeSet replaces the stock with the amount, never below zero.
	ModeSet Mode = "set"
)

// AdjustmentInput describes request to adjust stock.
type AdjustmentInput struct {
	ProductID    string
	Mode         Mode
	Amount       decimal.Decimal
	Reason       stocklog.Reason
	CustomReason string
	Actor        shared.Actor
}

// ErrInvalidMode indicates an unknown adjustment mode.
var ErrInvalidMode = errors.New("inventory: invalid adjustment mode")

// ErrProductRequired indicates an adjustment without product.
var ErrProductRequired = errors.New("inventory: product required")

// NextStock computes the stock after applying amount in mode to current.
// Remove and set clamp at zero; add is applied as given.
func NextStock(mode Mode, current, amount decimal.Decimal) (decimal.Decimal, error) {
	switch mode {
	case ModeAdd:
		return current.Add(amount), nil
	case ModeRemove:
		return decimal.Max(decimal.Zero, current.Sub(amount)), nil
	case ModeSet:
		return decimal.Max(decimal.Zero, amount), nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}
