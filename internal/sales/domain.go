// Package sales prices point-of-sale carts and records completed transactions.
package sales

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/omnimarket/omnimarket/internal/shared"
)

// PaymentMethod enumerates accepted payment types.
type PaymentMethod string

const (
	// PaymentCash is paid in cash; change is returned.
	PaymentCash PaymentMethod = "CASH"
	// PaymentQRIS is paid by QR code and is always exact.
	PaymentQRIS PaymentMethod = "QRIS"
)

// Valid reports whether m is a supported method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentQRIS
}

// Transaction is an immutable record of a completed sale.
type Transaction struct {
	ID            string           `json:"id"`
	BranchID      string           `json:"branchId"`
	Date          time.Time        `json:"date"`
	Items         []CartItem       `json:"items"`
	Total         decimal.Decimal  `json:"total"`
	CashierName   string           `json:"cashierName"`
	PaymentMethod PaymentMethod    `json:"paymentMethod"`
	CashReceived  *decimal.Decimal `json:"cashReceived,omitempty"`
	Change        *decimal.Decimal `json:"change,omitempty"`
}

// CheckoutInput carries a priced cart to be paid.
type CheckoutInput struct {
	BranchID       string
	Items          []CartItem
	Method         PaymentMethod
	CashReceived   decimal.Decimal
	Actor          shared.Actor
	IdempotencyKey string
}

// TransactionFilter narrows transaction listings.
type TransactionFilter struct {
	BranchID string
	Limit    int
}

var (
	// ErrEmptyCart indicates a checkout without items.
	ErrEmptyCart = errors.New("sales: cart is empty")
	// ErrInsufficientPayment indicates cash below the cart total.
	ErrInsufficientPayment = errors.New("sales: cash received is less than total")
	// ErrInvalidPaymentMethod indicates an unsupported payment method.
	ErrInvalidPaymentMethod = errors.New("sales: invalid payment method")
	// ErrInvalidQuantity indicates a cart line with quantity below one.
	ErrInvalidQuantity = errors.New("sales: quantity must be >= 1")
	// ErrLineNotFound indicates a cart index outside the cart.
	ErrLineNotFound = errors.New("sales: cart line not found")
	// ErrBranchRequired indicates a checkout without branch.
	ErrBranchRequired = errors.New("sales: branch required")
	// ErrTransactionNotFound indicates an unknown transaction id.
	ErrTransactionNotFound = errors.New("sales: transaction not found")
)
