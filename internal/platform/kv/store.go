// Package kv provides the key-value persistence used by every OmniMarket service.
//
// Each logical collection (products, transactions, stock adjustments, ...) is stored
// as one encoded document under a well-known key.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Store.Get when the key holds no value.
var ErrNotFound = errors.New("kv: key not found")

// Well-known document keys.
const (
	KeyProducts          = "products"
	KeyStockAdjustments  = "stock_adjustments"
	KeyTransactions      = "transactions"
	KeyVisits            = "visits"
	KeyBranches          = "branches"
	KeyAppConfig         = "app_config"
	KeyLowStockThreshold = "inventory_low_stock_limit"
	KeyAuditLogs         = "audit_logs"
	KeyIdempotency       = "idempotency_keys"
)

// Store persists opaque values by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Closer is implemented by stores holding external connections.
type Closer interface {
	Close() error
}

// Close releases store resources when the backend holds any.
func Close(store Store) error {
	if c, ok := store.(Closer); ok {
		return c.Close()
	}
	return nil
}
