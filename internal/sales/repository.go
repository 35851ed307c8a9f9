package sales

import (
	"context"
	"sync"

	"github.com/omnimarket/omnimarket/internal/platform/kv"
)

// Repository persists completed transactions.
type Repository interface {
	Append(ctx context.Context, tx Transaction) error
	All(ctx context.Context) ([]Transaction, error)
}

// KVRepository stores transactions under the transactions key.
type KVRepository struct {
	mu  sync.Mutex
	doc *kv.Document[[]Transaction]
}

// NewRepository builds a KVRepository.
func NewRepository(store kv.Store, codec kv.Codec) *KVRepository {
	return &KVRepository{doc: kv.NewDocument(store, codec, kv.KeyTransactions, func() []Transaction { return []Transaction{} })}
}

// Append adds tx to the end of the stored list.
func (r *KVRepository) Append(ctx context.Context, tx Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.doc.Load(ctx)
	if err != nil {
		return err
	}
	return r.doc.Save(ctx, append(all, tx))
}

// All loads every transaction in insertion order.
func (r *KVRepository) All(ctx context.Context) ([]Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all, err := r.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = []Transaction{}
	}
	return all, nil
}
