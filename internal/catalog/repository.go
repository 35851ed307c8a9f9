package catalog

import (
	"context"

	"github.com/omnimarket/omnimarket/internal/platform/kv"
)

// Repository persists the whole product list.
type Repository interface {
	All(ctx context.Context) ([]Product, error)
	SaveAll(ctx context.Context, products []Product) error
}

// KVRepository stores products as one document under the products key.
type KVRepository struct {
	doc *kv.Document[[]Product]
}

// NewRepository builds a KVRepository. A store without products yields the starter catalog.
func NewRepository(store kv.Store, codec kv.Codec) *KVRepository {
	return &KVRepository{doc: kv.NewDocument(store, codec, kv.KeyProducts, StarterProducts)}
}

// All loads every product in insertion order.
func (r *KVRepository) All(ctx context.Context) ([]Product, error) {
	products, err := r.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// SaveAll replaces the stored product list.
func (r *KVRepository) SaveAll(ctx context.Context, products []Product) error {
	return r.doc.Save(ctx, products)
}
