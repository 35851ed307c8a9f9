package branches

import (
	"context"

	"github.com/omnimarket/omnimarket/internal/platform/kv"
)

type Repository interface {
	All(ctx context.Context) ([]Branch, error)
	SaveAll(ctx context.Context, branches []Branch) error
}

type repository struct {
	doc *kv.Document[[]Branch]
}

func NewRepository(store kv.Store, codec kv.Codec) Repository {
	return &repository{doc: kv.NewDocument(store, codec, kv.KeyBranches, DefaultBranches)}
}

func (r *repository) All(ctx context.Context) ([]Branch, error) {
	branches, err := r.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if branches == nil {
		branches = []Branch{}
	}
	return branches, nil
}

func (r *repository) SaveAll(ctx context.Context, branches []Branch) error {
	return r.doc.Save(ctx, branches)
}
