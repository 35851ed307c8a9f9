package kv

import (
	"context"
	"errors"
	"fmt"
)

// Document is a typed view over a single key.
type Document[T any] struct {
	store    Store
	codec    Codec
	key      string
	fallback func() T
}

// NewDocument binds key to T. fallback supplies the value used when the key is
// missing; a nil fallback yields the zero value. A nil codec selects JSON.
func NewDocument[T any](store Store, codec Codec, key string, fallback func() T) *Document[T] {
	if codec == nil {
		codec = JSON
	}
	return &Document[T]{store: store, codec: codec, key: key, fallback: fallback}
}

// Key returns the bound key.
func (d *Document[T]) Key() string {
	return d.key
}

// Load decodes the stored value or returns the fallback when it is missing.
func (d *Document[T]) Load(ctx context.Context) (T, error) {
	var value T
	raw, err := d.store.Get(ctx, d.key)
	if errors.Is(err, ErrNotFound) {
		if d.fallback != nil {
			return d.fallback(), nil
		}
		return value, nil
	}
	if err != nil {
		return value, err
	}
	if err := d.codec.Unmarshal(raw, &value); err != nil {
		return value, fmt.Errorf("platform/kv: decode %s: %w", d.key, err)
	}
	return value, nil
}

// Save encodes and stores value.
func (d *Document[T]) Save(ctx context.Context, value T) error {
	raw, err := d.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("platform/kv: encode %s: %w", d.key, err)
	}
	return d.store.Set(ctx, d.key, raw)
}
