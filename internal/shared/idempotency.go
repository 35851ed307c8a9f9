package shared

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/omnimarket/omnimarket/internal/platform/kv"
)

type idempotencyEntry struct {
	Module    string    `json:"module"`
	CreatedAt time.Time `json:"createdAt"`
}

// IdempotencyStore persists processed keys.
type IdempotencyStore struct {
	mu  sync.Mutex
	doc *kv.Document[map[string]idempotencyEntry]
	now func() time.Time
}

// NewIdempotencyStore constructs the store.
func NewIdempotencyStore(store kv.Store, codec kv.Codec) *IdempotencyStore {
	return &IdempotencyStore{
		doc: kv.NewDocument(store, codec, kv.KeyIdempotency, func() map[string]idempotencyEntry {
			return map[string]idempotencyEntry{}
		}),
		now: time.Now,
	}
}

// ErrIdempotencyConflict indicates a duplicate key.
var ErrIdempotencyConflict = errors.New("idempotent request already processed")

// CheckAndInsert ensures key uniqueness per module.
func (s *IdempotencyStore) CheckAndInsert(ctx context.Context, key, module string) error {
	if s == nil {
		return errors.New("idempotency store not initialised")
	}
	if key == "" {
		return errors.New("idempotency key required")
	}
	if module == "" {
		return errors.New("idempotency module required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.doc.Load(ctx)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = map[string]idempotencyEntry{}
	}
	if _, exists := entries[key]; exists {
		return ErrIdempotencyConflict
	}
	entries[key] = idempotencyEntry{Module: module, CreatedAt: s.now().UTC()}
	return s.doc.Save(ctx, entries)
}

// Cleanup removes entries older than retention.
func (s *IdempotencyStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if s == nil {
		return nil
	}
	cutoff := s.now().Add(-olderThan)
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.doc.Load(ctx)
	if err != nil {
		return err
	}
	for key, entry := range entries {
		if entry.CreatedAt.Before(cutoff) {
			delete(entries, key)
		}
	}
	return s.doc.Save(ctx, entries)
}

// Delete removes a key, typically used to roll back failed processing.
func (s *IdempotencyStore) Delete(ctx context.Context, key string) error {
	if s == nil {
		return nil
	}
	if key == "" {
		return errors.New("idempotency key required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.doc.Load(ctx)
	if err != nil {
		return err
	}
	delete(entries, key)
	return s.doc.Save(ctx, entries)
}
