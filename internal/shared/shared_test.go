package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/omnimarket/omnimarket/internal/platform/kv"
)

func TestIdempotencyStoreOnRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewIdempotencyStore(kv.NewRedis(client, "test:"), kv.Msgpack)
	ctx := context.Background()

	require.NoError(t, store.CheckAndInsert(ctx, "TX-1", "sales"))
	require.ErrorIs(t, store.CheckAndInsert(ctx, "TX-1", "sales"), ErrIdempotencyConflict)

	require.NoError(t, store.Delete(ctx, "TX-1"))
	require.NoError(t, store.CheckAndInsert(ctx, "TX-1", "sales"))
}

func TestIdempotencyStoreValidation(t *testing.T) {
	store := NewIdempotencyStore(kv.NewMemory(), nil)
	ctx := context.Background()
	require.Error(t, store.CheckAndInsert(ctx, "", "sales"))
	require.Error(t, store.CheckAndInsert(ctx, "k", ""))

	var nilStore *IdempotencyStore
	require.Error(t, nilStore.CheckAndInsert(ctx, "k", "sales"))
	require.NoError(t, nilStore.Delete(ctx, "k"))
}

func TestIdempotencyCleanup(t *testing.T) {
	store := NewIdempotencyStore(kv.NewMemory(), nil)
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return now.Add(-48 * time.Hour) }
	require.NoError(t, store.CheckAndInsert(ctx, "old", "sales"))
	store.now = func() time.Time { return now }
	require.NoError(t, store.CheckAndInsert(ctx, "fresh", "sales"))

	require.NoError(t, store.Cleanup(ctx, 24*time.Hour))
	require.NoError(t, store.CheckAndInsert(ctx, "old", "sales"))
	require.ErrorIs(t, store.CheckAndInsert(ctx, "fresh", "sales"), ErrIdempotencyConflict)
}

func TestAuditLoggerAppends(t *testing.T) {
	logger := NewAuditLogger(kv.NewMemory(), kv.JSON)
	ctx := context.Background()

	require.Error(t, logger.Record(ctx, AuditLog{Action: "upsert"}))
	require.NoError(t, logger.Record(ctx, AuditLog{Actor: "Budi", Action: "upsert", Entity: "product", EntityID: "P001"}))
	require.NoError(t, logger.Record(ctx, AuditLog{Actor: "Budi", Action: "delete", Entity: "product", EntityID: "P002"}))

	logs, err := logger.List(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, "upsert", logs[0].Action)
	require.Equal(t, "delete", logs[1].Action)
	require.False(t, logs[0].At.IsZero())
}

func TestActorLabelAndContext(t *testing.T) {
	require.Equal(t, "Siti", Actor{ID: "u1", Name: "Siti"}.Label())
	require.Equal(t, "u1", Actor{ID: "u1"}.Label())
	require.Equal(t, "system", Actor{}.Label())

	ctx := ContextWithActor(context.Background(), Actor{ID: "u2", Role: RoleCashier})
	actor, ok := ActorFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, RoleCashier, actor.Role)

	_, ok = ActorFromContext(context.Background())
	require.False(t, ok)
}
