package kv

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type sampleDoc struct {
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Count   int             `json:"count"`
	Note    *string         `json:"note,omitempty"`
	Created time.Time       `json:"created"`
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, "k", []byte("one")))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "one", string(got))

	require.NoError(t, store.Set(ctx, "k", []byte("two")))
	got, err = store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "two", string(got))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "omnimarket.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	exerciseStore(t, store)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedis(client, "omnimarket:")
	exerciseStore(t, store)
	require.True(t, mr.Exists("omnimarket:k"))
}

func TestOpenRedisDialsAndOwnsClient(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := Open(context.Background(), Options{Driver: DriverRedis, RedisAddr: mr.Addr()})
	require.NoError(t, err)
	exerciseStore(t, store)
	require.NoError(t, Close(store))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "etcd"})
	require.Error(t, err)
}

func TestDocumentFallbackAndRoundTrip(t *testing.T) {
	for _, codec := range []Codec{JSON, Msgpack} {
		t.Run(codec.Name(), func(t *testing.T) {
			ctx := context.Background()
			store := NewMemory()
			doc := NewDocument(store, codec, "samples", func() []sampleDoc {
				return []sampleDoc{{Name: "seed", Count: 1}}
			})

			loaded, err := doc.Load(ctx)
			require.NoError(t, err)
			require.Len(t, loaded, 1)
			require.Equal(t, "seed", loaded[0].Name)

			note := "fragile"
			created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
			require.NoError(t, doc.Save(ctx, []sampleDoc{
				{Name: "Karton", Price: decimal.NewFromInt(170000), Count: 120, Note: &note, Created: created},
				{Name: "Renceng", Price: decimal.RequireFromString("14500.50"), Count: 10, Created: created},
			}))

			loaded, err = doc.Load(ctx)
			require.NoError(t, err)
			require.Len(t, loaded, 2)
			require.Equal(t, "170000", loaded[0].Price.String())
			require.Equal(t, "14500.5", loaded[1].Price.String())
			require.Equal(t, 120, loaded[0].Count)
			require.NotNil(t, loaded[0].Note)
			require.Equal(t, "fragile", *loaded[0].Note)
			require.Nil(t, loaded[1].Note)
			require.True(t, created.Equal(loaded[0].Created))
		})
	}
}

func TestDocumentNilFallbackYieldsZero(t *testing.T) {
	doc := NewDocument[int](NewMemory(), nil, "threshold", nil)
	value, err := doc.Load(context.Background())
	require.NoError(t, err)
	require.Zero(t, value)
	require.Equal(t, "threshold", doc.Key())
}

func TestDocumentDecodeError(t *testing.T) {
	store := NewMemory()
	require.NoError(t, store.Set(context.Background(), "bad", []byte("{not json")))
	doc := NewDocument[[]sampleDoc](store, JSON, "bad", nil)
	_, err := doc.Load(context.Background())
	require.Error(t, err)
}

func TestCodecByName(t *testing.T) {
	codec, err := CodecByName("")
	require.NoError(t, err)
	require.Equal(t, "json", codec.Name())

	codec, err = CodecByName("msgpack")
	require.NoError(t, err)
	require.Equal(t, "msgpack", codec.Name())

	_, err = CodecByName("xml")
	require.Error(t, err)
}
