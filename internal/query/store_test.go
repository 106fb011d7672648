package query

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "sess", ttl), mr
}

// stores runs the same checks against both store implementations
func stores(t *testing.T) map[string]Store {
	redisStore, _ := newRedisStore(t, time.Minute)
	return map[string]Store{
		"memory": NewMemoryStore(time.Minute),
		"redis":  redisStore,
	}
}

func TestStoreGetSet(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := s.Get(ctx, Categories)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set(ctx, Categories, []byte(`["chairs"]`)))
			data, ok, err := s.Get(ctx, Categories)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, `["chairs"]`, string(data))
		})
	}
}

func TestStoreDeleteCoversChildren(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Set(ctx, Product.With("p1"), []byte(`1`)))
			require.NoError(t, s.Set(ctx, Product.With("p2"), []byte(`2`)))
			require.NoError(t, s.Set(ctx, ProductStats.With("p1"), []byte(`3`)))

			require.NoError(t, s.Delete(ctx, Product))

			_, ok, _ := s.Get(ctx, Product.With("p1"))
			assert.False(t, ok)
			_, ok, _ = s.Get(ctx, Product.With("p2"))
			assert.False(t, ok)
			_, ok, _ = s.Get(ctx, ProductStats.With("p1"))
			assert.True(t, ok, "sibling key with a shared name prefix survives")
		})
	}
}

func TestStoreDeleteEscapesGlob(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Set(ctx, Product.With("p*"), []byte(`1`)))
			require.NoError(t, s.Set(ctx, Product.With("px").With("images"), []byte(`2`)))

			require.NoError(t, s.Delete(ctx, Product.With("p*")))

			_, ok, _ := s.Get(ctx, Product.With("p*"))
			assert.False(t, ok)
			_, ok, _ = s.Get(ctx, Product.With("px").With("images"))
			assert.True(t, ok)
		})
	}
}

func TestStoreDeleteKeepsSegmentsContainingSeparator(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Set(ctx, Product.With("a"), []byte(`1`)))
			require.NoError(t, s.Set(ctx, Product.With("a:b"), []byte(`2`)))
			require.NoError(t, s.Set(ctx, Product.With("a").With("b"), []byte(`3`)))

			data, ok, err := s.Get(ctx, Product.With("a:b"))
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, []byte(`2`), data, "a segment holding ':' is a distinct key")

			require.NoError(t, s.Delete(ctx, Product.With("a")))

			_, ok, _ = s.Get(ctx, Product.With("a"))
			assert.False(t, ok)
			_, ok, _ = s.Get(ctx, Product.With("a").With("b"))
			assert.False(t, ok)
			_, ok, _ = s.Get(ctx, Product.With("a:b"))
			assert.True(t, ok)
		})
	}
}

func TestKeyEncode(t *testing.T) {
	assert.Equal(t, "product:42", Product.With("42").Encode())
	assert.Equal(t, `product:a\:b`, Product.With("a:b").Encode())
	assert.Equal(t, `product:a\\:b`, Product.With(`a\`).With("b").Encode())
	assert.NotEqual(t, Product.With("a:b").Encode(), Product.With("a").With("b").Encode())
}

func TestStoreClear(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Set(ctx, Categories, []byte(`[]`)))
			require.NoError(t, s.Set(ctx, IsAdmin.With("alice"), []byte(`true`)))

			require.NoError(t, s.Clear(ctx))

			_, ok, _ := s.Get(ctx, Categories)
			assert.False(t, ok)
			_, ok, _ = s.Get(ctx, IsAdmin.With("alice"))
			assert.False(t, ok)
		})
	}
}

func TestRedisStoreClearKeepsOtherNamespaces(t *testing.T) {
	s, mr := newRedisStore(t, time.Minute)
	require.NoError(t, mr.Set("other:categories", "x"))
	require.NoError(t, s.Set(context.Background(), Categories, []byte(`[]`)))

	require.NoError(t, s.Clear(context.Background()))

	assert.True(t, mr.Exists("other:categories"))
	assert.False(t, mr.Exists("sess:categories"))
}

func TestRedisStoreTTL(t *testing.T) {
	s, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, StoreInfo, []byte(`{}`)))

	mr.FastForward(2 * time.Minute)

	_, ok, err := s.Get(ctx, StoreInfo)
	require.NoError(t, err)
	assert.False(t, ok)
}
