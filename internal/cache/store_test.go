package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewRedisStore(rdb)
}

func TestStores(t *testing.T) {
	_, redisStore := newRedisStore(t)
	stores := map[string]Store{
		"redis": redisStore,
		"local": NewLocalStore(8),
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := s.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, SetJSON(ctx, s, "k", payload{Name: "a", Count: 2}, time.Minute))
			var got payload
			found, err := GetJSON(ctx, s, "k", &got)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, payload{Name: "a", Count: 2}, got)

			require.NoError(t, s.Delete(ctx, "k"))
			found, err = GetJSON(ctx, s, "k", &got)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestLocalStoreExpiry(t *testing.T) {
	s := NewLocalStore(2)
	now := time.Now()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, _ := s.Get(ctx, "k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestLocalStoreEvictsLeastRecentlyUsed(t *testing.T) {
	s := NewLocalStore(2)
	ctx := context.Background()
	_ = s.Set(ctx, "a", []byte("1"), 0)
	_ = s.Set(ctx, "b", []byte("2"), 0)
	_, _, _ = s.Get(ctx, "a")
	_ = s.Set(ctx, "c", []byte("3"), 0)

	_, ok, _ := s.Get(ctx, "b")
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, "a")
	assert.True(t, ok)
}

func TestRedisStoreTTL(t *testing.T) {
	mr, s := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, TrendingRankingsKey, []byte("{}"), time.Hour))
	assert.Equal(t, time.Hour, mr.TTL(TrendingRankingsKey))

	mr.FastForward(time.Hour + time.Second)
	_, ok, err := s.Get(ctx, TrendingRankingsKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAside(t *testing.T) {
	ctx := context.Background()

	t.Run("miss then hit", func(t *testing.T) {
		s := NewLocalStore(4)
		calls := 0
		fetch := func(dest *payload) func() error {
			return func() error {
				calls++
				*dest = payload{Name: "fresh", Count: calls}
				return nil
			}
		}

		var first payload
		fromCache, err := Aside(ctx, s, "stats:x", &first, time.Minute, fetch(&first))
		require.NoError(t, err)
		assert.False(t, fromCache)

		var second payload
		fromCache, err = Aside(ctx, s, "stats:x", &second, time.Minute, fetch(&second))
		require.NoError(t, err)
		assert.True(t, fromCache)
		assert.Equal(t, first, second)
		assert.Equal(t, 1, calls)
	})

	t.Run("fetch error is returned and nothing stored", func(t *testing.T) {
		s := NewLocalStore(4)
		boom := errors.New("db down")
		var dest payload
		_, err := Aside(ctx, s, "stats:y", &dest, time.Minute, func() error { return boom })
		assert.ErrorIs(t, err, boom)

		_, ok, _ := s.Get(ctx, "stats:y")
		assert.False(t, ok)
	})

	t.Run("broken redis degrades to fetch", func(t *testing.T) {
		mr, s := newRedisStore(t)
		mr.Close()

		var dest payload
		fromCache, err := Aside(ctx, s, "stats:z", &dest, time.Minute, func() error {
			dest = payload{Name: "db"}
			return nil
		})
		require.NoError(t, err)
		assert.False(t, fromCache)
		assert.Equal(t, "db", dest.Name)
	})

	t.Run("corrupt entry is recomputed", func(t *testing.T) {
		s := NewLocalStore(4)
		require.NoError(t, s.Set(ctx, "stats:c", []byte("not json"), time.Minute))

		var dest payload
		fromCache, err := Aside(ctx, s, "stats:c", &dest, time.Minute, func() error {
			dest = payload{Name: "rebuilt"}
			return nil
		})
		require.NoError(t, err)
		assert.False(t, fromCache)
		assert.Equal(t, "rebuilt", dest.Name)
	})
}

func TestNewStore(t *testing.T) {
	assert.Equal(t, "local", NewStore(nil, 0).Name())

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	assert.Equal(t, "redis", NewStore(rdb, 0).Name())
	assert.Equal(t, "blacklist:abc", TokenBlacklistKey("abc"))
}
