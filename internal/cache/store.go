package cache

import (
	"context"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

// Store is a byte-oriented key/value cache with per-key TTL.
type Store interface {
	// Get returns (nil, false, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Name identifies the backend in logs and metrics.
	Name() string
}

// NewStore returns a Redis-backed store when rdb is non-nil, otherwise an
// in-process LRU store holding up to localSize entries.
func NewStore(rdb *redis.Client, localSize int) Store {
	if rdb != nil {
		return NewRedisStore(rdb)
	}
	return NewLocalStore(localSize)
}

// RedisStore keeps entries in Redis.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

type localEntry struct {
	value     []byte
	expiresAt time.Time
}

// LocalStore is a size-bounded in-process store with lazy TTL expiry.
type LocalStore struct {
	entries *lru.Cache[string, localEntry]
	now     func() time.Time
}

const defaultLocalSize = 512

func NewLocalStore(size int) *LocalStore {
	if size <= 0 {
		size = defaultLocalSize
	}
	entries, err := lru.New[string, localEntry](size)
	if err != nil {
		// Only returned for non-positive sizes, which are replaced above.
		panic(err)
	}
	return &LocalStore{entries: entries, now: time.Now}
}

func (s *LocalStore) Name() string { return "local" }

func (s *LocalStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := s.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.entries.Remove(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (s *LocalStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	entry := localEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries.Add(key, entry)
	return nil
}

func (s *LocalStore) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		s.entries.Remove(key)
	}
	return nil
}
