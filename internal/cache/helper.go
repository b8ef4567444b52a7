package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"prompthub/internal/middleware"
	"prompthub/internal/observability"
)

// GetJSON reads key from s and unmarshals it into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, s Store, key string, dest any) (bool, error) {
	b, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it under key with ttl.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, b, ttl)
}

// Aside serves key from s, otherwise calls fetch (which must populate dest)
// and stores dest with ttl. Cache failures are logged and never returned;
// only fetch errors are. It reports whether dest came from the cache.
func Aside(ctx context.Context, s Store, key string, dest any, ttl time.Duration, fetch func() error) (bool, error) {
	family := keyFamily(key)

	found, err := GetJSON(ctx, s, key, dest)
	switch {
	case err != nil:
		observability.CacheRequests.WithLabelValues(family, "error").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed, recomputing",
			slog.String("key", key),
			slog.String("store", s.Name()),
			slog.String("error", err.Error()),
		)
	case found:
		observability.CacheRequests.WithLabelValues(family, "hit").Inc()
		return true, nil
	default:
		observability.CacheRequests.WithLabelValues(family, "miss").Inc()
	}

	if err := fetch(); err != nil {
		return false, err
	}

	if err := SetJSON(ctx, s, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed",
			slog.String("key", key),
			slog.String("store", s.Name()),
			slog.String("error", err.Error()),
		)
	}
	return false, nil
}

// Invalidate deletes keys, logging failures.
func Invalidate(ctx context.Context, s Store, keys ...string) {
	if err := s.Delete(ctx, keys...); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed",
			slog.Any("keys", keys),
			slog.String("store", s.Name()),
			slog.String("error", err.Error()),
		)
	}
}

func keyFamily(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
