package service

import (
	"context"
	"testing"
	"time"

	"prompthub/internal/cache"
	"prompthub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens := NewTokenService(testSecret, cache.NewRedisStore(rdb))
	ctx := context.Background()
	user := &models.User{ID: 42, Username: "alice"}

	signed, claims, err := tokens.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.JTI)
	assert.WithinDuration(t, time.Now().Add(TokenTTL), claims.ExpiresAt, time.Minute)

	got, err := tokens.Verify(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, uint(42), got.UserID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, claims.JTI, got.JTI)

	require.NoError(t, tokens.Revoke(ctx, got))
	assert.True(t, mr.Exists(cache.TokenBlacklistKey(claims.JTI)))
	ttl := mr.TTL(cache.TokenBlacklistKey(claims.JTI))
	assert.Greater(t, ttl, 6*24*time.Hour)

	_, err = tokens.Verify(ctx, signed)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestTokenService_Rejects(t *testing.T) {
	store := cache.NewLocalStore(8)
	tokens := NewTokenService(testSecret, store)
	user := &models.User{ID: 7, Username: "bob"}

	t.Run("wrong secret", func(t *testing.T) {
		signed, _, err := NewTokenService("another-secret-of-sufficient-length-000", store).Issue(user)
		require.NoError(t, err)
		_, err = tokens.Parse(signed)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		old := NewTokenService(testSecret, store)
		old.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
		signed, _, err := old.Issue(user)
		require.NoError(t, err)
		_, err = tokens.Parse(signed)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Parse("not.a.token")
		assert.Error(t, err)
	})

	t.Run("missing secret", func(t *testing.T) {
		_, _, err := NewTokenService("", store).Issue(user)
		assert.Error(t, err)
	})
}

func TestTokenService_RevokeExpiredIsNoop(t *testing.T) {
	store := cache.NewLocalStore(8)
	tokens := NewTokenService(testSecret, store)
	ctx := context.Background()

	claims := TokenClaims{UserID: 1, JTI: "gone", ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, tokens.Revoke(ctx, claims))
	_, found, err := store.Get(ctx, cache.TokenBlacklistKey("gone"))
	require.NoError(t, err)
	assert.False(t, found)
}
