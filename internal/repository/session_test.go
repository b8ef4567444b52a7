package repository

import (
	"context"
	"testing"
	"time"

	"prompthub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSessionRepository(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &sessionRepository{db: db, now: func() time.Time { return now }}
	ctx := context.Background()

	for i, key := range []string{"k1", "k2", "k3"} {
		s := &models.UserSession{
			UserID:     f.alice.ID,
			Key:        key,
			JTI:        "jti-" + key,
			ExpiresAt:  now.Add(24 * time.Hour),
			LastActive: now.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, s))
	}
	require.NoError(t, repo.Create(ctx, &models.UserSession{UserID: f.alice.ID, Key: "expired", ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Create(ctx, &models.UserSession{UserID: f.bob.ID, Key: "bob", ExpiresAt: now.Add(time.Hour)}))

	active, err := repo.ListActive(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, active, 3)
	assert.Equal(t, "k3", active[0].Key)

	revoked, err := repo.Revoke(ctx, f.alice.ID, "k1")
	require.NoError(t, err)
	assert.Equal(t, "jti-k1", revoked.JTI)
	assert.False(t, revoked.IsActive())

	again, err := repo.Revoke(ctx, f.alice.ID, "k1")
	require.NoError(t, err)
	assert.Equal(t, revoked.RevokedAt.Unix(), again.RevokedAt.Unix())

	_, err = repo.Revoke(ctx, f.alice.ID, "bob")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "sessions of other users cannot be revoked")

	ended, err := repo.RevokeAll(ctx, f.alice.ID, "k3")
	require.NoError(t, err)
	keys := make([]string, len(ended))
	for i, s := range ended {
		keys[i] = s.Key
	}
	assert.ElementsMatch(t, []string{"k2", "expired"}, keys)

	active, err = repo.ListActive(ctx, f.alice.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "k3", active[0].Key)

	now = now.Add(time.Hour)
	require.NoError(t, repo.Touch(ctx, "k3"))
	s, err := repo.FindByKey(ctx, f.alice.ID, "k3")
	require.NoError(t, err)
	assert.True(t, s.LastActive.Equal(now))
}
