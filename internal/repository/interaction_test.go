package repository

import (
	"context"
	"testing"

	"prompthub/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestInteractionRepository_Toggle(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewInteractionRepository(db)
	ctx := context.Background()
	post := f.post(t, db, f.alice, "Toggle target")

	countRows := func() int64 {
		var n int64
		db.Model(&models.PostInteraction{}).Where("post_id = ?", post.ID).Count(&n)
		return n
	}

	t.Run("author acting on own post is a no-op", func(t *testing.T) {
		for _, kind := range []models.InteractionKind{models.InteractionLike, models.InteractionBookmark} {
			res, err := repo.Toggle(ctx, f.alice.ID, post.ID, kind)
			require.NoError(t, err)
			assert.True(t, res.Self)
			assert.False(t, res.Active)
			assert.Zero(t, res.Count)
		}
		assert.Zero(t, countRows())
	})

	t.Run("like then unlike restores state", func(t *testing.T) {
		res, err := repo.Toggle(ctx, f.bob.ID, post.ID, models.InteractionLike)
		require.NoError(t, err)
		assert.Equal(t, ToggleResult{Active: true, Count: 1}, res)

		res, err = repo.Toggle(ctx, f.bob.ID, post.ID, models.InteractionLike)
		require.NoError(t, err)
		assert.Equal(t, ToggleResult{Active: false, Count: 0}, res)
		assert.EqualValues(t, 1, countRows(), "the interaction row is reused")
	})

	t.Run("bookmark is independent of like", func(t *testing.T) {
		_, err := repo.Toggle(ctx, f.bob.ID, post.ID, models.InteractionLike)
		require.NoError(t, err)
		res, err := repo.Toggle(ctx, f.bob.ID, post.ID, models.InteractionBookmark)
		require.NoError(t, err)
		assert.Equal(t, ToggleResult{Active: true, Count: 1}, res)

		flags, err := repo.Flags(ctx, f.bob.ID, []uint{post.ID, 9999})
		require.NoError(t, err)
		assert.Equal(t, map[uint]InteractionFlags{post.ID: {Liked: true, Bookmarked: true}}, flags)

		last, err := repo.LastInteraction(ctx, f.bob.ID)
		require.NoError(t, err)
		assert.NotNil(t, last.LastLike)
		assert.NotNil(t, last.LastBookmark)
	})

	t.Run("counter never goes below zero", func(t *testing.T) {
		require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).UpdateColumn("like_count", 0).Error)
		res, err := repo.Toggle(ctx, f.bob.ID, post.ID, models.InteractionLike)
		require.NoError(t, err)
		assert.False(t, res.Active)
		assert.Zero(t, res.Count)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := repo.Toggle(ctx, f.bob.ID, 9999, models.InteractionLike)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("no flags for anonymous viewers", func(t *testing.T) {
		flags, err := repo.Flags(ctx, 0, []uint{post.ID})
		require.NoError(t, err)
		assert.Empty(t, flags)

		last, err := repo.LastInteraction(ctx, f.alice.ID)
		require.NoError(t, err)
		assert.Nil(t, last.LastLike)
	})
}

func TestInteractionRepository_Toggle_LocksPostOnPostgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewInteractionRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id","author_id","like_count","bookmark_count" FROM "posts" WHERE "posts"."id" = \$1 .*FOR UPDATE`).
		WithArgs(5, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "author_id", "like_count", "bookmark_count"}).AddRow(5, 3, 7, 2))
	mock.ExpectCommit()

	res, err := repo.Toggle(context.Background(), 3, 5, models.InteractionBookmark)
	require.NoError(t, err)
	assert.Equal(t, ToggleResult{Self: true, Count: 2}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}
