package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"prompthub/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		expectedUser *models.User
		expectedCode string
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "username", "email"}).
					AddRow(1, "user-1a2b3c4d", "test@example.com")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(rows)
			},
			expectedUser: &models.User{ID: 1, Username: "user-1a2b3c4d", Email: "test@example.com"},
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedCode: models.ErrCodeNotFound,
		},
		{
			name:   "Database failure",
			userID: 2,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
					WithArgs(2, 1).
					WillReturnError(errors.New("connection reset"))
			},
			expectedCode: models.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)
			if tt.expectedCode != "" {
				var appErr *models.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.expectedCode, appErr.Code)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedUser.Username, user.Username)
				assert.Equal(t, tt.expectedUser.Email, user.Email)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestUserRepository_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewUserRepository(db)
	ctx := context.Background()

	carol := &models.User{Email: "Carol@Example.com", Username: "carol", Password: "hash"}
	require.NoError(t, repo.Create(ctx, carol))

	settings, err := repo.GetSettings(ctx, carol.ID)
	require.NoError(t, err)
	assert.True(t, settings.PublicProfile)
	assert.True(t, settings.EmailNotificationsEnabled)
	assert.False(t, settings.DataSharing)

	settings.DataSharing = true
	require.NoError(t, repo.SaveSettings(ctx, settings))
	settings, err = repo.GetSettings(ctx, carol.ID)
	require.NoError(t, err)
	assert.True(t, settings.DataSharing)

	got, err := repo.GetByEmail(ctx, " carol@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, carol.ID, got.ID)

	_, err = repo.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	taken, err := repo.UsernameTaken(ctx, "CAROL", 0)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = repo.UsernameTaken(ctx, "carol", carol.ID)
	require.NoError(t, err)
	assert.False(t, taken, "a user's own name is not taken")

	taken, err = repo.EmailTaken(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.True(t, taken)

	t.Run("delete recomputes counters of touched posts", func(t *testing.T) {
		alicePost := f.post(t, db, f.alice, "Liked by carol and bob")
		carolPost := f.post(t, db, *carol, "Carol's own post")
		interactions := NewInteractionRepository(db)
		for _, uid := range []uint{carol.ID, f.bob.ID} {
			_, err := interactions.Toggle(ctx, uid, alicePost.ID, models.InteractionLike)
			require.NoError(t, err)
		}
		_, err := interactions.Toggle(ctx, carol.ID, alicePost.ID, models.InteractionBookmark)
		require.NoError(t, err)
		_, err = interactions.Toggle(ctx, f.bob.ID, carolPost.ID, models.InteractionLike)
		require.NoError(t, err)

		sessions := NewSessionRepository(db)
		require.NoError(t, sessions.Create(ctx, &models.UserSession{UserID: carol.ID, Key: "carol-key", ExpiresAt: time.Now().Add(time.Hour)}))

		require.NoError(t, repo.Delete(ctx, carol.ID))

		var post models.Post
		require.NoError(t, db.First(&post, alicePost.ID).Error)
		assert.Equal(t, 1, post.LikeCount)
		assert.Equal(t, 0, post.BookmarkCount)

		for _, m := range []interface{}{&models.UserSession{}, &models.UserSettings{}} {
			var n int64
			db.Model(m).Where("user_id = ?", carol.ID).Count(&n)
			assert.Zero(t, n, "%T", m)
		}
		var n int64
		db.Model(&models.PostInteraction{}).Where("post_id = ?", carolPost.ID).Count(&n)
		assert.Zero(t, n)
		assert.ErrorIs(t, db.First(&models.Post{}, carolPost.ID).Error, gorm.ErrRecordNotFound)

		_, err = repo.GetByID(ctx, carol.ID)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.ErrCodeNotFound, appErr.Code)

		assert.ErrorIs(t, repo.Delete(ctx, carol.ID), gorm.ErrRecordNotFound)
	})
}
