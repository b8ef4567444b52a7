package service

import (
	"context"
	"errors"
	"testing"

	"prompthub/internal/cache"
	"prompthub/internal/database"
	"prompthub/internal/featureflags"
	"prompthub/internal/geo"
	"prompthub/internal/models"
	"prompthub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-with-enough-length-0123456789"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// env wires every service onto one in-memory database and local cache.
type env struct {
	db       *gorm.DB
	store    cache.Store
	tokens   *TokenService
	posts    *PostService
	catalog  *CatalogService
	trending *TrendingService
	stats    *StatsService
	users    *UserService

	alice, bob          models.User
	openai, anthropic   models.Platform
	otherPlatform       models.Platform
	gpt4o, o1, gptOther models.AiModel
	claude, otherModel  models.AiModel
	dev, otherCategory  models.Category
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := setupTestDB(t)
	store := cache.NewLocalStore(64)
	flags := featureflags.NewManager("ip_geolocation=off")

	postRepo := repository.NewPostRepository(db)
	interactions := repository.NewInteractionRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	isAdmin := func(ctx context.Context, userID uint) (bool, error) {
		var user models.User
		if err := db.WithContext(ctx).Select("is_admin").First(&user, userID).Error; err != nil {
			return false, err
		}
		return user.IsAdmin, nil
	}

	e := &env{db: db, store: store}
	e.tokens = NewTokenService(testSecret, store)
	e.posts = NewPostService(postRepo, interactions, catalogRepo, store, flags, isAdmin)
	e.catalog = NewCatalogService(catalogRepo, store)
	e.trending = NewTrendingService(repository.NewTrendingRepository(db), e.posts, postRepo, store, 0)
	e.stats = NewStatsService(statsRepo, postRepo, interactions, store)
	e.users = NewUserService(repository.NewUserRepository(db), repository.NewSessionRepository(db), statsRepo,
		e.tokens, geo.Static("Busan, South Korea"), flags, "Seoul, South Korea")

	e.alice = models.User{Email: "alice@example.com", Username: "alice", Password: "x"}
	e.bob = models.User{Email: "bob@example.com", Username: "bob", Password: "x"}
	e.openai = models.Platform{Name: "OpenAI", IsActive: true}
	e.anthropic = models.Platform{Name: "Anthropic", IsActive: true}
	e.otherPlatform = models.Platform{Name: models.OtherName, IsActive: true}
	e.dev = models.Category{Name: "개발"}
	e.otherCategory = models.Category{Name: models.OtherName}
	for _, v := range []interface{}{&e.alice, &e.bob, &e.openai, &e.anthropic, &e.otherPlatform, &e.dev, &e.otherCategory} {
		require.NoError(t, db.Create(v).Error)
	}

	e.gpt4o = models.AiModel{PlatformID: e.openai.ID, Name: "GPT-4o", SortOrder: 1, IsActive: true, VariantFreeTextAllowed: true}
	e.o1 = models.AiModel{PlatformID: e.openai.ID, Name: "o1", SortOrder: 2, IsActive: true}
	e.gptOther = models.AiModel{PlatformID: e.openai.ID, Name: models.OtherName, IsActive: true}
	e.claude = models.AiModel{PlatformID: e.anthropic.ID, Name: "Claude", IsActive: true, VariantFreeTextAllowed: true}
	e.otherModel = models.AiModel{PlatformID: e.otherPlatform.ID, Name: models.OtherName, IsActive: true}
	for _, m := range []*models.AiModel{&e.gpt4o, &e.o1, &e.gptOther, &e.claude, &e.otherModel} {
		require.NoError(t, db.Create(m).Error)
	}
	return e
}

func ptr[T any](v T) *T { return &v }

// validInput is a complete post on OpenAI GPT-4o.
func (e *env) validInput(title string) PostInput {
	return PostInput{
		Title:      ptr(title),
		PlatformID: ptr(e.openai.ID),
		ModelID:    ptr(e.gpt4o.ID),
		CategoryID: ptr(e.dev.ID),
		Prompt:     ptr("Explain goroutines in detail"),
		AIResponse: ptr("Goroutines are **lightweight** threads."),
	}
}

func (e *env) createPost(t *testing.T, author models.User, title string) *PostDetail {
	t.Helper()
	detail, err := e.posts.CreatePost(context.Background(), author.ID, e.validInput(title))
	require.NoError(t, err)
	return detail
}

func assertAppError(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}
