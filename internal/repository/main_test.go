package repository

import (
	"testing"
	"time"

	"prompthub/internal/database"
	"prompthub/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	// Every pooled connection to :memory: would be a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

// fixture is a small catalog with two users.
type fixture struct {
	alice, bob          models.User
	openai, anthropic   models.Platform
	otherPlatform       models.Platform
	gpt4o, o1, gptOther models.AiModel
	claude, otherModel  models.AiModel
	dev, otherCategory  models.Category
}

func seedFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	f := &fixture{
		alice:         models.User{Email: "alice@example.com", Username: "alice", Password: "x"},
		bob:           models.User{Email: "bob@example.com", Username: "bob", Password: "x"},
		openai:        models.Platform{Name: "OpenAI", IsActive: true},
		anthropic:     models.Platform{Name: "Anthropic", IsActive: true},
		otherPlatform: models.Platform{Name: models.OtherName, IsActive: true},
		dev:           models.Category{Name: "개발"},
		otherCategory: models.Category{Name: models.OtherName},
	}
	for _, v := range []interface{}{&f.alice, &f.bob, &f.openai, &f.anthropic, &f.otherPlatform, &f.dev, &f.otherCategory} {
		require.NoError(t, db.Create(v).Error)
	}

	f.gpt4o = models.AiModel{PlatformID: f.openai.ID, Name: "GPT-4o", SortOrder: 1, IsActive: true, VariantFreeTextAllowed: true}
	f.o1 = models.AiModel{PlatformID: f.openai.ID, Name: "o1", SortOrder: 2, IsActive: true}
	f.gptOther = models.AiModel{PlatformID: f.openai.ID, Name: models.OtherName, IsActive: true}
	f.claude = models.AiModel{PlatformID: f.anthropic.ID, Name: "Claude", IsActive: true, VariantFreeTextAllowed: true}
	f.otherModel = models.AiModel{PlatformID: f.otherPlatform.ID, Name: models.OtherName, IsActive: true}
	for _, m := range []*models.AiModel{&f.gpt4o, &f.o1, &f.gptOther, &f.claude, &f.otherModel} {
		require.NoError(t, db.Create(m).Error)
	}
	return f
}

type postOpt func(*models.Post)

func (f *fixture) post(t *testing.T, db *gorm.DB, author models.User, title string, opts ...postOpt) *models.Post {
	t.Helper()
	modelID := f.gpt4o.ID
	p := &models.Post{
		Title:      title,
		AuthorID:   author.ID,
		PlatformID: f.openai.ID,
		ModelID:    &modelID,
		CategoryID: f.dev.ID,
		Prompt:     "prompt body for " + title,
		AIResponse: "response body for " + title,
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(t, db.Omit("Author", "Platform", "Model", "Category").Create(p).Error)
	return p
}

func withModel(m models.AiModel, etc, detail string) postOpt {
	return func(p *models.Post) {
		id := m.ID
		p.PlatformID = m.PlatformID
		p.ModelID = &id
		p.ModelEtc = etc
		p.ModelDetail = detail
	}
}

func withCategory(c models.Category, etc string) postOpt {
	return func(p *models.Post) {
		p.CategoryID = c.ID
		p.CategoryEtc = etc
	}
}

func withCreated(at time.Time) postOpt {
	return func(p *models.Post) { p.CreatedAt = at }
}

func withCounts(views, likes, bookmarks int) postOpt {
	return func(p *models.Post) {
		p.ViewCount = views
		p.LikeCount = likes
		p.BookmarkCount = bookmarks
	}
}

func withSatisfaction(v float64) postOpt {
	return func(p *models.Post) { p.Satisfaction = &v }
}

func withText(prompt, tags string) postOpt {
	return func(p *models.Post) {
		p.Prompt = prompt
		p.Tags = tags
	}
}

func titles(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}
