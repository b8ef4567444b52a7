package repository

import (
	"context"
	"testing"

	"prompthub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modelNames(list []models.AiModel) []string {
	out := make([]string, len(list))
	for i, m := range list {
		out[i] = m.Name
	}
	return out
}

func TestCatalogRepository(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	dormant := models.Platform{Name: "Dormant AI", IsActive: true}
	require.NoError(t, db.Create(&dormant).Error)
	require.NoError(t, db.Model(&dormant).Update("is_active", false).Error)
	require.NoError(t, db.Create(&models.AiModel{PlatformID: dormant.ID, Name: "GPT-like", IsActive: true}).Error)

	t.Run("platforms put Other last", func(t *testing.T) {
		platforms, err := repo.ListPlatforms(ctx, true)
		require.NoError(t, err)
		names := make([]string, len(platforms))
		for i, p := range platforms {
			names[i] = p.Name
		}
		assert.Equal(t, []string{"Anthropic", "OpenAI", models.OtherName}, names)

		platforms, err = repo.ListPlatforms(ctx, false)
		require.NoError(t, err)
		assert.Len(t, platforms, 4)
	})

	t.Run("slugs are derived", func(t *testing.T) {
		p, err := repo.GetPlatform(ctx, f.otherPlatform.ID)
		require.NoError(t, err)
		assert.Equal(t, "other", p.Slug)

		m, err := repo.GetModel(ctx, f.gpt4o.ID)
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o", m.Slug)
		assert.Equal(t, "OpenAI", m.Platform.Name)
	})

	t.Run("models follow sort order with unordered last", func(t *testing.T) {
		list, err := repo.ListModels(ctx, f.openai.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"GPT-4o", "o1", models.OtherName}, modelNames(list))
	})

	t.Run("deleted and inactive models are hidden", func(t *testing.T) {
		require.NoError(t, db.Model(&f.o1).Update("is_active", false).Error)
		t.Cleanup(func() { db.Model(&f.o1).Update("is_active", true) })

		list, err := repo.ListModels(ctx, f.openai.ID)
		require.NoError(t, err)
		assert.NotContains(t, modelNames(list), "o1")
	})

	t.Run("search skips inactive platforms", func(t *testing.T) {
		list, err := repo.SearchModels(ctx, "gpt", 0)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"GPT-4o"}, modelNames(list))

		list, err = repo.SearchModels(ctx, "OPENAI", 0)
		require.NoError(t, err)
		assert.Len(t, list, 3, "platform name matches every model of the platform")
		assert.NotNil(t, list[0].Platform)

		list, err = repo.SearchModels(ctx, "claude", f.openai.ID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("categories and not found", func(t *testing.T) {
		categories, err := repo.ListCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.OtherName, categories[len(categories)-1].Name)

		_, err = repo.GetCategory(ctx, 9999)
		assert.True(t, IsNotFound(err))
	})
}
