package repository

import (
	"context"

	"prompthub/internal/models"

	"gorm.io/gorm"
)

// TrendingRepository reads trending categories and rankings.
type TrendingRepository interface {
	ActiveCategories(ctx context.Context) ([]models.TrendingCategory, error)
	FindActiveRanking(ctx context.Context, name string) (*models.TrendingRanking, error)
}

type trendingRepository struct {
	db *gorm.DB
}

func NewTrendingRepository(db *gorm.DB) TrendingRepository {
	return &trendingRepository{db: db}
}

// ActiveCategories returns active categories by display order then name,
// each with its active rankings by rank.
func (r *trendingRepository) ActiveCategories(ctx context.Context) ([]models.TrendingCategory, error) {
	var categories []models.TrendingCategory
	err := readDB(r.db).WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order ASC").Order("name ASC").
		Preload("Rankings", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("rank ASC")
		}).
		Find(&categories).Error
	return categories, err
}

// FindActiveRanking returns the first active ranking named name, with its
// category and, when linked, its model and platform loaded.
func (r *trendingRepository) FindActiveRanking(ctx context.Context, name string) (*models.TrendingRanking, error) {
	var ranking models.TrendingRanking
	err := readDB(r.db).WithContext(ctx).
		Joins("JOIN trending_categories tc ON tc.id = trending_rankings.category_id").
		Where("trending_rankings.name = ?", name).
		Where("trending_rankings.is_active = ?", true).
		Order("tc.display_order ASC").Order("trending_rankings.rank ASC").Order("trending_rankings.id ASC").
		Preload("Category").
		Preload("RelatedModel.Platform").
		First(&ranking).Error
	if err != nil {
		return nil, err
	}
	return &ranking, nil
}
