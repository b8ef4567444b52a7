package repository

import (
	"context"
	"errors"
	"strings"

	"prompthub/internal/models"

	"gorm.io/gorm"
)

// CatalogRepository reads platforms, models and categories.
type CatalogRepository interface {
	ListPlatforms(ctx context.Context, activeOnly bool) ([]models.Platform, error)
	GetPlatform(ctx context.Context, id uint) (*models.Platform, error)
	ListModels(ctx context.Context, platformID uint) ([]models.AiModel, error)
	GetModel(ctx context.Context, id uint) (*models.AiModel, error)
	SearchModels(ctx context.Context, query string, platformID uint) ([]models.AiModel, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// modelOrder puts explicitly ordered models first, then sorts by name.
func modelOrder(db *gorm.DB) *gorm.DB {
	return db.Order("CASE WHEN ai_models.sort_order = 0 THEN 1 ELSE 0 END").
		Order("ai_models.sort_order ASC").
		Order("LOWER(ai_models.name) ASC")
}

// otherLast orders the "Other" sentinel row after every named row.
func otherLast(column string) string {
	return "CASE WHEN " + column + " = '" + models.OtherName + "' THEN 1 ELSE 0 END"
}

func activeModels(db *gorm.DB) *gorm.DB {
	return db.Where("ai_models.is_active = ? AND ai_models.deleted_at IS NULL", true)
}

func (r *catalogRepository) ListPlatforms(ctx context.Context, activeOnly bool) ([]models.Platform, error) {
	var platforms []models.Platform
	q := readDB(r.db).WithContext(ctx).Order(otherLast("name")).Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&platforms).Error
	return platforms, err
}

func (r *catalogRepository) GetPlatform(ctx context.Context, id uint) (*models.Platform, error) {
	var platform models.Platform
	if err := r.db.WithContext(ctx).First(&platform, id).Error; err != nil {
		return nil, err
	}
	return &platform, nil
}

// ListModels returns active models, optionally limited to one platform.
// platformID 0 means every platform.
func (r *catalogRepository) ListModels(ctx context.Context, platformID uint) ([]models.AiModel, error) {
	var list []models.AiModel
	q := readDB(r.db).WithContext(ctx).Preload("Platform").Scopes(activeModels, modelOrder)
	if platformID != 0 {
		q = q.Where("ai_models.platform_id = ?", platformID)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *catalogRepository) GetModel(ctx context.Context, id uint) (*models.AiModel, error) {
	var model models.AiModel
	if err := r.db.WithContext(ctx).Preload("Platform").First(&model, id).Error; err != nil {
		return nil, err
	}
	return &model, nil
}

// SearchModels returns active models of active platforms whose name or slug,
// or whose platform's name or slug, contains query (case-insensitive).
func (r *catalogRepository) SearchModels(ctx context.Context, query string, platformID uint) ([]models.AiModel, error) {
	pattern := containsPattern(strings.TrimSpace(query))
	q := readDB(r.db).WithContext(ctx).
		Joins("Platform").
		Scopes(activeModels).
		Where(`"Platform".is_active = ?`, true).
		Where(
			`LOWER(ai_models.name) LIKE ? ESCAPE '\' OR LOWER(ai_models.slug) LIKE ? ESCAPE '\' OR LOWER("Platform".name) LIKE ? ESCAPE '\' OR LOWER("Platform".slug) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern, pattern,
		)
	if platformID != 0 {
		q = q.Where("ai_models.platform_id = ?", platformID)
	}

	var list []models.AiModel
	err := q.Find(&list).Error
	return list, err
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := readDB(r.db).WithContext(ctx).
		Order(otherLast("name")).
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *catalogRepository) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
