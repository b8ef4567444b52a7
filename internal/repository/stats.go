package repository

import (
	"context"
	"time"

	"prompthub/internal/models"
	"prompthub/internal/observability"

	"gorm.io/gorm"
)

// PostTotals aggregates counters over a set of posts.
type PostTotals struct {
	Posts           int64    `json:"posts"`
	Views           int64    `json:"views"`
	Likes           int64    `json:"likes"`
	Bookmarks       int64    `json:"bookmarks"`
	AvgSatisfaction *float64 `json:"avg_satisfaction"`
}

// NameCount is a catalog entry name with a post count.
type NameCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// StatsRepository computes dashboard and per-user aggregates.
type StatsRepository interface {
	Totals(ctx context.Context, authorID uint) (PostTotals, error)
	CountUsers(ctx context.Context) (int64, error)
	CountPostsSince(ctx context.Context, since time.Time) (int64, error)
	CountActiveAuthors(ctx context.Context, since time.Time) (int64, error)
	RecentPosts(ctx context.Context, limit int) ([]models.Post, error)
	PlatformDistribution(ctx context.Context, authorID uint) ([]NameCount, error)
	CategoryDistribution(ctx context.Context, authorID uint) ([]NameCount, error)
	LastPostAt(ctx context.Context, authorID uint) (*time.Time, error)
}

type statsRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db, metrics: observability.NewDatabaseMetrics("stats")}
}

func (r *statsRepository) posts(ctx context.Context, authorID uint) *gorm.DB {
	q := readDB(r.db).WithContext(ctx).Model(&models.Post{})
	if authorID != 0 {
		q = q.Where("posts.author_id = ?", authorID)
	}
	return q
}

// Totals sums post counters. authorID 0 covers every post.
func (r *statsRepository) Totals(ctx context.Context, authorID uint) (PostTotals, error) {
	defer r.metrics.TrackQuery("totals")()
	var row struct {
		Posts           int64
		Views           int64
		Likes           int64
		Bookmarks       int64
		AvgSatisfaction *float64
	}
	err := r.posts(ctx, authorID).Select(
		"COUNT(*) AS posts, " +
			"COALESCE(SUM(view_count), 0) AS views, " +
			"COALESCE(SUM(like_count), 0) AS likes, " +
			"COALESCE(SUM(bookmark_count), 0) AS bookmarks, " +
			"AVG(satisfaction) AS avg_satisfaction",
	).Scan(&row).Error
	return PostTotals(row), err
}

func (r *statsRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *statsRepository) CountPostsSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.posts(ctx, 0).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}

// CountActiveAuthors counts distinct authors with a post created since.
func (r *statsRepository) CountActiveAuthors(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.posts(ctx, 0).Where("created_at >= ?", since).Distinct("author_id").Count(&count).Error
	return count, err
}

func (r *statsRepository) RecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := withPostRelations(r.posts(ctx, 0)).
		Order("posts.created_at DESC").Order("posts.id DESC").
		Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *statsRepository) distribution(ctx context.Context, authorID uint, table, fk string) ([]NameCount, error) {
	var rows []NameCount
	err := r.posts(ctx, authorID).
		Select(table+".name AS name, COUNT(posts.id) AS count").
		Joins("JOIN " + table + " ON " + table + ".id = posts." + fk).
		Group(table + ".id, " + table + ".name").
		Order("count DESC").Order(table + ".name ASC").
		Scan(&rows).Error
	return rows, err
}

// PlatformDistribution counts posts per platform, most used first.
func (r *statsRepository) PlatformDistribution(ctx context.Context, authorID uint) ([]NameCount, error) {
	defer r.metrics.TrackQuery("platform_distribution")()
	return r.distribution(ctx, authorID, "platforms", "platform_id")
}

// CategoryDistribution counts posts per category, most used first.
func (r *statsRepository) CategoryDistribution(ctx context.Context, authorID uint) ([]NameCount, error) {
	defer r.metrics.TrackQuery("category_distribution")()
	return r.distribution(ctx, authorID, "categories", "category_id")
}

func (r *statsRepository) LastPostAt(ctx context.Context, authorID uint) (*time.Time, error) {
	var post models.Post
	err := r.posts(ctx, authorID).Select("created_at").
		Order("created_at DESC").Limit(1).Find(&post).Error
	if err != nil || post.CreatedAt.IsZero() {
		return nil, err
	}
	return &post.CreatedAt, nil
}
