package repository

import (
	"context"
	"sort"

	"prompthub/internal/matching"
	"prompthub/internal/models"
	"prompthub/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagCount is a tag with the number of posts carrying it.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	IncrementViews(ctx context.Context, id uint) error
	List(ctx context.Context, q PostQuery, page PageRequest) ([]models.Post, PageMeta, error)
	ListInteracted(ctx context.Context, userID uint, kind models.InteractionKind, q PostQuery, page PageRequest) ([]models.Post, PageMeta, error)
	ListMatching(ctx context.Context, rule matching.KeywordRule, q PostQuery, page PageRequest) ([]models.Post, PageMeta, error)
	CountMatching(ctx context.Context, rule matching.KeywordRule) (int64, error)
	TagCounts(ctx context.Context, limit int) ([]TagCount, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, metrics: observability.NewDatabaseMetrics("posts")}
}

func withPostRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Platform").Preload("Model").Preload("Category")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackQuery("create")()
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackQuery("update")()
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error
}

// Delete removes the post and its interactions in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer r.metrics.TrackQuery("delete")()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostInteraction{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer r.metrics.TrackQuery("get")()
	var post models.Post
	if err := withPostRelations(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// IncrementViews bumps view_count in SQL without touching updated_at.
func (r *postRepository) IncrementViews(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postRepository) list(ctx context.Context, base *gorm.DB, q PostQuery, page PageRequest, order func(*gorm.DB) *gorm.DB) ([]models.Post, PageMeta, error) {
	db := readDB(r.db)
	filtered, err := applyFilters(ctx, db, base, q)
	if err != nil {
		return nil, PageMeta{}, err
	}
	filtered = filtered.Scopes(SearchScope(q.Search, q.SearchType))

	var posts []models.Post
	meta, err := Paginate(filtered, page, func(tx *gorm.DB) *gorm.DB {
		return withPostRelations(order(tx))
	}, &posts)
	if err != nil {
		return nil, PageMeta{}, err
	}
	return posts, meta, nil
}

// List runs the feed pipeline: filter, search, sort, paginate.
func (r *postRepository) List(ctx context.Context, q PostQuery, page PageRequest) ([]models.Post, PageMeta, error) {
	defer r.metrics.TrackQuery("list")()
	base := readDB(r.db).WithContext(ctx).Model(&models.Post{})
	return r.list(ctx, base, q, page, SortScope(q.Sort))
}

// ListInteracted lists posts the user liked or bookmarked, most recently
// interacted first unless q.Sort is set.
func (r *postRepository) ListInteracted(ctx context.Context, userID uint, kind models.InteractionKind, q PostQuery, page PageRequest) ([]models.Post, PageMeta, error) {
	defer r.metrics.TrackQuery("list_" + string(kind))()
	base := readDB(r.db).WithContext(ctx).Model(&models.Post{}).
		Joins("JOIN post_interactions pi ON pi.post_id = posts.id").
		Where("pi.user_id = ?", userID).
		Where("pi."+kind.Column()+" = ?", true)

	// The joined table shares column names with posts, so rows are read as
	// posts.* once counting is done.
	order := func(tx *gorm.DB) *gorm.DB {
		tx = tx.Select("posts.*")
		if q.Sort != "" {
			return SortScope(q.Sort)(tx)
		}
		return tx.Order("pi.updated_at DESC").Order("posts.id DESC")
	}
	return r.list(ctx, base, q, page, order)
}

// ListMatching lists the posts a trending rule selects.
func (r *postRepository) ListMatching(ctx context.Context, rule matching.KeywordRule, q PostQuery, page PageRequest) ([]models.Post, PageMeta, error) {
	defer r.metrics.TrackQuery("list_matching")()
	base := readDB(r.db).WithContext(ctx).Model(&models.Post{}).Scopes(MatchingRanking(rule))
	return r.list(ctx, base, q, page, SortScope(q.Sort))
}

func (r *postRepository) CountMatching(ctx context.Context, rule matching.KeywordRule) (int64, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Post{}).Scopes(MatchingRanking(rule)).Count(&count).Error
	return count, err
}

// TagCounts returns the most used tags, most frequent first, ties by name.
// limit <= 0 returns every tag.
func (r *postRepository) TagCounts(ctx context.Context, limit int) ([]TagCount, error) {
	defer r.metrics.TrackQuery("tag_counts")()
	var raw []string
	if err := readDB(r.db).WithContext(ctx).Model(&models.Post{}).
		Where("tags <> ''").Pluck("tags", &raw).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, tags := range raw {
		for _, tag := range models.SplitTags(tags) {
			counts[tag]++
		}
	}

	result := make([]TagCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, TagCount{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Name < result[j].Name
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
