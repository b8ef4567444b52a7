package service

import (
	"context"
	"math"
	"time"

	"prompthub/internal/cache"
	"prompthub/internal/models"
	"prompthub/internal/repository"
)

const (
	recentPostsLimit  = 5
	popularTagsLimit  = 10
	weeklyWindow      = 7 * 24 * time.Hour
	activeUsersWindow = 30 * 24 * time.Hour
)

type RecentPost struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Views     int       `json:"views"`
	Likes     int       `json:"likes"`
	Platform  string    `json:"platform"`
	Category  string    `json:"category"`
}

type PlatformCount struct {
	Platform string `json:"platform"`
	Count    int64  `json:"count"`
}

type DashboardStats struct {
	TotalPosts           int64                 `json:"total_posts"`
	TotalUsers           int64                 `json:"total_users"`
	TotalViews           int64                 `json:"total_views"`
	TotalLikes           int64                 `json:"total_likes"`
	TotalBookmarks       int64                 `json:"total_bookmarks"`
	AvgSatisfaction      float64               `json:"avg_satisfaction"`
	WeeklyAddedPosts     int64                 `json:"weekly_added_posts"`
	ActiveUsers          int64                 `json:"active_users"`
	RecentPosts          []RecentPost          `json:"recent_posts"`
	PopularTags          []repository.TagCount `json:"popular_tags"`
	PlatformDistribution []PlatformCount       `json:"platform_distribution"`
}

type RecentActivity struct {
	LastPostDate     *time.Time `json:"last_post_date"`
	LastLikeDate     *time.Time `json:"last_like_date"`
	LastBookmarkDate *time.Time `json:"last_bookmark_date"`
}

type UserStats struct {
	PostsCount       int64          `json:"posts_count"`
	TotalViews       int64          `json:"total_views"`
	TotalLikes       int64          `json:"total_likes"`
	TotalBookmarks   int64          `json:"total_bookmarks"`
	AvgSatisfaction  float64        `json:"avg_satisfaction"`
	MostUsedPlatform *string        `json:"most_used_platform"`
	MostUsedCategory *string        `json:"most_used_category"`
	RecentActivity   RecentActivity `json:"recent_activity"`
}

type StatsService struct {
	stats        repository.StatsRepository
	posts        repository.PostRepository
	interactions repository.InteractionRepository
	store        cache.Store
	now          func() time.Time
}

func NewStatsService(stats repository.StatsRepository, posts repository.PostRepository, interactions repository.InteractionRepository, store cache.Store) *StatsService {
	return &StatsService{stats: stats, posts: posts, interactions: interactions, store: store, now: time.Now}
}

// roundSatisfaction rounds to one decimal; no rated posts yields 0.
func roundSatisfaction(avg *float64) float64 {
	if avg == nil {
		return 0
	}
	return math.Round(*avg*10) / 10
}

// Dashboard returns site-wide totals, cached for five minutes.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var out DashboardStats
	_, err := cache.Aside(ctx, s.store, cache.DashboardStatsKey, &out, cache.DashboardStatsTTL, func() error {
		stats, err := s.computeDashboard(ctx)
		if err != nil {
			return err
		}
		out = *stats
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &out, nil
}

func (s *StatsService) computeDashboard(ctx context.Context) (*DashboardStats, error) {
	now := s.now()

	totals, err := s.stats.Totals(ctx, 0)
	if err != nil {
		return nil, err
	}
	users, err := s.stats.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	weekly, err := s.stats.CountPostsSince(ctx, now.Add(-weeklyWindow))
	if err != nil {
		return nil, err
	}
	active, err := s.stats.CountActiveAuthors(ctx, now.Add(-activeUsersWindow))
	if err != nil {
		return nil, err
	}
	recent, err := s.stats.RecentPosts(ctx, recentPostsLimit)
	if err != nil {
		return nil, err
	}
	tags, err := s.posts.TagCounts(ctx, popularTagsLimit)
	if err != nil {
		return nil, err
	}
	dist, err := s.stats.PlatformDistribution(ctx, 0)
	if err != nil {
		return nil, err
	}

	out := &DashboardStats{
		TotalPosts:           totals.Posts,
		TotalUsers:           users,
		TotalViews:           totals.Views,
		TotalLikes:           totals.Likes,
		TotalBookmarks:       totals.Bookmarks,
		AvgSatisfaction:      roundSatisfaction(totals.AvgSatisfaction),
		WeeklyAddedPosts:     weekly,
		ActiveUsers:          active,
		RecentPosts:          make([]RecentPost, 0, len(recent)),
		PopularTags:          tags,
		PlatformDistribution: make([]PlatformCount, 0, len(dist)),
	}
	if out.PopularTags == nil {
		out.PopularTags = []repository.TagCount{}
	}
	for _, p := range recent {
		out.RecentPosts = append(out.RecentPosts, RecentPost{
			ID:        p.ID,
			Title:     p.Title,
			Author:    p.Author.Username,
			CreatedAt: p.CreatedAt,
			Views:     p.ViewCount,
			Likes:     p.LikeCount,
			Platform:  p.Platform.Name,
			Category:  p.CategoryDisplayName(),
		})
	}
	for _, d := range dist {
		out.PlatformDistribution = append(out.PlatformDistribution, PlatformCount{Platform: d.Name, Count: d.Count})
	}
	return out, nil
}

// UserStats summarises one author's posts and recent activity.
func (s *StatsService) UserStats(ctx context.Context, userID uint) (*UserStats, error) {
	totals, err := s.stats.Totals(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	out := &UserStats{
		PostsCount:      totals.Posts,
		TotalViews:      totals.Views,
		TotalLikes:      totals.Likes,
		TotalBookmarks:  totals.Bookmarks,
		AvgSatisfaction: roundSatisfaction(totals.AvgSatisfaction),
	}

	if totals.Posts > 0 {
		platforms, err := s.stats.PlatformDistribution(ctx, userID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if len(platforms) > 0 {
			out.MostUsedPlatform = &platforms[0].Name
		}
		categories, err := s.stats.CategoryDistribution(ctx, userID)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		if len(categories) > 0 {
			out.MostUsedCategory = &categories[0].Name
		}
		if out.RecentActivity.LastPostDate, err = s.stats.LastPostAt(ctx, userID); err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	last, err := s.interactions.LastInteraction(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	out.RecentActivity.LastLikeDate = last.LastLike
	out.RecentActivity.LastBookmarkDate = last.LastBookmark
	return out, nil
}
