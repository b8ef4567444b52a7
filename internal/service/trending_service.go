package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"prompthub/internal/cache"
	"prompthub/internal/matching"
	"prompthub/internal/middleware"
	"prompthub/internal/models"
	"prompthub/internal/repository"
)

// RankingEntry is one ranked row of a trending category.
type RankingEntry struct {
	Rank     int    `json:"rank"`
	Name     string `json:"name"`
	Score    string `json:"score"`
	Provider string `json:"provider"`
}

// TrendingCategoryData is one category block of the trending page.
type TrendingCategoryData struct {
	Name     string         `json:"-"`
	Title    string         `json:"title"`
	Subtitle string         `json:"subtitle"`
	Icon     string         `json:"icon"`
	Data     []RankingEntry `json:"data"`
}

// TrendingSnapshot is the ordered list of active categories. It encodes as a
// JSON object keyed by category name, in list order.
type TrendingSnapshot []TrendingCategoryData

func (s TrendingSnapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return nil, err
		}
		if c.Data == nil {
			c.Data = []RankingEntry{}
		}
		val, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *TrendingSnapshot) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("trending snapshot: expected object, got %v", tok)
	}

	out := TrendingSnapshot{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("trending snapshot: expected key, got %v", tok)
		}
		var c TrendingCategoryData
		if err := dec.Decode(&c); err != nil {
			return fmt.Errorf("trending snapshot %q: %w", name, err)
		}
		c.Name = name
		out = append(out, c)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

// Category returns the named category block.
func (s TrendingSnapshot) Category(name string) (TrendingCategoryData, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return TrendingCategoryData{}, false
}

// NewTrendingSnapshot converts loaded categories with their rankings.
func NewTrendingSnapshot(categories []models.TrendingCategory) TrendingSnapshot {
	snap := make(TrendingSnapshot, 0, len(categories))
	for _, c := range categories {
		data := make([]RankingEntry, 0, len(c.Rankings))
		for _, r := range c.Rankings {
			data = append(data, RankingEntry{Rank: r.Rank, Name: r.Name, Score: r.Score, Provider: r.Provider})
		}
		snap = append(snap, TrendingCategoryData{
			Name:     c.Name,
			Title:    c.Title,
			Subtitle: c.Subtitle,
			Icon:     c.IconName,
			Data:     data,
		})
	}
	return snap
}

type TrendingService struct {
	trending repository.TrendingRepository
	posts    *PostService
	counter  repository.PostRepository
	store    cache.Store
	ttl      time.Duration
}

func NewTrendingService(trending repository.TrendingRepository, posts *PostService, counter repository.PostRepository, store cache.Store, ttl time.Duration) *TrendingService {
	if ttl <= 0 {
		ttl = cache.DefaultTrendingTTL
	}
	return &TrendingService{trending: trending, posts: posts, counter: counter, store: store, ttl: ttl}
}

// CategoryRankings returns the snapshot and whether it was served from cache.
func (s *TrendingService) CategoryRankings(ctx context.Context) (TrendingSnapshot, bool, error) {
	var snap TrendingSnapshot
	fromCache, err := cache.Aside(ctx, s.store, cache.TrendingRankingsKey, &snap, s.ttl, func() error {
		categories, err := s.trending.ActiveCategories(ctx)
		if err != nil {
			return err
		}
		snap = NewTrendingSnapshot(categories)
		return nil
	})
	if err != nil {
		return nil, false, models.NewInternalError(err)
	}
	return snap, fromCache, nil
}

// CategoryByName returns one category block of the current snapshot.
func (s *TrendingService) CategoryByName(ctx context.Context, name string) (*TrendingCategoryData, error) {
	snap, _, err := s.CategoryRankings(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := snap.Category(name)
	if !ok {
		return nil, models.NewAppError(models.ErrCodeNotFound, fmt.Sprintf("Trending category '%s' not found", name), nil)
	}
	return &c, nil
}

// Refresh drops the cached snapshot so the next read recomputes it.
func (s *TrendingService) Refresh(ctx context.Context) error {
	if err := s.store.Delete(ctx, cache.TrendingRankingsKey); err != nil {
		middleware.Logger.ErrorContext(ctx, "trending cache refresh failed",
			slog.String("store", s.store.Name()),
			slog.String("error", err.Error()),
		)
		return models.NewInternalError(err)
	}
	middleware.Logger.InfoContext(ctx, "trending cache cleared")
	return nil
}

// TrendingCategoryRef names the category a ranking belongs to.
type TrendingCategoryRef struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// RelatedModelInfo describes the model a ranking is linked to and its
// keyword narrowing.
type RelatedModelInfo struct {
	ID                uint   `json:"id"`
	Name              string `json:"name"`
	Platform          string `json:"platform"`
	ExactMatching     bool   `json:"exact_matching"`
	ModelDetailFilter string `json:"model_detail_filter"`
	ModelEtcFilter    string `json:"model_etc_filter"`
}

type TrendingModelInfo struct {
	TrendingName      string              `json:"trending_name"`
	Provider          string              `json:"provider"`
	Score             string              `json:"score"`
	Rank              int                 `json:"rank"`
	Category          TrendingCategoryRef `json:"category"`
	RelatedModel      *RelatedModelInfo   `json:"related_model"`
	RelatedPostsCount int64               `json:"related_posts_count"`
}

// TrendingPosts is a page of posts matched to a trending entry.
type TrendingPosts struct {
	repository.Page[PostCard]
	TrendingModel TrendingModelInfo `json:"trending_model"`
}

func rankingRule(r *models.TrendingRanking) matching.KeywordRule {
	return matching.KeywordRule{
		RelatedModelID:   r.RelatedModelID,
		UseExactMatching: r.UseExactMatching,
		DetailContains:   r.ModelDetailContains,
		EtcContains:      r.ModelEtcContains,
	}
}

func (s *TrendingService) ranking(ctx context.Context, name string) (*models.TrendingRanking, error) {
	r, err := s.trending.FindActiveRanking(ctx, name)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewAppError(models.ErrCodeNotFound, fmt.Sprintf("Trending model '%s' not found", name), nil)
		}
		return nil, models.NewInternalError(err)
	}
	return r, nil
}

// info describes r. An unlinked ranking has no related model and no posts.
func (s *TrendingService) info(ctx context.Context, r *models.TrendingRanking) (TrendingModelInfo, error) {
	info := TrendingModelInfo{
		TrendingName: r.Name,
		Provider:     r.Provider,
		Score:        r.Score,
		Rank:         r.Rank,
	}
	if r.Category != nil {
		info.Category = TrendingCategoryRef{Name: r.Category.Name, Title: r.Category.Title}
	}
	if r.RelatedModelID == nil {
		return info, nil
	}

	count, err := s.counter.CountMatching(ctx, rankingRule(r))
	if err != nil {
		return TrendingModelInfo{}, models.NewInternalError(err)
	}
	info.RelatedPostsCount = count
	info.RelatedModel = &RelatedModelInfo{
		ID:                *r.RelatedModelID,
		ExactMatching:     r.UseExactMatching,
		ModelDetailFilter: r.ModelDetailContains,
		ModelEtcFilter:    r.ModelEtcContains,
	}
	if m := r.RelatedModel; m != nil {
		info.RelatedModel.Name = m.Name
		if m.Platform != nil {
			info.RelatedModel.Platform = m.Platform.Name
		}
	}
	return info, nil
}

// ModelInfo describes the trending entry called name.
func (s *TrendingService) ModelInfo(ctx context.Context, name string) (*TrendingModelInfo, error) {
	r, err := s.ranking(ctx, name)
	if err != nil {
		return nil, err
	}
	info, err := s.info(ctx, r)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// RelatedPosts lists the posts matched to the trending entry called name.
func (s *TrendingService) RelatedPosts(ctx context.Context, name string, q repository.PostQuery, page repository.PageRequest, viewerID uint) (*TrendingPosts, error) {
	r, err := s.ranking(ctx, name)
	if err != nil {
		return nil, err
	}
	info, err := s.info(ctx, r)
	if err != nil {
		return nil, err
	}
	result, err := s.posts.ListMatching(ctx, rankingRule(r), q, page, viewerID)
	if err != nil {
		return nil, err
	}
	return &TrendingPosts{Page: result, TrendingModel: info}, nil
}
