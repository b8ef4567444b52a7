package service

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"prompthub/internal/cache"
	"prompthub/internal/models"
	"prompthub/internal/repository"
)

const (
	DefaultSuggestLimit = 10
	MaxSuggestLimit     = 50
)

// Suggest score weights. A prefix match also counts as a containment match.
const (
	scoreNamePrefix           = 3.0
	scoreSlugPrefix           = 2.5
	scorePlatformNamePrefix   = 2.0
	scorePlatformSlugPrefix   = 1.8
	scoreNameContains         = 1.0
	scoreSlugContains         = 0.8
	scorePlatformNameContains = 0.7
	scorePlatformSlugContains = 0.6
)

type CatalogService struct {
	catalog repository.CatalogRepository
	store   cache.Store
}

func NewCatalogService(catalog repository.CatalogRepository, store cache.Store) *CatalogService {
	return &CatalogService{catalog: catalog, store: store}
}

// PlatformRef is the short platform block nested in other payloads.
type PlatformRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// DefaultModelRef points at the first model of a platform.
type DefaultModelRef struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Platform     uint   `json:"platform"`
	PlatformName string `json:"platform_name"`
}

// ModelView is a model as listed to clients.
type ModelView struct {
	ID                     uint             `json:"id"`
	Name                   string           `json:"name"`
	Slug                   string           `json:"slug"`
	SortOrder              int              `json:"sort_order"`
	Platform               uint             `json:"platform"`
	PlatformName           string           `json:"platformName"`
	VariantFreeTextAllowed bool             `json:"variantFreeTextAllowed"`
	IsActive               bool             `json:"isActive"`
	IsDeprecated           bool             `json:"isDeprecated"`
	DefaultModel           *DefaultModelRef `json:"default_model"`
}

// FilterOptions backs the feed filter widgets.
type FilterOptions struct {
	Platforms        []models.Platform      `json:"platforms"`
	Categories       []models.Category      `json:"categories"`
	ModelsByPlatform map[string][]ModelView `json:"models_by_platform"`
	SortOptions      []repository.Option    `json:"sort_options"`
	SearchTypes      []repository.Option    `json:"search_types"`
}

// Suggestion is one ranked model match.
type Suggestion struct {
	ID       uint        `json:"id"`
	Name     string      `json:"name"`
	Slug     string      `json:"slug"`
	Platform PlatformRef `json:"platform"`

	score     float64
	sortOrder int
}

type SuggestResult struct {
	Query       string       `json:"query"`
	Suggestions []Suggestion `json:"suggestions"`
	TotalCount  int          `json:"total_count"`
}

// Platforms lists every platform, "Other" last.
func (s *CatalogService) Platforms(ctx context.Context) ([]models.Platform, error) {
	var platforms []models.Platform
	_, err := cache.Aside(ctx, s.store, cache.CatalogPlatformsKey, &platforms, cache.CatalogTTL, func() error {
		var err error
		platforms, err = s.catalog.ListPlatforms(ctx, false)
		return err
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return platforms, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	_, err := cache.Aside(ctx, s.store, cache.CatalogCategoryKey, &categories, cache.CatalogTTL, func() error {
		var err error
		categories, err = s.catalog.ListCategories(ctx)
		return err
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

// Models lists active models in display order. platformID 0 lists all.
func (s *CatalogService) Models(ctx context.Context, platformID uint) ([]ModelView, error) {
	var views []ModelView
	_, err := cache.Aside(ctx, s.store, cache.ModelListKey(platformID), &views, cache.CatalogTTL, func() error {
		list, err := s.catalog.ListModels(ctx, platformID)
		if err != nil {
			return err
		}
		views = modelViews(list)
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return views, nil
}

// ParsePlatformID parses an optional platform_id parameter. Blank means all.
func ParsePlatformID(raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewFieldError("platform_id", "platform_id must be a positive integer")
	}
	return uint(id), nil
}

// PlatformModels lists the models of one existing platform.
func (s *CatalogService) PlatformModels(ctx context.Context, platformID uint) ([]ModelView, error) {
	if _, err := s.catalog.GetPlatform(ctx, platformID); err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewFieldError("platform_id", "Platform does not exist")
		}
		return nil, models.NewInternalError(err)
	}
	return s.Models(ctx, platformID)
}

func (s *CatalogService) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	platforms, err := s.Platforms(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.Models(ctx, 0)
	if err != nil {
		return nil, err
	}

	platforms = append([]models.Platform(nil), platforms...)
	sort.Slice(platforms, func(i, j int) bool { return platforms[i].ID < platforms[j].ID })
	categories = append([]models.Category(nil), categories...)
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })

	byPlatform := make(map[string][]ModelView, len(platforms))
	for _, p := range platforms {
		byPlatform[strconv.FormatUint(uint64(p.ID), 10)] = []ModelView{}
	}
	for _, m := range all {
		key := strconv.FormatUint(uint64(m.Platform), 10)
		byPlatform[key] = append(byPlatform[key], m)
	}

	return &FilterOptions{
		Platforms:        platforms,
		Categories:       categories,
		ModelsByPlatform: byPlatform,
		SortOptions:      repository.SortOptions,
		SearchTypes:      repository.SearchTypeOptions,
	}, nil
}

// ParseSuggestLimit reads the limit parameter. Unparseable input falls back
// to the default; numbers are clamped to [1, MaxSuggestLimit].
func ParseSuggestLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultSuggestLimit
	}
	return max(1, min(n, MaxSuggestLimit))
}

// Suggest ranks active models of active platforms against query.
func (s *CatalogService) Suggest(ctx context.Context, query string, platformID uint, limit int) (*SuggestResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewFieldError("query", "query is required")
	}
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	candidates, err := s.catalog.SearchModels(ctx, query, platformID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	q := strings.ToLower(query)
	suggestions := make([]Suggestion, 0, len(candidates))
	for i := range candidates {
		m := &candidates[i]
		sg := Suggestion{ID: m.ID, Name: m.Name, Slug: m.Slug, sortOrder: m.SortOrder}
		if m.Platform != nil {
			sg.Platform = PlatformRef{ID: m.Platform.ID, Name: m.Platform.Name, Slug: m.Platform.Slug}
		}
		sg.score = suggestScore(q, m)
		suggestions = append(suggestions, sg)
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.sortOrder != b.sortOrder {
			return a.sortOrder < b.sortOrder
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	return &SuggestResult{Query: query, Suggestions: suggestions, TotalCount: len(suggestions)}, nil
}

func suggestScore(q string, m *models.AiModel) float64 {
	var platformName, platformSlug string
	if m.Platform != nil {
		platformName, platformSlug = m.Platform.Name, m.Platform.Slug
	}

	fields := []struct {
		value            string
		prefix, contains float64
	}{
		{m.Name, scoreNamePrefix, scoreNameContains},
		{m.Slug, scoreSlugPrefix, scoreSlugContains},
		{platformName, scorePlatformNamePrefix, scorePlatformNameContains},
		{platformSlug, scorePlatformSlugPrefix, scorePlatformSlugContains},
	}

	var score float64
	for _, f := range fields {
		v := strings.ToLower(f.value)
		if strings.HasPrefix(v, q) {
			score += f.prefix
		}
		if strings.Contains(v, q) {
			score += f.contains
		}
	}
	return score
}

func modelViews(list []models.AiModel) []ModelView {
	// The first model listed for a platform is its default.
	defaults := make(map[uint]*DefaultModelRef)
	for i := range list {
		m := &list[i]
		if _, ok := defaults[m.PlatformID]; ok {
			continue
		}
		ref := &DefaultModelRef{ID: m.ID, Name: m.Name, Platform: m.PlatformID}
		if m.Platform != nil {
			ref.PlatformName = m.Platform.Name
		}
		defaults[m.PlatformID] = ref
	}

	views := make([]ModelView, len(list))
	for i := range list {
		m := &list[i]
		views[i] = ModelView{
			ID:                     m.ID,
			Name:                   m.Name,
			Slug:                   m.Slug,
			SortOrder:              m.SortOrder,
			Platform:               m.PlatformID,
			VariantFreeTextAllowed: m.VariantFreeTextAllowed,
			IsActive:               m.IsActive,
			IsDeprecated:           m.IsDeprecated,
			DefaultModel:           defaults[m.PlatformID],
		}
		if m.Platform != nil {
			views[i].PlatformName = m.Platform.Name
		}
	}
	return views
}
