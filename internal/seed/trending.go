package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"prompthub/internal/cache"
	"prompthub/internal/middleware"
	"prompthub/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed fixtures/trending.yml
var defaultTrendingFixture []byte

// TrendingFixture is the YAML document loaded by LoadTrending and LinkTrending.
type TrendingFixture struct {
	Categories []TrendingCategoryFixture `yaml:"categories"`
	Links      []TrendingLink            `yaml:"links"`
}

type TrendingCategoryFixture struct {
	Name     string                   `yaml:"name"`
	Title    string                   `yaml:"title"`
	Subtitle string                   `yaml:"subtitle"`
	Icon     string                   `yaml:"icon"`
	Order    int                      `yaml:"order"`
	Rankings []TrendingRankingFixture `yaml:"rankings"`
}

type TrendingRankingFixture struct {
	Rank     int    `yaml:"rank"`
	Name     string `yaml:"name"`
	Score    string `yaml:"score"`
	Provider string `yaml:"provider"`
}

// TrendingLink maps a trending ranking name onto a catalog model.
type TrendingLink struct {
	Trending       string `yaml:"trending"`
	Platform       string `yaml:"platform"`
	Model          string `yaml:"model"`
	EtcContains    string `yaml:"etc_contains"`
	DetailContains string `yaml:"detail_contains"`
}

// ExactMatching reports whether the link narrows posts by keyword.
func (l TrendingLink) ExactMatching() bool {
	return strings.TrimSpace(l.EtcContains) != "" || strings.TrimSpace(l.DetailContains) != ""
}

// DefaultTrendingFixture returns the fixture bundled with the binary.
func DefaultTrendingFixture() (*TrendingFixture, error) {
	return ParseTrendingFixture(defaultTrendingFixture)
}

// ReadTrendingFixture parses the fixture at path, or the bundled one when path
// is empty.
func ReadTrendingFixture(path string) (*TrendingFixture, error) {
	if path == "" {
		return DefaultTrendingFixture()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trending fixture: %w", err)
	}
	return ParseTrendingFixture(raw)
}

// ParseTrendingFixture decodes and validates a fixture document.
func ParseTrendingFixture(raw []byte) (*TrendingFixture, error) {
	var f TrendingFixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode trending fixture: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks names are present and unique and ranks are positive and
// unique within each category.
func (f *TrendingFixture) Validate() error {
	seen := make(map[string]bool, len(f.Categories))
	for i, c := range f.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("category #%d: name is required", i+1)
		}
		if seen[name] {
			return fmt.Errorf("category %q: duplicate name", name)
		}
		seen[name] = true
		if strings.TrimSpace(c.Title) == "" {
			return fmt.Errorf("category %q: title is required", name)
		}
		ranks := make(map[int]bool, len(c.Rankings))
		for _, r := range c.Rankings {
			if r.Rank < 1 {
				return fmt.Errorf("category %q: rank must be positive, got %d", name, r.Rank)
			}
			if ranks[r.Rank] {
				return fmt.Errorf("category %q: duplicate rank %d", name, r.Rank)
			}
			ranks[r.Rank] = true
			if strings.TrimSpace(r.Name) == "" {
				return fmt.Errorf("category %q: rank %d has no name", name, r.Rank)
			}
		}
	}
	for i, l := range f.Links {
		if strings.TrimSpace(l.Trending) == "" || strings.TrimSpace(l.Platform) == "" || strings.TrimSpace(l.Model) == "" {
			return fmt.Errorf("link #%d: trending, platform and model are required", i+1)
		}
	}
	return nil
}

// LoadResult summarises a fixture load.
type LoadResult struct {
	Categories int
	Rankings   int
}

// LoadTrending replaces every trending category and ranking with the
// fixture's contents in one transaction, then drops the cached rankings.
// Categories without an explicit order take their position in the file.
func LoadTrending(ctx context.Context, db *gorm.DB, store cache.Store, f *TrendingFixture) (LoadResult, error) {
	var res LoadResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.TrendingRanking{}).Error; err != nil {
			return fmt.Errorf("clear rankings: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&models.TrendingCategory{}).Error; err != nil {
			return fmt.Errorf("clear categories: %w", err)
		}

		for i, c := range f.Categories {
			order := c.Order
			if order == 0 {
				order = i + 1
			}
			category := models.TrendingCategory{
				Name:     strings.TrimSpace(c.Name),
				Title:    c.Title,
				Subtitle: c.Subtitle,
				IconName: c.Icon,
				Order:    order,
				IsActive: true,
			}
			if err := tx.Create(&category).Error; err != nil {
				return fmt.Errorf("create category %s: %w", category.Name, err)
			}
			for _, r := range c.Rankings {
				ranking := models.TrendingRanking{
					CategoryID: category.ID,
					Rank:       r.Rank,
					Name:       strings.TrimSpace(r.Name),
					Score:      r.Score,
					Provider:   r.Provider,
					IsActive:   true,
				}
				if err := tx.Create(&ranking).Error; err != nil {
					return fmt.Errorf("create ranking %s/%d: %w", category.Name, r.Rank, err)
				}
				res.Rankings++
			}
			res.Categories++
		}
		return nil
	})
	if err != nil {
		return LoadResult{}, err
	}

	if store != nil {
		cache.Invalidate(ctx, store, cache.TrendingRankingsKey)
	}
	middleware.Logger.InfoContext(ctx, "trending fixture loaded",
		slog.Int("categories", res.Categories),
		slog.Int("rankings", res.Rankings),
	)
	return res, nil
}

// LinkOutcome reports what happened to one trending ranking.
type LinkOutcome struct {
	Ranking  string
	Platform string
	Model    string
	Reason   string
}

// LinkReport lists linked and skipped rankings.
type LinkReport struct {
	DryRun  bool
	Linked  []LinkOutcome
	Skipped []LinkOutcome
}

var errDryRun = errors.New("dry run")

// LinkTrending points every active ranking named in links at its catalog
// model and resets or sets its exact-matching keywords. Rankings without a
// link, or whose platform or model is missing, are skipped. With dryRun the
// transaction is rolled back and the report describes what would change.
func LinkTrending(ctx context.Context, db *gorm.DB, store cache.Store, links []TrendingLink, dryRun bool) (LinkReport, error) {
	byName := make(map[string]TrendingLink, len(links))
	for _, l := range links {
		byName[strings.TrimSpace(l.Trending)] = l
	}

	report := LinkReport{DryRun: dryRun}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rankings []models.TrendingRanking
		if err := tx.Where("is_active = ?", true).Order("id ASC").Find(&rankings).Error; err != nil {
			return fmt.Errorf("list rankings: %w", err)
		}

		for _, ranking := range rankings {
			link, ok := byName[ranking.Name]
			if !ok {
				report.Skipped = append(report.Skipped, LinkOutcome{Ranking: ranking.Name, Reason: "no mapping"})
				continue
			}
			outcome := LinkOutcome{Ranking: ranking.Name, Platform: link.Platform, Model: link.Model}

			var model models.AiModel
			err := tx.Joins("JOIN platforms ON platforms.id = ai_models.platform_id").
				Where("platforms.name = ? AND ai_models.name = ?", link.Platform, link.Model).
				First(&model).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				outcome.Reason = "model not found"
				report.Skipped = append(report.Skipped, outcome)
				continue
			}
			if err != nil {
				return fmt.Errorf("find model %s/%s: %w", link.Platform, link.Model, err)
			}

			if err := tx.Model(&models.TrendingRanking{}).Where("id = ?", ranking.ID).Updates(map[string]any{
				"related_model_id":      model.ID,
				"use_exact_matching":    link.ExactMatching(),
				"model_etc_contains":    strings.TrimSpace(link.EtcContains),
				"model_detail_contains": strings.TrimSpace(link.DetailContains),
			}).Error; err != nil {
				return fmt.Errorf("link ranking %d: %w", ranking.ID, err)
			}
			report.Linked = append(report.Linked, outcome)
		}

		if dryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return LinkReport{}, err
	}

	if !dryRun && store != nil {
		cache.Invalidate(ctx, store, cache.TrendingRankingsKey)
	}
	middleware.Logger.InfoContext(ctx, "trending rankings linked",
		slog.Bool("dry_run", dryRun),
		slog.Int("linked", len(report.Linked)),
		slog.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}
