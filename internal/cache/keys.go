package cache

import (
	"fmt"
	"time"
)

// Cache keys and their lifetimes.
const (
	TrendingRankingsKey = "trending_category_rankings"
	DashboardStatsKey   = "stats:dashboard"
	PopularTagsKey      = "posts:tags"
	CatalogPlatformsKey = "catalog:platforms"
	CatalogCategoryKey  = "catalog:categories"

	DefaultTrendingTTL = time.Hour
	DashboardStatsTTL  = 5 * time.Minute
	PopularTagsTTL     = 10 * time.Minute
	CatalogTTL         = 10 * time.Minute
)

// TokenBlacklistKey marks a revoked JWT id.
func TokenBlacklistKey(jti string) string {
	return fmt.Sprintf("blacklist:%s", jti)
}

// ModelListKey caches the active models of one platform; 0 means all platforms.
func ModelListKey(platformID uint) string {
	return fmt.Sprintf("catalog:models:%d", platformID)
}
