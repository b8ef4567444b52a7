package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"prompthub/internal/matching"
	"prompthub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sort keys accepted by the feed.
const (
	SortLatest       = "latest"
	SortOldest       = "oldest"
	SortPopular      = "popular"
	SortSatisfaction = "satisfaction"
	SortViews        = "views"
)

// Search types accepted by the feed.
const (
	SearchTitle        = "title"
	SearchContent      = "content"
	SearchTitleContent = "title_content"
	SearchAll          = "all"
)

// Option is a value/label pair offered to clients.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SortOptions lists the feed orderings in display order.
var SortOptions = []Option{
	{Value: SortLatest, Label: "최신순"},
	{Value: SortOldest, Label: "오래된순"},
	{Value: SortPopular, Label: "인기순"},
	{Value: SortSatisfaction, Label: "만족도순"},
	{Value: SortViews, Label: "조회순"},
}

// SearchTypeOptions lists the search scopes in display order.
var SearchTypeOptions = []Option{
	{Value: SearchAll, Label: "전체"},
	{Value: SearchTitle, Label: "제목"},
	{Value: SearchContent, Label: "내용"},
	{Value: SearchTitleContent, Label: "제목+내용"},
}

// PostQuery carries the filter, search and sort parameters of a post list.
// ID lists are raw comma-separated strings as received.
type PostQuery struct {
	Categories     string
	Platforms      string
	Models         string
	Search         string
	SearchType     string
	Sort           string
	ExcludeID      uint
	AuthorID       uint
	AuthorUsername string
}

// ParseIDList parses "1, 2,x,3" into [1 2 3], skipping anything that is not
// a positive integer.
func ParseIDList(raw string) []uint {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil || n == 0 {
			continue
		}
		ids = append(ids, uint(n))
	}
	return ids
}

// NormalizeSort maps unknown or empty sort keys to latest.
func NormalizeSort(sort string) string {
	switch s := strings.ToLower(strings.TrimSpace(sort)); s {
	case SortLatest, SortOldest, SortPopular, SortSatisfaction, SortViews:
		return s
	default:
		return SortLatest
	}
}

// NormalizeSearchType maps empty input to all; unknown types search everything.
func NormalizeSearchType(searchType string) string {
	switch s := strings.ToLower(strings.TrimSpace(searchType)); s {
	case SearchTitle, SearchContent, SearchTitleContent:
		return s
	default:
		return SearchAll
	}
}

type catalogRow struct {
	ID   uint
	Name string
}

// otherAwareCondition builds the OR of "<column> = id" for every known id,
// requiring a non-empty free-text column for the "Other" entries.
func otherAwareCondition(ctx context.Context, db *gorm.DB, table, column, etcColumn string, ids []uint) (clause.Expression, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []catalogRow
	if err := db.WithContext(ctx).Table(table).Select("id", "name").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("resolve %s filter: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	exprs := make([]clause.Expression, 0, len(rows))
	for _, row := range rows {
		if etcColumn != "" && models.IsOtherName(row.Name) {
			exprs = append(exprs, clause.Expr{
				SQL:  fmt.Sprintf("(%s = ? AND %s <> '')", column, etcColumn),
				Vars: []interface{}{row.ID},
			})
			continue
		}
		exprs = append(exprs, clause.Expr{SQL: column + " = ?", Vars: []interface{}{row.ID}})
	}
	return anyOf(exprs), nil
}

// anyOf ORs exprs. A lone expression is returned as is: GORM joins a
// single-element OrConditions to the previous condition with OR.
func anyOf(exprs []clause.Expression) clause.Expression {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return clause.Or(exprs...)
}

// applyFilters adds the category/platform/model/exclude/author conditions.
// Unknown IDs are skipped; a list with no known IDs adds no condition.
func applyFilters(ctx context.Context, lookup, q *gorm.DB, pq PostQuery) (*gorm.DB, error) {
	categoryCond, err := otherAwareCondition(ctx, lookup, "categories", "posts.category_id", "posts.category_etc", ParseIDList(pq.Categories))
	if err != nil {
		return nil, err
	}
	if categoryCond != nil {
		q = q.Where(categoryCond)
	}

	platformCond, err := otherAwareCondition(ctx, lookup, "platforms", "posts.platform_id", "", ParseIDList(pq.Platforms))
	if err != nil {
		return nil, err
	}
	if platformCond != nil {
		q = q.Where(platformCond)
	}

	modelCond, err := otherAwareCondition(ctx, lookup, "ai_models", "posts.model_id", "posts.model_etc", ParseIDList(pq.Models))
	if err != nil {
		return nil, err
	}
	if modelCond != nil {
		q = q.Where(modelCond)
	}

	if pq.ExcludeID != 0 {
		q = q.Where("posts.id <> ?", pq.ExcludeID)
	}
	if pq.AuthorID != 0 {
		q = q.Where("posts.author_id = ?", pq.AuthorID)
	}
	if pq.AuthorUsername != "" {
		q = q.Where("posts.author_id IN (?)", lookup.Session(&gorm.Session{NewDB: true}).
			Table("users").Select("id").Where("username = ?", pq.AuthorUsername))
	}
	return q, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// SearchScope adds a case-insensitive substring search over the columns
// chosen by searchType. Blank search terms add nothing.
func SearchScope(search, searchType string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term := strings.TrimSpace(search)
		if term == "" {
			return db
		}

		titleCols := []string{"posts.title"}
		contentCols := []string{"posts.prompt", "posts.ai_response", "posts.additional_opinion", "posts.tags"}

		var cols []string
		switch NormalizeSearchType(searchType) {
		case SearchTitle:
			cols = titleCols
		case SearchContent:
			cols = contentCols
		default:
			cols = append(titleCols, contentCols...)
		}

		pattern := containsPattern(term)
		exprs := make([]clause.Expression, 0, len(cols))
		for _, col := range cols {
			exprs = append(exprs, clause.Expr{
				SQL:  fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col),
				Vars: []interface{}{pattern},
			})
		}
		return db.Where(anyOf(exprs))
	}
}

// SortScope orders posts by sort key with a final id tiebreaker.
func SortScope(sort string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch NormalizeSort(sort) {
		case SortOldest:
			return db.Order("posts.created_at ASC").Order("posts.id ASC")
		case SortPopular:
			return db.Order("(posts.like_count + posts.bookmark_count) DESC").
				Order("posts.created_at DESC").Order("posts.id DESC")
		case SortSatisfaction:
			return db.Order("CASE WHEN posts.satisfaction IS NULL THEN 1 ELSE 0 END").
				Order("posts.satisfaction DESC").
				Order("posts.created_at DESC").Order("posts.id DESC")
		case SortViews:
			return db.Order("posts.view_count DESC").
				Order("posts.created_at DESC").Order("posts.id DESC")
		default:
			return db.Order("posts.created_at DESC").Order("posts.id DESC")
		}
	}
}

func normalizedColumn(col string) string {
	return fmt.Sprintf("REPLACE(REPLACE(REPLACE(LOWER(%s), ' ', ''), '-', ''), '_', '')", col)
}

// MatchingRanking restricts posts to those a trending rule selects. A rule
// without a related model matches nothing.
func MatchingRanking(rule matching.KeywordRule) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if rule.RelatedModelID == nil {
			return db.Where("1 = 0")
		}
		db = db.Where("posts.model_id = ?", *rule.RelatedModelID)
		if !rule.Narrows() {
			return db
		}

		detail, etc := rule.Keywords()
		var exprs []clause.Expression
		if detail != "" {
			exprs = append(exprs, clause.Expr{
				SQL:  normalizedColumn("posts.model_detail") + ` LIKE ? ESCAPE '\'`,
				Vars: []interface{}{"%" + likeEscaper.Replace(detail) + "%"},
			})
		}
		if etc != "" {
			exprs = append(exprs, clause.Expr{
				SQL:  normalizedColumn("posts.model_etc") + ` LIKE ? ESCAPE '\'`,
				Vars: []interface{}{"%" + likeEscaper.Replace(etc) + "%"},
			})
		}
		return db.Where(anyOf(exprs))
	}
}
