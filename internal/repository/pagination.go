package repository

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

const (
	// DefaultPageSize applies to public lists.
	DefaultPageSize = 10
	// UserPageSize applies to lists scoped to the current user.
	UserPageSize = 20
	// MaxPageSize is the hard upper bound for any page_size.
	MaxPageSize = 100
)

// PageRequest is a parsed, bounded page/page_size pair.
type PageRequest struct {
	Page int
	Size int
}

// ParsePageRequest parses raw query values. A non-numeric page or size
// yields page 1 with the default size; sizes are clamped to MaxPageSize.
func ParsePageRequest(page, pageSize string, defaultSize int) PageRequest {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	req := PageRequest{Page: 1, Size: defaultSize}

	if raw := strings.TrimSpace(pageSize); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return PageRequest{Page: 1, Size: defaultSize}
		}
		if size > 0 {
			req.Size = min(size, MaxPageSize)
		}
	}

	if raw := strings.TrimSpace(page); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return PageRequest{Page: 1, Size: defaultSize}
		}
		req.Page = n
	}
	return req
}

// PageMeta is the pagination block of list responses.
type PageMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalCount  int64 `json:"total_count"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// Page is one page of results with its metadata.
type Page[T any] struct {
	Results    []T      `json:"results"`
	Pagination PageMeta `json:"pagination"`
}

// NewPageMeta resolves req against total. A page outside [1, total_pages]
// is clamped to the last page. It returns the row offset to read from.
func NewPageMeta(req PageRequest, total int64) (PageMeta, int) {
	size := req.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}

	current := req.Page
	if current < 1 || current > totalPages {
		current = totalPages
	}

	return PageMeta{
		CurrentPage: current,
		TotalPages:  totalPages,
		TotalCount:  total,
		HasNext:     current < totalPages,
		HasPrevious: current > 1,
	}, (current - 1) * size
}

// Paginate counts the rows matched by base, then loads the requested page
// into dest. decorate adds ordering and preloads after counting.
func Paginate[T any](base *gorm.DB, req PageRequest, decorate func(*gorm.DB) *gorm.DB, dest *[]T) (PageMeta, error) {
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return PageMeta{}, err
	}

	meta, offset := NewPageMeta(req, total)
	if total == 0 {
		*dest = []T{}
		return meta, nil
	}

	q := base
	if decorate != nil {
		q = decorate(q)
	}
	size := req.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	if err := q.Offset(offset).Limit(size).Find(dest).Error; err != nil {
		return PageMeta{}, err
	}
	return meta, nil
}
