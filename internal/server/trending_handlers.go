package server

import (
	"strings"

	"prompthub/internal/models"
	"prompthub/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// GetCategoryRankings handles GET /api/trending/category-rankings
// @Summary Trending rankings
// @Description Active categories keyed by name, in display order. With category set only that block is returned.
// @Tags trending
// @Produce json
// @Param category query string false "Category name"
// @Success 200 {object} models.SuccessResponse{data=service.TrendingSnapshot}
// @Failure 404 {object} models.ErrorResponse
// @Router /trending/category-rankings [get]
func (s *Server) GetCategoryRankings(c *fiber.Ctx) error {
	if name := strings.TrimSpace(c.Query("category")); name != "" {
		category, err := s.trendingService.CategoryByName(c.UserContext(), name)
		if err != nil {
			return respondAppError(c, err)
		}
		return models.RespondWithData(c, fiber.StatusOK, category)
	}

	snap, fromCache, err := s.trendingService.CategoryRankings(c.UserContext())
	if err != nil {
		return respondAppError(c, err)
	}
	message := "Trending rankings loaded"
	if fromCache {
		message = "Trending rankings loaded from cache"
	}
	return models.RespondWithMessage(c, fiber.StatusOK, message, snap)
}

// RefreshTrendingCache handles POST /api/trending/refresh-cache
// @Summary Drop the cached rankings
// @Tags trending
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SuccessResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /trending/refresh-cache [post]
func (s *Server) RefreshTrendingCache(c *fiber.Ctx) error {
	if err := s.trendingService.Refresh(c.UserContext()); err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusOK, "Trending cache refreshed", nil)
}

// GetTrendingModelPosts handles GET /api/trending/model/:name/posts
// @Summary Posts about a trending model
// @Tags trending
// @Produce json
// @Param name path string true "Trending model name"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (default 20)"
// @Param sort query string false "Sort key"
// @Success 200 {object} models.SuccessResponse{data=service.TrendingPosts}
// @Failure 404 {object} models.ErrorResponse
// @Router /trending/model/{name}/posts [get]
func (s *Server) GetTrendingModelPosts(c *fiber.Ctx) error {
	q := repository.PostQuery{Sort: c.Query("sort", c.Query("sort_by"))}
	result, err := s.trendingService.RelatedPosts(c.UserContext(), nameParam(c, "name"), q,
		pageRequest(c, repository.UserPageSize), s.optionalUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, result)
}

// GetTrendingModelInfo handles GET /api/trending/model/:name/info
// @Summary Trending model details
// @Tags trending
// @Produce json
// @Param name path string true "Trending model name"
// @Success 200 {object} models.SuccessResponse{data=service.TrendingModelInfo}
// @Failure 404 {object} models.ErrorResponse
// @Router /trending/model/{name}/info [get]
func (s *Server) GetTrendingModelInfo(c *fiber.Ctx) error {
	info, err := s.trendingService.ModelInfo(c.UserContext(), nameParam(c, "name"))
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, info)
}
