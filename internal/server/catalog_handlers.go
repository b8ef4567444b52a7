package server

import (
	"prompthub/internal/models"
	"prompthub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPlatforms handles GET /api/posts/platforms
// @Summary Active platforms
// @Tags catalog
// @Produce json
// @Success 200 {object} models.SuccessResponse{data=[]models.Platform}
// @Router /posts/platforms [get]
func (s *Server) GetPlatforms(c *fiber.Ctx) error {
	platforms, err := s.catalogService.Platforms(c.UserContext())
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, platforms)
}

// GetCategories handles GET /api/posts/categories
// @Summary Post categories
// @Tags catalog
// @Produce json
// @Success 200 {object} models.SuccessResponse{data=[]models.Category}
// @Router /posts/categories [get]
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.catalogService.Categories(c.UserContext())
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, categories)
}

// GetModels handles GET /api/posts/models
// @Summary Active models
// @Tags catalog
// @Produce json
// @Param platform_id query int false "Limit to one platform"
// @Success 200 {object} models.SuccessResponse{data=[]service.ModelView}
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/models [get]
func (s *Server) GetModels(c *fiber.Ctx) error {
	platformID, err := service.ParsePlatformID(c.Query("platform_id"))
	if err != nil {
		return respondAppError(c, err)
	}
	list, err := s.catalogService.Models(c.UserContext(), platformID)
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, list)
}

// GetPlatformModels handles GET /api/posts/platforms/:id/models
// @Summary Models of a platform
// @Tags catalog
// @Produce json
// @Param id path int true "Platform ID"
// @Success 200 {object} models.SuccessResponse{data=[]service.ModelView}
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/platforms/{id}/models [get]
func (s *Server) GetPlatformModels(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	list, err := s.catalogService.PlatformModels(c.UserContext(), id)
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, list)
}

// SuggestModels handles GET /api/posts/models/suggest
// @Summary Model autocomplete
// @Description Ranks active models by prefix and substring matches on model and platform names and slugs.
// @Tags catalog
// @Produce json
// @Param query query string true "Search text"
// @Param platform_id query int false "Limit to one platform"
// @Param limit query int false "Result count (1-50, default 10)"
// @Success 200 {object} models.SuccessResponse{data=service.SuggestResult}
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/models/suggest [get]
func (s *Server) SuggestModels(c *fiber.Ctx) error {
	platformID, err := service.ParsePlatformID(c.Query("platform_id"))
	if err != nil {
		return respondAppError(c, err)
	}
	result, err := s.catalogService.Suggest(c.UserContext(), c.Query("query"), platformID, service.ParseSuggestLimit(c.Query("limit")))
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, result)
}

// GetFilterOptions handles GET /api/posts/filter-options
// @Summary Feed filter choices
// @Tags catalog
// @Produce json
// @Success 200 {object} models.SuccessResponse{data=service.FilterOptions}
// @Router /posts/filter-options [get]
func (s *Server) GetFilterOptions(c *fiber.Ctx) error {
	opts, err := s.catalogService.FilterOptions(c.UserContext())
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, opts)
}

// GetTags handles GET /api/posts/tags
// @Summary Tags by usage
// @Tags catalog
// @Produce json
// @Success 200 {object} models.SuccessResponse{data=[]repository.TagCount}
// @Router /posts/tags [get]
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.postService.Tags(c.UserContext())
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, tags)
}
