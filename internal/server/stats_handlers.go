package server

import (
	"prompthub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetDashboardStats handles GET /api/stats/dashboard
// @Summary Site statistics
// @Description Totals, weekly activity, recent posts, popular tags and platform distribution. Cached for five minutes.
// @Tags stats
// @Produce json
// @Success 200 {object} models.SuccessResponse{data=service.DashboardStats}
// @Router /stats/dashboard [get]
func (s *Server) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := s.statsService.Dashboard(c.UserContext())
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, stats)
}

// GetUserStats handles GET /api/stats/user
// @Summary Current user's statistics
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SuccessResponse{data=service.UserStats}
// @Failure 401 {object} models.ErrorResponse
// @Router /stats/user [get]
func (s *Server) GetUserStats(c *fiber.Ctx) error {
	stats, err := s.statsService.UserStats(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, stats)
}
