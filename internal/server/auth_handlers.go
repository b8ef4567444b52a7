package server

import (
	"prompthub/internal/models"
	"prompthub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
// @Summary Register
// @Description Create an account with a generated username. The location is resolved from the client IP when enabled.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Register request"
// @Success 201 {object} models.SuccessResponse{data=service.AuthResult}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.ClientIP = clientIP(c)

	result, err := s.userService.Register(c.UserContext(), req)
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusCreated, "Registration completed", result)
}

// Login handles POST /api/auth/login
// @Summary Login
// @Description Authenticate and start a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Login credentials"
// @Success 200 {object} models.SuccessResponse{data=service.AuthResult}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.ClientIP = clientIP(c)
	req.UserAgent = c.Get(fiber.HeaderUserAgent)

	result, err := s.userService.Login(c.UserContext(), req)
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusOK, "Login successful", result)
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description Revoke the token and the current session. Always succeeds.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Param X-Session-Key header string false "Session key"
// @Success 200 {object} models.SuccessResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	var req struct {
		SessionKey string `json:"session_key"`
	}
	// A malformed body still logs the user out.
	if len(c.Body()) > 0 {
		_ = c.BodyParser(&req)
	}
	s.userService.Logout(c.UserContext(), currentClaims(c), sessionKey(c, req.SessionKey))
	return models.RespondWithMessage(c, fiber.StatusOK, "Logged out successfully", nil)
}

// Me handles GET /api/auth/me
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SuccessResponse{data=models.User}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.userService.Me(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, user)
}

// GetProfile handles GET /api/auth/profile
// @Summary Current user's profile
// @Description Profile with post totals and settings
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SuccessResponse{data=service.Profile}
// @Router /auth/profile [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	profile, err := s.userService.Profile(c.UserContext(), currentUserID(c), true)
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, profile)
}

// UpdateProfile handles PUT and PATCH /api/auth/profile. Omitted fields are kept.
// @Summary Update profile
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdateProfileInput true "Profile fields"
// @Success 200 {object} models.SuccessResponse{data=service.Profile}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/profile [put]
// @Router /auth/profile [patch]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = currentUserID(c)

	profile, err := s.userService.UpdateProfile(c.UserContext(), req)
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusOK, "Profile updated", profile)
}

// ChangePassword handles POST /api/auth/change-password
// @Summary Change password
// @Description Verify the current password, store the new one and return a fresh token. The old token is revoked.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ChangePasswordInput true "Passwords"
// @Success 200 {object} models.SuccessResponse{data=service.AuthResult}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/change-password [post]
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = currentUserID(c)
	req.Claims = currentClaims(c)

	result, err := s.userService.ChangePassword(c.UserContext(), req)
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusOK, "Password changed", result)
}

// DeleteAccount handles POST and DELETE /api/auth/delete-account
// @Summary Delete account
// @Description Deletes the account and everything it owns. A confirmation, when sent, must read "계정 삭제".
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{confirmation=string} false "Confirmation"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/delete-account [post]
// @Router /auth/delete-account [delete]
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	var req struct {
		Confirmation *string `json:"confirmation"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.userService.DeleteAccount(c.UserContext(), currentClaims(c), req.Confirmation); err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusOK, "Account deleted", nil)
}

// CheckUsername handles GET /api/auth/check-username
// @Summary Username availability
// @Description A signed-in caller's own username counts as available.
// @Tags auth
// @Produce json
// @Param username query string true "Username"
// @Success 200 {object} models.SuccessResponse{data=object{available=bool,message=string}}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/check-username [get]
func (s *Server) CheckUsername(c *fiber.Ctx) error {
	available, message, err := s.userService.CheckUsername(c.UserContext(), c.Query("username"), s.optionalUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, fiber.Map{
		"available": available,
		"message":   message,
	})
}

// GetSettings handles GET /api/auth/settings
// @Summary Account settings
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SuccessResponse{data=models.UserSettings}
// @Router /auth/settings [get]
func (s *Server) GetSettings(c *fiber.Ctx) error {
	settings, err := s.userService.Settings(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, settings)
}

// UpdateSettings handles PUT /api/auth/settings
// @Summary Update account settings
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.UpdateSettingsInput true "Settings"
// @Success 200 {object} models.SuccessResponse{data=models.UserSettings}
// @Router /auth/settings [put]
func (s *Server) UpdateSettings(c *fiber.Ctx) error {
	var req service.UpdateSettingsInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	settings, err := s.userService.UpdateSettings(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithMessage(c, fiber.StatusOK, "Settings updated", settings)
}

// GetSessions handles GET /api/auth/sessions
// @Summary Active sessions
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Param X-Session-Key header string false "Current session key"
// @Success 200 {object} models.SuccessResponse{data=[]service.SessionView}
// @Router /auth/sessions [get]
func (s *Server) GetSessions(c *fiber.Ctx) error {
	sessions, err := s.userService.Sessions(c.UserContext(), currentUserID(c), c.Get(sessionKeyHeader))
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, sessions)
}

// RevokeSessions handles POST /api/auth/sessions/revoke
// @Summary Revoke sessions
// @Description End one session by key, or every other session with all=true.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{session_key=string,all=bool} true "Sessions to end"
// @Success 200 {object} models.SuccessResponse{data=object{revoked=int}}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/sessions/revoke [post]
func (s *Server) RevokeSessions(c *fiber.Ctx) error {
	var req struct {
		SessionKey string `json:"session_key"`
		All        bool   `json:"all"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	n, err := s.userService.RevokeSessions(c.UserContext(), currentUserID(c), req.SessionKey, req.All, c.Get(sessionKeyHeader))
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, fiber.Map{"revoked": n})
}

// RegenerateAvatar handles POST /api/auth/avatar/regenerate
// @Summary Reset avatar colors
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SuccessResponse{data=models.User}
// @Router /auth/avatar/regenerate [post]
func (s *Server) RegenerateAvatar(c *fiber.Ctx) error {
	user, err := s.userService.RegenerateAvatar(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return models.RespondWithData(c, fiber.StatusOK, user)
}
