package server

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"unicode"

	"prompthub/internal/middleware"
	"prompthub/internal/models"
	"prompthub/internal/repository"
	"prompthub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// respondAppError writes err with the status its code maps to. Errors
// without a code are unexpected and answered with 500.
func respondAppError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}
	status := appErr.HTTPStatus()
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("path", c.Path()),
			slog.String("error", appErr.Error()),
		)
	}
	return models.RespondWithError(c, status, appErr)
}

// parseBody decodes a JSON body when one was sent. An empty body leaves dst
// untouched. On failure it writes a 400 and returns errResponseWritten.
func parseBody(c *fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dst); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
		return errResponseWritten
	}
	return nil
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// The error message is derived from the parameter name (e.g. "id" -> "Invalid ID",
// "platformId" -> "Invalid platform ID").
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// nameParam returns a path parameter with percent-escapes decoded. Trending
// model names carry spaces and dots.
func nameParam(c *fiber.Ctx, param string) string {
	raw := c.Params(param)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// humanizeParam converts a route param name into a human-readable label.
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// postQuery reads the shared filter, search and sort parameters of post lists.
// q is accepted as an alias of search and sort_by of sort.
func postQuery(c *fiber.Ctx) repository.PostQuery {
	search := c.Query("search")
	if search == "" {
		search = c.Query("q")
	}
	sort := c.Query("sort")
	if sort == "" {
		sort = c.Query("sort_by")
	}
	q := repository.PostQuery{
		Categories:     c.Query("categories"),
		Platforms:      c.Query("platforms"),
		Models:         c.Query("models"),
		Search:         search,
		SearchType:     c.Query("search_type"),
		Sort:           sort,
		AuthorUsername: strings.TrimSpace(c.Query("author")),
	}
	if id := c.QueryInt("exclude_id", 0); id > 0 {
		q.ExcludeID = uint(id)
	}
	return q
}

func pageRequest(c *fiber.Ctx, defaultSize int) repository.PageRequest {
	return repository.ParsePageRequest(c.Query("page"), c.Query("page_size"), defaultSize)
}

// clientIP prefers the first X-Forwarded-For hop when the proxy sets one.
func clientIP(c *fiber.Ctx) string {
	if ips := c.IPs(); len(ips) > 0 && ips[0] != "" {
		return ips[0]
	}
	return c.IP()
}

// sessionKey is the client's session key, from the header or the body field.
func sessionKey(c *fiber.Ctx, body string) string {
	if key := strings.TrimSpace(c.Get(sessionKeyHeader)); key != "" {
		return key
	}
	return strings.TrimSpace(body)
}

func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

func currentClaims(c *fiber.Ctx) service.TokenClaims {
	claims, _ := c.Locals("claims").(service.TokenClaims)
	return claims
}

// isAdmin checks whether the given user has admin privileges.
func (s *Server) isAdmin(c *fiber.Ctx, userID uint) (bool, error) {
	return s.isAdminByUserID(c.UserContext(), userID)
}

func (s *Server) isAdminByUserID(ctx context.Context, userID uint) (bool, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("is_admin").First(&user, userID).Error; err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}
