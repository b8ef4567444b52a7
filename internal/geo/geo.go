// Package geo resolves a coarse "City, Country" location from a client IP.
package geo

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"prompthub/internal/middleware"
	"prompthub/internal/observability"

	"github.com/gofiber/fiber/v2"
)

const unknown = "Unknown"

// Locator resolves locations. Implementations never fail: lookups that
// cannot be answered return the fallback location.
type Locator interface {
	Locate(ctx context.Context, ip string) string
}

// Client queries an ipapi.co compatible endpoint: GET {base}/{ip}/json/.
type Client struct {
	baseURL  string
	timeout  time.Duration
	fallback string
}

// NewClient returns a Client. Lookups that fail resolve to fallback.
func NewClient(baseURL string, timeout time.Duration, fallback string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		timeout:  timeout,
		fallback: fallback,
	}
}

type ipapiResponse struct {
	City        string `json:"city"`
	CountryName string `json:"country_name"`
	Error       bool   `json:"error"`
}

// Locate returns "City, Country". Private, loopback and malformed addresses
// skip the lookup.
func (c *Client) Locate(ctx context.Context, ip string) string {
	if !IsPublic(ip) {
		observability.GeolocationLookups.WithLabelValues("skipped").Inc()
		return c.fallback
	}

	var body ipapiResponse
	agent := fiber.Get(fmt.Sprintf("%s/%s/json/", c.baseURL, ip)).Timeout(c.timeout)
	code, _, errs := agent.Struct(&body)
	if len(errs) > 0 || code != fiber.StatusOK || body.Error {
		observability.GeolocationLookups.WithLabelValues("error").Inc()
		attrs := []any{slog.String("ip", ip), slog.Int("status", code)}
		if len(errs) > 0 {
			attrs = append(attrs, slog.String("error", errs[0].Error()))
		}
		middleware.Logger.WarnContext(ctx, "ip geolocation failed", attrs...)
		return c.fallback
	}

	location, ok := format(body.City, body.CountryName)
	if !ok {
		observability.GeolocationLookups.WithLabelValues("empty").Inc()
		return c.fallback
	}
	observability.GeolocationLookups.WithLabelValues("ok").Inc()
	return location
}

func known(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != unknown
}

// format joins city and country, substituting Unknown for one missing part.
func format(city, country string) (string, bool) {
	switch {
	case known(city) && known(country):
		return city + ", " + country, true
	case known(city):
		return city + ", " + unknown, true
	case known(country):
		return unknown + ", " + country, true
	default:
		return "", false
	}
}

// IsPublic reports whether ip parses and is globally routable.
func IsPublic(ip string) bool {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return false
	}
	return !(parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() ||
		parsed.IsLinkLocalUnicast() || parsed.IsLinkLocalMulticast())
}

// Static always answers the same location.
type Static string

func (s Static) Locate(context.Context, string) string { return string(s) }
