package fhir

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// CORSConfig holds CORS configuration for the FHIR endpoints.
type CORSConfig struct {
	AllowOrigins []string
	MaxAge       int // in seconds
}

// DefaultCORSConfig returns permissive defaults: any origin, preflight
// results cached for one hour.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		MaxAge:       3600,
	}
}

var corsAllowMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodOptions,
}

var corsAllowHeaders = []string{
	"Content-Type",
	"Authorization",
	"Accept",
	"Cache-Control",
	"Prefer",
	"X-Request-ID",
}

var corsExposeHeaders = []string{
	"Content-Location",
	"X-Request-ID",
}

// CORSMiddleware sets CORS headers on every response. With a wildcard origin
// the headers are written even when the request carries no Origin header,
// which is what browsers talking to the mock expect. Preflight OPTIONS
// requests are answered with 200 and an empty body.
func CORSMiddleware(config ...CORSConfig) echo.MiddlewareFunc {
	cfg := DefaultCORSConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	allowMethods := strings.Join(corsAllowMethods, ", ")
	allowHeaders := strings.Join(corsAllowHeaders, ", ")
	exposeHeaders := strings.Join(corsExposeHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get("Origin")
			allowOrigin := resolveAllowOrigin(cfg.AllowOrigins, origin)
			if allowOrigin == "" {
				return next(c)
			}

			h := c.Response().Header()
			h.Set("Access-Control-Allow-Origin", allowOrigin)
			if allowOrigin != "*" {
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", allowMethods)
			h.Set("Access-Control-Allow-Headers", allowHeaders)
			h.Set("Access-Control-Expose-Headers", exposeHeaders)

			if c.Request().Method == http.MethodOptions {
				h.Set("Access-Control-Max-Age", maxAge)
				return c.NoContent(http.StatusOK)
			}

			return next(c)
		}
	}
}

// resolveAllowOrigin returns the value for the Access-Control-Allow-Origin
// header. A configured "*" wins. Otherwise the request origin is echoed only
// if it is listed. An empty string means the origin is not permitted.
func resolveAllowOrigin(allowed []string, origin string) string {
	for _, o := range allowed {
		if o == "*" {
			return "*"
		}
		if origin != "" && o == origin {
			return origin
		}
	}
	return ""
}
