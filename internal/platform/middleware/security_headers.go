package middleware

import (
	"github.com/labstack/echo/v4"
)

var jsonAPIHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "no-referrer"},
	// Patient records are mock data but shaped like PHI.
	{"Cache-Control", "no-store"},
}

// SecurityHeaders marks every response as JSON that browsers must not sniff,
// frame or cache.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			for _, kv := range jsonAPIHeaders {
				h.Set(kv[0], kv[1])
			}
			return next(c)
		}
	}
}
