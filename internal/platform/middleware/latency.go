package middleware

import (
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// SimulatedLatency delays each non-preflight request by a uniformly random
// duration in [lo, hi] to mimic a remote FHIR server. A zero hi disables
// it. The delay stops early if the request context is cancelled.
func SimulatedLatency(lo, hi time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if hi <= 0 {
			return next
		}
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodOptions {
				return next(c)
			}
			d := lo
			if hi > lo {
				d += rand.N(hi - lo + 1)
			}
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-t.C:
			case <-c.Request().Context().Done():
				return c.Request().Context().Err()
			}
			return next(c)
		}
	}
}
