package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pokeguess/pokeguess/internal/observability/metrics"
)

// NewMetrics records request counts and latency per route template.
func NewMetrics(m *metrics.HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				}
			}

			// Route templates keep label cardinality bounded
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}

			m.RecordRequest(c.Request().Method, path, status, time.Since(start))
			return err
		}
	}
}
