// Package middleware provides Echo middleware for the buying-list API.
package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donaldgifford/buying-list/internal/metrics"
)

const unmatchedRoute = "unmatched"

// operational paths stay out of the request histogram. The probes drive an
// up gauge instead; /metrics has none.
var operational = map[string]prometheus.Gauge{
	"/metrics": nil,
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

// Metrics records request duration, count and in-flight requests labelled
// by route template (/api/v1/items/:id), never by raw URL. Requests that
// match no route share the "unmatched" label.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := routeLabel(c)
			if gauge, ok := operational[route]; ok {
				err := next(c)
				if gauge != nil {
					gauge.Set(up(c.Response().Status))
				}
				return err
			}

			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()
			start := time.Now()

			// Render the error here so the recorded status is the final one.
			if err := next(c); err != nil {
				c.Error(err)
			}

			labels := prometheus.Labels{
				"method": c.Request().Method,
				"path":   route,
				"status": strconv.Itoa(c.Response().Status),
			}
			metrics.HTTPRequestDuration.With(labels).Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.With(labels).Inc()
			return nil
		}
	}
}

func routeLabel(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	if _, ok := operational[c.Request().URL.Path]; ok {
		return c.Request().URL.Path
	}
	return unmatchedRoute
}

func up(status int) float64 {
	if status >= 200 && status < 300 {
		return 1
	}
	return 0
}
