package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/buying-list/internal/metrics"
)

// problem mirrors the RFC 9457 body huma writes for its own errors, so
// clients see one error shape.
type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// Recovery returns Echo middleware that recovers from panics, logs the stack
// trace, marks the request span as failed, and returns a 500 problem body.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				buf := make([]byte, 4096)
				n := runtime.Stack(buf, false)
				msg := fmt.Sprint(r)

				log.Error("panic recovered",
					"error", msg,
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
					"request_id", c.Get(RequestIDKey),
					"stack", string(buf[:n]),
				)
				metrics.HTTPPanicsTotal.Inc()

				span := trace.SpanFromContext(c.Request().Context())
				span.RecordError(fmt.Errorf("panic: %s", msg))
				span.SetStatus(codes.Error, "panic")

				c.Response().Header().Set(echo.HeaderContentType, "application/problem+json")
				err = c.JSON(http.StatusInternalServerError, problem{
					Title:  http.StatusText(http.StatusInternalServerError),
					Status: http.StatusInternalServerError,
					Detail: "internal server error",
				})
			}()
			return next(c)
		}
	}
}
