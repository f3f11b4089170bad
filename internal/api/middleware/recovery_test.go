package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRecovery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		path       string
		handler    echo.HandlerFunc
		wantStatus int
		wantLog    []string
	}{
		{
			name:   "no panic passes through",
			method: http.MethodGet,
			path:   "/api/v1/items",
			handler: func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "string panic",
			method: http.MethodPost,
			path:   "/api/v1/extract",
			handler: func(_ echo.Context) error {
				panic("selector engine exploded")
			},
			wantStatus: http.StatusInternalServerError,
			wantLog:    []string{"panic recovered", "selector engine exploded", "method=POST", "path=/api/v1/extract"},
		},
		{
			name:   "error panic",
			method: http.MethodPut,
			path:   "/api/v1/items/abc/sources/def/price",
			handler: func(_ echo.Context) error {
				panic(errors.New("nil source"))
			},
			wantStatus: http.StatusInternalServerError,
			wantLog:    []string{"nil source", "method=PUT"},
		},
		{
			name:   "non-error panic value",
			method: http.MethodDelete,
			path:   "/api/v1/items/abc",
			handler: func(_ echo.Context) error {
				panic(42)
			},
			wantStatus: http.StatusInternalServerError,
			wantLog:    []string{"error=42", "stack="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(req, rec)

			require.NoError(t, Recovery(logger)(tt.handler)(c))
			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				assert.Empty(t, buf.String(), "no panic should produce no log output")
				return
			}

			assert.Equal(t, "application/problem+json", rec.Header().Get(echo.HeaderContentType))
			var body problem
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, http.StatusInternalServerError, body.Status)
			assert.Equal(t, "Internal Server Error", body.Title)
			assert.Equal(t, "internal server error", body.Detail)
			assert.NotContains(t, rec.Body.String(), "stack")

			for _, want := range tt.wantLog {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestRecovery_LogsRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/summary", http.NoBody)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	e := echo.New()

	handler := RequestLog(logger)(Recovery(logger)(func(_ echo.Context) error {
		panic("boom")
	}))
	require.NoError(t, handler(e.NewContext(req, rec)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "request_id=req-123")
}

func TestRecovery_MarksSpanFailed(t *testing.T) {
	t.Parallel()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	ctx, span := tp.Tracer("test").Start(t.Context(), "GET /api/v1/items")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", http.NoBody).WithContext(ctx)
	rec := httptest.NewRecorder()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	handler := Recovery(logger)(func(_ echo.Context) error {
		panic("boom")
	})
	require.NoError(t, handler(echo.New().NewContext(req, rec)))
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	require.NotEmpty(t, ended[0].Events())
	assert.Equal(t, "exception", ended[0].Events()[0].Name)
}
