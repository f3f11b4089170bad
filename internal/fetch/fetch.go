// Package fetch retrieves source pages over HTTP for price extraction.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/html/charset"

	"github.com/donaldgifford/buying-list/internal/metrics"
)

const (
	// DefaultTimeout bounds a single fetch including the body read.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodyBytes caps how much of a page is read.
	DefaultMaxBodyBytes = 5 << 20
)

// Response is a fetched page. Non-200 statuses are returned as responses,
// not errors.
type Response struct {
	Status int
	Body   string
}

// Fetcher retrieves a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers http.Header) (*Response, error)
}

// HTTPFetcher implements Fetcher with net/http.
type HTTPFetcher struct {
	client      *http.Client
	rateLimiter *RateLimiter
	maxBody     int64
}

// Option configures the HTTPFetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = hc
	}
}

// WithTimeout sets the per-fetch timeout on the default client.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithRateLimiter injects a rate limiter. Every Fetch goes through Wait first.
func WithRateLimiter(r *RateLimiter) Option {
	return func(f *HTTPFetcher) {
		f.rateLimiter = r
	}
}

// WithMaxBodyBytes caps the number of body bytes read per page.
func WithMaxBodyBytes(n int64) Option {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxBody = n
		}
	}
}

// NewHTTPFetcher creates a fetcher whose transport is traced with otelhttp.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		maxBody: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues a GET for url with the given headers and returns the status
// and the body decoded to UTF-8.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, headers http.Header) (*Response, error) {
	if f.rateLimiter != nil {
		if err := f.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.FetchDailyLimitHits.Inc()
			}
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		metrics.FetchDailyUsage.Set(float64(f.rateLimiter.DailyCount()))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		metrics.FetchResponsesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	body, err := f.readBody(resp)
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FetchResponsesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("reading body: %w", err)
	}
	metrics.FetchResponsesTotal.WithLabelValues(statusClass(resp.StatusCode)).Inc()

	return &Response{Status: resp.StatusCode, Body: body}, nil
}

func (f *HTTPFetcher) readBody(resp *http.Response) (string, error) {
	limited := io.LimitReader(resp.Body, f.maxBody)

	r, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		// Unknown charset; fall back to the raw bytes.
		r = limited
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
