package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/buying-list/internal/fetch"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	t.Parallel()

	got := make(chan http.Header, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.Header.Clone()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><span class="price">19.99</span></body></html>`))
	}))
	defer srv.Close()

	f := fetch.NewHTTPFetcher()
	resp, err := f.Fetch(context.Background(), srv.URL, fetch.BrowserHeaders(nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, resp.Body, "19.99")
	h := <-got
	assert.Contains(t, fetch.DefaultUserAgents, h.Get("User-Agent"))
	assert.Equal(t, "ar,en-US;q=0.9,en;q=0.8", h.Get("Accept-Language"))
}

func TestHTTPFetcher_NonOKIsNotAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	resp, err := fetch.NewHTTPFetcher().Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.Status)
}

func TestHTTPFetcher_DecodesCharset(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// 0xA3 is the pound sign in Latin-1.
		_, _ = w.Write([]byte("<p>\xa312,50</p>"))
	}))
	defer srv.Close()

	resp, err := fetch.NewHTTPFetcher().Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Contains(t, resp.Body, "£12,50")
}

func TestHTTPFetcher_MaxBodyBytes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(strings.Repeat("a", 1000)))
	}))
	defer srv.Close()

	resp, err := fetch.NewHTTPFetcher(fetch.WithMaxBodyBytes(10)).
		Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Len(t, resp.Body, 10)
}

func TestHTTPFetcher_RateLimited(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := fetch.NewHTTPFetcher(fetch.WithRateLimiter(fetch.NewRateLimiter(0, 1, 1)))
	_, err := f.Fetch(context.Background(), srv.URL, nil)
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrDailyLimitReached)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPFetcher_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := fetch.NewHTTPFetcher().Fetch(context.Background(), url, nil)
	assert.Error(t, err)
}

func TestBrowserHeaders(t *testing.T) {
	t.Parallel()

	h := fetch.BrowserHeaders([]string{"test-agent"})
	assert.Equal(t, "test-agent", h.Get("User-Agent"))
	assert.Equal(t, "navigate", h.Get("Sec-Fetch-Mode"))
	assert.Empty(t, h.Get("Accept-Encoding"))
}
