package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/buying-list/internal/fetch"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

func TestSourcesHandler_Add(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       map[string]any
		missing    bool
		wantStatus int
		wantBody   string
	}{
		{
			name: "added with settings currency",
			body: map[string]any{
				"name":      "Amazon",
				"url":       "https://www.amazon.sa/dp/B0TEST",
				"selectors": []string{" .a-price .a-offscreen ", ""},
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"currency":"ر.س"`,
		},
		{
			name: "not http",
			body: map[string]any{
				"name":      "FTP",
				"url":       "ftp://files.example/x",
				"selectors": []string{".price"},
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `absolute http(s) URL`,
		},
		{
			name: "no selectors",
			body: map[string]any{
				"name":      "Shop",
				"url":       "https://shop.example/x",
				"selectors": []string{},
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   `selectors`,
		},
		{
			name: "unknown item",
			body: map[string]any{
				"name":      "Shop",
				"url":       "https://shop.example/x",
				"selectors": []string{".price"},
			},
			missing:    true,
			wantStatus: http.StatusNotFound,
			wantBody:   `item not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, staticPages)
			id := env.createItem(t, "Headphones").ID
			if tt.missing {
				id = "missing"
			}

			resp := env.api.Post("/api/v1/items/"+id+"/sources", tt.body)
			require.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			assert.Contains(t, resp.Body.String(), tt.wantBody)
		})
	}
}

func TestSourcesHandler_UpdateRemove(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, staticPages)
	it := env.createItem(t, "Headphones")
	src := env.addSource(t, it.ID, "shop")
	base := "/api/v1/items/" + it.ID + "/sources/" + src.ID

	resp := env.api.Patch(base, map[string]any{"active": false, "currency": "USD"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	got := decodeJSON[domain.Source](t, resp)
	assert.False(t, got.Active)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, "shop", got.Name)

	resp = env.api.Patch(base, map[string]any{"url": "mailto:someone"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = env.api.Delete(base)
	require.Equal(t, http.StatusNoContent, resp.Code)

	stored, err := env.store.GetItem(context.Background(), it.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Sources)

	assert.Equal(t, http.StatusNotFound, env.api.Delete(base).Code)
}

func TestSourcesHandler_SetPrice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		price      string
		wantStatus int
	}{
		{name: "valid", price: "99.95", wantStatus: http.StatusOK},
		{name: "zero", price: "0", wantStatus: http.StatusUnprocessableEntity},
		{name: "over ceiling", price: "1000000.01", wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, staticPages)
			it := env.createItem(t, "Headphones")
			src := env.addSource(t, it.ID, "shop")

			resp := env.api.Put("/api/v1/items/"+it.ID+"/sources/"+src.ID+"/price", map[string]any{
				"price": tt.price,
			})
			require.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			got := decodeJSON[domain.Source](t, resp)
			require.NotNil(t, got.CurrentPrice)
			assert.True(t, mustDecimal(tt.price).Equal(*got.CurrentPrice))

			stored, err := env.store.GetItem(context.Background(), it.ID)
			require.NoError(t, err)
			assert.Len(t, stored.PriceHistory, 1)
		})
	}
}

func TestSourcesHandler_Refresh(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		fetcher     fetch.Fetcher
		wantSuccess bool
		wantError   string
	}{
		{
			name:        "price extracted and committed",
			fetcher:     staticPages,
			wantSuccess: true,
		},
		{
			name: "server error is reported in the result",
			fetcher: fetchFunc(func(context.Context, string, http.Header) (*fetch.Response, error) {
				return &fetch.Response{Status: http.StatusServiceUnavailable}, nil
			}),
			wantError: "HTTP 503",
		},
		{
			name: "transport error is reported in the result",
			fetcher: fetchFunc(func(context.Context, string, http.Header) (*fetch.Response, error) {
				return nil, errors.New("connection refused")
			}),
			wantError: "fetch failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, tt.fetcher)
			it := env.createItem(t, "Headphones")
			src := env.addSource(t, it.ID, "shop")

			resp := env.api.Post("/api/v1/items/" + it.ID + "/sources/" + src.ID + "/refresh")
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

			res := decodeJSON[domain.ExtractionResult](t, resp)
			assert.Equal(t, tt.wantSuccess, res.Success)
			assert.Equal(t, src.ID, res.SourceID)
			if !tt.wantSuccess {
				assert.Contains(t, res.Error, tt.wantError)
				return
			}

			require.NotNil(t, res.Price)
			assert.True(t, mustDecimal("1299").Equal(*res.Price))
			assert.True(t, res.Changed)
			assert.Equal(t, ".price", res.UsedSelector)
		})
	}
}

func TestSourcesHandler_RefreshUnknownSource(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, staticPages)
	it := env.createItem(t, "Headphones")

	resp := env.api.Post("/api/v1/items/" + it.ID + "/sources/nope/refresh")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "source not found")
}
