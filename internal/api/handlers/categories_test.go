package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

func TestCategoriesHandler_CRUD(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, staticPages)

	resp := env.api.Get("/api/v1/categories")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeJSON[[]domain.Category](t, resp), 8)

	resp = env.api.Post("/api/v1/categories", map[string]any{"id": "gadgets", "name": "Gadgets"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decodeJSON[domain.Category](t, resp)
	assert.Equal(t, "gadgets", created.ID)
	assert.False(t, created.IsDefault)
	assert.Equal(t, "package", created.Icon)

	resp = env.api.Post("/api/v1/categories", map[string]any{"id": "gadgets", "name": "Again"})
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = env.api.Post("/api/v1/categories", map[string]any{"name": "Bad", "color": "red"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = env.api.Patch("/api/v1/categories/gadgets", map[string]any{"color": "#112233"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decodeJSON[domain.Category](t, resp)
	assert.Equal(t, "#112233", updated.Color)
	assert.Equal(t, "Gadgets", updated.Name)

	resp = env.api.Get("/api/v1/categories/gadgets")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "#112233")

	require.Equal(t, http.StatusNoContent, env.api.Delete("/api/v1/categories/gadgets").Code)
	assert.Equal(t, http.StatusNotFound, env.api.Get("/api/v1/categories/gadgets").Code)
	assert.Equal(t, http.StatusNotFound, env.api.Patch("/api/v1/categories/gadgets", map[string]any{}).Code)
}

func TestCategoriesHandler_DeleteConflicts(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, staticPages)

	resp := env.api.Delete("/api/v1/categories/electronics")
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "default categories cannot be deleted")

	require.Equal(t, http.StatusCreated, env.api.Post("/api/v1/categories", map[string]any{"id": "toys", "name": "Toys"}).Code)
	it := domain.Item{Name: "Robot", CategoryID: "toys"}
	require.NoError(t, env.store.CreateItem(context.Background(), &it))

	resp = env.api.Delete("/api/v1/categories/toys")
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "category has items")
}

func TestCategoriesHandler_Stats(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, staticPages)
	ctx := context.Background()

	for _, p := range []string{"100", "300"} {
		it := domain.Item{Name: "Thing " + p, CategoryID: "books"}
		require.NoError(t, env.store.CreateItem(ctx, &it))
		src := env.addSource(t, it.ID, "shop")
		_, err := env.engine.SetManualPrice(ctx, it.ID, src.ID, mustDecimal(p))
		require.NoError(t, err)
	}
	unpriced := domain.Item{Name: "Unpriced", CategoryID: "books"}
	require.NoError(t, env.store.CreateItem(ctx, &unpriced))
	env.createItem(t, "Elsewhere")

	resp := env.api.Get("/api/v1/categories/books/stats")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	stats := decodeJSON[domain.CategoryStats](t, resp)
	assert.Equal(t, 3, stats.TotalItems)
	assert.Equal(t, 2, stats.PricedItems)
	assert.True(t, mustDecimal("400").Equal(stats.TotalValue))
	assert.True(t, mustDecimal("300").Equal(stats.HighestPrice))
	assert.True(t, mustDecimal("100").Equal(stats.LowestPrice))

	assert.Equal(t, http.StatusNotFound, env.api.Get("/api/v1/categories/nope/stats").Code)
}
