package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

func TestInsightsHandler_Unpriced(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, staticPages)
	it := env.createItem(t, "Headphones")
	src := env.addSource(t, it.ID, "shop")

	tests := []struct {
		name     string
		path     string
		wantBody string
	}{
		{name: "comparison", path: "/api/v1/items/" + it.ID + "/comparison", wantBody: `"comparison":null`},
		{name: "recommendation", path: "/api/v1/items/" + it.ID + "/recommendation", wantBody: `"recommendation":null`},
		{name: "history", path: "/api/v1/items/" + it.ID + "/history", wantBody: `"points":[]`},
		{
			name:     "statistics",
			path:     "/api/v1/items/" + it.ID + "/sources/" + src.ID + "/statistics",
			wantBody: `"statistics":null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.api.Get(tt.path)
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
			assert.Contains(t, resp.Body.String(), tt.wantBody)
		})
	}
}

func TestInsightsHandler_Priced(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, staticPages)
	ctx := context.Background()
	it := env.createItem(t, "Headphones")
	cheap := env.addSource(t, it.ID, "cheap")
	dear := env.addSource(t, it.ID, "dear")

	_, err := env.engine.SetManualPrice(ctx, it.ID, dear.ID, mustDecimal("1200"))
	require.NoError(t, err)
	_, err = env.engine.SetManualPrice(ctx, it.ID, cheap.ID, mustDecimal("1000"))
	require.NoError(t, err)
	_, err = env.engine.SetManualPrice(ctx, it.ID, cheap.ID, mustDecimal("900"))
	require.NoError(t, err)

	base := "/api/v1/items/" + it.ID

	t.Run("comparison ranks cheapest first", func(t *testing.T) {
		resp := env.api.Get(base + "/comparison")
		require.Equal(t, http.StatusOK, resp.Code)

		out := decodeJSON[struct {
			Comparison domain.ComparisonSnapshot `json:"comparison"`
		}](t, resp)
		require.Len(t, out.Comparison.Entries, 2)
		assert.Equal(t, cheap.ID, out.Comparison.Entries[0].SourceID)
		assert.True(t, mustDecimal("300").Equal(out.Comparison.Savings))
	})

	t.Run("history filtered by source", func(t *testing.T) {
		resp := env.api.Get(base + "/history?source=" + cheap.ID + "&days=7")
		require.Equal(t, http.StatusOK, resp.Code)

		out := decodeJSON[struct {
			Points []domain.PricePoint `json:"points"`
		}](t, resp)
		require.Len(t, out.Points, 2)
		assert.True(t, mustDecimal("1000").Equal(out.Points[0].Price))
		assert.True(t, mustDecimal("900").Equal(out.Points[1].Price))
	})

	t.Run("statistics", func(t *testing.T) {
		resp := env.api.Get(base + "/sources/" + cheap.ID + "/statistics")
		require.Equal(t, http.StatusOK, resp.Code)

		out := decodeJSON[struct {
			Statistics domain.Statistics `json:"statistics"`
		}](t, resp)
		assert.Equal(t, 2, out.Statistics.SampleCount)
		assert.True(t, mustDecimal("900").Equal(out.Statistics.Current))
		assert.True(t, mustDecimal("1000").Equal(out.Statistics.Previous))
		assert.Equal(t, domain.TrendDown, out.Statistics.Trend)
	})

	t.Run("recommendation names the best source", func(t *testing.T) {
		resp := env.api.Get(base + "/recommendation")
		require.Equal(t, http.StatusOK, resp.Code)

		out := decodeJSON[struct {
			Recommendation domain.Recommendation `json:"recommendation"`
		}](t, resp)
		assert.Equal(t, cheap.ID, out.Recommendation.BestSourceID)
		assert.NotEmpty(t, out.Recommendation.Decision)
	})

	t.Run("unknown ids", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, env.api.Get("/api/v1/items/nope/comparison").Code)
		assert.Equal(t, http.StatusNotFound, env.api.Get(base+"/history?source=nope").Code)
		assert.Equal(t, http.StatusNotFound, env.api.Get(base+"/sources/nope/statistics").Code)
	})
}
