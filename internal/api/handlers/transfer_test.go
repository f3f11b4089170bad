package handlers_test

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/buying-list/internal/api/handlers"
	"github.com/donaldgifford/buying-list/internal/engine"
	"github.com/donaldgifford/buying-list/internal/store"
)

func TestTransferHandler_ExportImport(t *testing.T) {
	t.Parallel()

	src := newTestEnv(t, staticPages)
	it := src.createItem(t, "Headphones")
	s := src.addSource(t, it.ID, "shop")
	_, err := src.engine.SetManualPrice(context.Background(), it.ID, s.ID, mustDecimal("1299.50"))
	require.NoError(t, err)

	resp := src.api.Get("/api/v1/export")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "buying-list-export.json")
	exported := resp.Body.String()

	dst := newTestEnv(t, staticPages)
	resp = dst.api.Post("/api/v1/import", "Content-Type: application/json", strings.NewReader(exported))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	out := decodeJSON[struct {
		Status     string `json:"status"`
		Items      int    `json:"items"`
		Categories int    `json:"categories"`
	}](t, resp)
	assert.Equal(t, "imported", out.Status)
	assert.Equal(t, 1, out.Items)
	assert.Equal(t, 8, out.Categories)

	got, err := dst.store.GetItem(context.Background(), it.ID)
	require.NoError(t, err)
	require.Len(t, got.Sources, 1)
	assert.True(t, mustDecimal("1299.50").Equal(*got.Sources[0].CurrentPrice))
	assert.Len(t, got.PriceHistory, 1)
}

func TestTransferHandler_ImportPartialDocument(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, staticPages)
	env.createItem(t, "Replaced")

	resp := env.api.Post("/api/v1/import", "Content-Type: application/json",
		strings.NewReader(`{"items":[{"id":"a","name":"Only item"}]}`))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	doc, err := env.store.Export(context.Background())
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "Only item", doc.Items[0].Name)
	assert.Len(t, doc.Categories, 8)
	assert.Equal(t, store.DocumentVersion, doc.Version)
}

func TestTransferHandler_ImportInvalid(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, staticPages)

	resp := env.api.Post("/api/v1/import", "Content-Type: application/json", strings.NewReader(`{"items":`))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "invalid document")
}

func TestTransferHandler_ImportReschedules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		body           string
		wantReschedule time.Duration
	}{
		{
			name:           "new interval moves the scheduler",
			body:           `{"items":[],"settings":{"update_interval_ms":7200000}}`,
			wantReschedule: 2 * time.Hour,
		},
		{
			name: "missing settings keep the default interval",
			body: `{"items":[{"id":"a","name":"Lamp"}]}`,
		},
		{
			name: "same interval",
			body: `{"settings":{"update_interval_ms":3600000}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := store.NewFileStore(filepath.Join(t.TempDir(), "data.json"))
			require.NoError(t, err)
			eng := engine.NewEngine(s, staticPages, nil, engine.WithLogger(quietLogger()))

			r := &mockRescheduler{}
			if tt.wantReschedule > 0 {
				r.On("Reschedule", tt.wantReschedule).Return(nil).Once()
			}

			_, api := humatest.New(t)
			handlers.RegisterTransferRoutes(api, handlers.NewTransferHandler(s, eng, r))

			resp := api.Post("/api/v1/import", "Content-Type: application/json", strings.NewReader(tt.body))
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
			r.AssertExpectations(t)

			settings, err := s.GetSettings(context.Background())
			require.NoError(t, err)
			if tt.wantReschedule > 0 {
				assert.Equal(t, tt.wantReschedule, settings.UpdateInterval())
			}
		})
	}
}

func TestTransferHandler_ImportReplacesItemsThroughEngine(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, staticPages)
	old := env.createItem(t, "Old")
	src := env.addSource(t, old.ID, "shop")

	resp := env.api.Post("/api/v1/import", "Content-Type: application/json",
		strings.NewReader(`{"items":[{"id":"new","name":"New"}]}`))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// A commit after the import must not resurrect the replaced item.
	_, err := env.engine.SetManualPrice(context.Background(), old.ID, src.ID, mustDecimal("10"))
	require.ErrorIs(t, err, engine.ErrItemNotFound)

	_, err = env.store.GetItem(context.Background(), old.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
