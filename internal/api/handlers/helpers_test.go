package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/buying-list/internal/api/handlers"
	"github.com/donaldgifford/buying-list/internal/engine"
	"github.com/donaldgifford/buying-list/internal/fetch"
	"github.com/donaldgifford/buying-list/internal/store"
	"github.com/donaldgifford/buying-list/pkg/extract"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fetchFunc func(ctx context.Context, url string, headers http.Header) (*fetch.Response, error)

func (f fetchFunc) Fetch(ctx context.Context, url string, headers http.Header) (*fetch.Response, error) {
	return f(ctx, url, headers)
}

const pricePage = `<html><body><h1>Headphones</h1><div class="price">1,299.00 ر.س</div></body></html>`

// staticPages serves pricePage for every URL.
var staticPages = fetchFunc(func(_ context.Context, _ string, _ http.Header) (*fetch.Response, error) {
	return &fetch.Response{Status: http.StatusOK, Body: pricePage}, nil
})

type testEnv struct {
	store  *store.FileStore
	engine *engine.Engine
	api    humatest.TestAPI
}

// newTestEnv wires every API route over a FileStore in a temp dir.
func newTestEnv(t *testing.T, f fetch.Fetcher) *testEnv {
	t.Helper()

	s, err := store.NewFileStore(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)

	pipeline := extract.NewPipeline(extract.WithLogger(quietLogger()))
	eng := engine.NewEngine(s, f, nil,
		engine.WithLogger(quietLogger()),
		engine.WithPipeline(pipeline),
	)

	_, api := humatest.New(t)
	handlers.RegisterItemRoutes(api, handlers.NewItemsHandler(s, eng))
	handlers.RegisterSourceRoutes(api, handlers.NewSourcesHandler(eng))
	handlers.RegisterAlertRoutes(api, handlers.NewAlertsHandler(eng))
	handlers.RegisterInsightRoutes(api, handlers.NewInsightsHandler(eng))
	handlers.RegisterCategoryRoutes(api, handlers.NewCategoriesHandler(s))
	handlers.RegisterSettingsRoutes(api, handlers.NewSettingsHandler(s, nil))
	handlers.RegisterTransferRoutes(api, handlers.NewTransferHandler(s, eng, nil))
	handlers.RegisterExtractRoutes(api, handlers.NewExtractHandler(pipeline, f))

	return &testEnv{store: s, engine: eng, api: api}
}

// createItem adds an item through the store and returns it.
func (env *testEnv) createItem(t *testing.T, name string) domain.Item {
	t.Helper()

	it := domain.Item{Name: name}
	require.NoError(t, env.store.CreateItem(context.Background(), &it))
	return it
}

// addSource attaches a priced-by-selector source through the engine.
func (env *testEnv) addSource(t *testing.T, itemID, name string) domain.Source {
	t.Helper()

	src, err := env.engine.AddSource(context.Background(), itemID, engine.SourceInput{
		Name:      name,
		URL:       "https://shop.example/" + name,
		Selectors: []string{".price"},
	})
	require.NoError(t, err)
	return *src
}

type itemList struct {
	Items  []domain.Item `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decodeJSON[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), resp.Body.String())
	return v
}
