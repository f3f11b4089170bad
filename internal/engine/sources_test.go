package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/buying-list/internal/store"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

func TestAddSource(t *testing.T) {
	t.Parallel()

	s := newFileStore(t)
	it := seedItem(t, s, "bike")
	eng := newTestEngine(t, s, newPages(), nil)
	ctx := context.Background()

	src, err := eng.AddSource(ctx, it.ID, SourceInput{
		Name:      " Noon ",
		URL:       "https://www.noon.com/bike",
		Selectors: []string{" .price ", "", "#price"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Noon", src.Name)
	assert.Equal(t, []string{".price", "#price"}, src.Selectors)
	assert.Equal(t, domain.DefaultSettings().DefaultCurrency, src.Currency)
	assert.True(t, src.Active)

	got, err := s.GetItem(ctx, it.ID)
	require.NoError(t, err)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, src.ID, got.Sources[0].ID)
}

func TestAddSource_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      SourceInput
		wantErr string
	}{
		{name: "missing name", in: SourceInput{URL: "https://a.example", Selectors: []string{".p"}}, wantErr: "name is required"},
		{name: "relative url", in: SourceInput{Name: "x", URL: "/product", Selectors: []string{".p"}}, wantErr: "absolute http(s) URL"},
		{name: "ftp url", in: SourceInput{Name: "x", URL: "ftp://a.example/p", Selectors: []string{".p"}}, wantErr: "absolute http(s) URL"},
		{name: "no selectors", in: SourceInput{Name: "x", URL: "https://a.example", Selectors: []string{"  "}}, wantErr: "at least one selector"},
	}

	s := newFileStore(t)
	it := seedItem(t, s, "scooter")
	eng := newTestEngine(t, s, newPages(), nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := eng.AddSource(context.Background(), it.ID, tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSource)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestUpdateSource(t *testing.T) {
	t.Parallel()

	s := newFileStore(t)
	it := seedItem(t, s, "oven", "https://a.example/o")
	eng := newTestEngine(t, s, newPages(), nil)
	ctx := context.Background()

	inactive := false
	sel := []string{".new-price"}
	src, err := eng.UpdateSource(ctx, it.ID, "oven-src-a", SourcePatch{Active: &inactive, Selectors: &sel})
	require.NoError(t, err)
	assert.False(t, src.Active)
	assert.Equal(t, sel, src.Selectors)
	assert.Equal(t, "https://a.example/o", src.URL)

	bad := "not a url"
	_, err = eng.UpdateSource(ctx, it.ID, "oven-src-a", SourcePatch{URL: &bad})
	assert.ErrorIs(t, err, ErrInvalidSource)

	_, err = eng.UpdateSource(ctx, it.ID, "missing", SourcePatch{})
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestRemoveSource_DropsHistoryAndAlerts(t *testing.T) {
	t.Parallel()

	s := newFileStore(t)
	p := newPages()
	p.set("https://a.example/x", "10.00")
	p.set("https://b.example/x", "20.00")
	it := seedItem(t, s, "stool", "https://a.example/x", "https://b.example/x")
	eng := newTestEngine(t, s, p, nil)
	ctx := context.Background()

	for _, id := range []string{"stool-src-a", "stool-src-b"} {
		_, err := eng.UpdateSourcePrice(ctx, it.ID, id)
		require.NoError(t, err)
		_, err = eng.AddAlert(ctx, it.ID, AlertInput{SourceID: id, TargetPrice: decimal.NewFromInt(1), Condition: domain.ConditionBelow})
		require.NoError(t, err)
	}

	require.NoError(t, eng.RemoveSource(ctx, it.ID, "stool-src-a"))
	assert.ErrorIs(t, eng.RemoveSource(ctx, it.ID, "stool-src-a"), ErrSourceNotFound)

	got, err := s.GetItem(ctx, it.ID)
	require.NoError(t, err)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "stool-src-b", got.Sources[0].ID)
	require.Len(t, got.PriceHistory, 1)
	assert.Equal(t, "stool-src-b", got.PriceHistory[0].SourceID)
	require.Len(t, got.Alerts, 1)
	assert.Equal(t, "stool-src-b", got.Alerts[0].SourceID)
}

func TestSetManualPrice(t *testing.T) {
	t.Parallel()

	s := newFileStore(t)
	it := seedItem(t, s, "vase", "https://a.example/v")
	n := &mockNotifier{}
	eng := newTestEngine(t, s, newPages(), n)
	ctx := context.Background()

	_, err := eng.AddAlert(ctx, it.ID, AlertInput{SourceID: "vase-src-a", TargetPrice: decimal.NewFromInt(100), Condition: domain.ConditionBelow})
	require.NoError(t, err)

	for range 2 {
		src, err := eng.SetManualPrice(ctx, it.ID, "vase-src-a", decimal.NewFromInt(42))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(42).Equal(*src.CurrentPrice))
	}

	got, err := s.GetItem(ctx, it.ID)
	require.NoError(t, err)
	assert.Len(t, got.PriceHistory, 2, "manual entries always append")
	assert.True(t, got.Alerts[0].Active, "manual entries do not evaluate alerts")
	n.AssertNotCalled(t, "SendAlert")

	for _, bad := range []string{"0", "0.001", "1000000.01", "-3"} {
		_, err := eng.SetManualPrice(ctx, it.ID, "vase-src-a", decimal.RequireFromString(bad))
		assert.ErrorIs(t, err, ErrInvalidPrice, bad)
	}

	_, err = eng.SetManualPrice(ctx, it.ID, "missing", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestUpdateItem_IgnoresPriceFields(t *testing.T) {
	t.Parallel()

	s := newFileStore(t)
	it := seedItem(t, s, "clock", "https://a.example/c")
	eng := newTestEngine(t, s, newPages(), nil)
	ctx := context.Background()

	name := "wall clock"
	empty := []domain.Source{}
	got, err := eng.UpdateItem(ctx, it.ID, &store.ItemPatch{Name: &name, Sources: &empty})
	require.NoError(t, err)
	assert.Equal(t, "wall clock", got.Name)
	assert.Len(t, got.Sources, 1)

	_, err = eng.UpdateItem(ctx, "missing", &store.ItemPatch{Name: &name})
	assert.ErrorIs(t, err, ErrItemNotFound)

	require.NoError(t, eng.DeleteItem(ctx, it.ID))
	assert.ErrorIs(t, eng.DeleteItem(ctx, it.ID), ErrItemNotFound)
}

func TestImport_WaitsForItemCommits(t *testing.T) {
	t.Parallel()

	s := newFileStore(t)
	it := seedItem(t, s, "desk", "https://shop.example/a")
	eng := newTestEngine(t, s, newPages(), nil)
	ctx := context.Background()

	release := eng.locks.lock(it.ID)
	done := make(chan error, 1)
	go func() {
		done <- eng.Import(ctx, &store.Document{Items: []domain.Item{{ID: "chair", Name: "Chair"}}})
	}()

	select {
	case <-done:
		t.Fatal("import ran while an item commit held its lock")
	case <-time.After(20 * time.Millisecond):
	}

	release()
	require.NoError(t, <-done)

	_, err := eng.UpdateSourcePrice(ctx, it.ID, "desk-src-a")
	require.ErrorIs(t, err, ErrItemNotFound)

	got, err := s.GetItem(ctx, "chair")
	require.NoError(t, err)
	assert.Equal(t, "Chair", got.Name)
}
