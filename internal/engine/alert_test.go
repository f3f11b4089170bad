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

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEvaluateAlerts(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		alert     domain.Alert
		price     string
		wantFired bool
	}{
		{name: "below fires", alert: domain.Alert{Condition: domain.ConditionBelow, TargetPrice: dec("100")}, price: "99.99", wantFired: true},
		{name: "below at target does not fire", alert: domain.Alert{Condition: domain.ConditionBelow, TargetPrice: dec("100")}, price: "100"},
		{name: "above fires", alert: domain.Alert{Condition: domain.ConditionAbove, TargetPrice: dec("100")}, price: "100.01", wantFired: true},
		{name: "above below target", alert: domain.Alert{Condition: domain.ConditionAbove, TargetPrice: dec("100")}, price: "50"},
		{name: "equal within tolerance", alert: domain.Alert{Condition: domain.ConditionEqual, TargetPrice: dec("100")}, price: "100.005", wantFired: true},
		{name: "equal exact", alert: domain.Alert{Condition: domain.ConditionEqual, TargetPrice: dec("100")}, price: "100", wantFired: true},
		{name: "equal outside tolerance", alert: domain.Alert{Condition: domain.ConditionEqual, TargetPrice: dec("100")}, price: "100.01"},
		{name: "unknown condition", alert: domain.Alert{Condition: "between", TargetPrice: dec("100")}, price: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a := tt.alert
			a.ID = "a1"
			a.SourceID = "s1"
			a.Active = true
			alerts := []domain.Alert{a}

			updated, fired := EvaluateAlerts(alerts, "s1", dec(tt.price), now)
			require.Len(t, updated, 1)
			assert.True(t, alerts[0].Active, "input must not be modified")

			if !tt.wantFired {
				assert.Empty(t, fired)
				assert.True(t, updated[0].Active)
				assert.Nil(t, updated[0].TriggeredAt)
				return
			}
			require.Len(t, fired, 1)
			assert.False(t, updated[0].Active)
			require.NotNil(t, updated[0].TriggeredAt)
			assert.Equal(t, now, *updated[0].TriggeredAt)
		})
	}
}

func TestEvaluateAlerts_OneShot(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	alerts := []domain.Alert{{
		ID: "a1", SourceID: "s1", Active: true,
		Condition: domain.ConditionBelow, TargetPrice: dec("100"),
	}}

	alerts, fired := EvaluateAlerts(alerts, "s1", dec("110"), now)
	assert.Empty(t, fired)

	alerts, fired = EvaluateAlerts(alerts, "s1", dec("95"), now)
	assert.Len(t, fired, 1)
	assert.False(t, alerts[0].Active)

	_, fired = EvaluateAlerts(alerts, "s1", dec("90"), now)
	assert.Empty(t, fired)
}

func TestEvaluateAlerts_OtherSourcesUntouched(t *testing.T) {
	t.Parallel()

	alerts := []domain.Alert{
		{ID: "a1", SourceID: "s1", Active: true, Condition: domain.ConditionBelow, TargetPrice: dec("100")},
		{ID: "a2", SourceID: "s2", Active: true, Condition: domain.ConditionBelow, TargetPrice: dec("100")},
		{ID: "a3", SourceID: "s1", Active: false, Condition: domain.ConditionBelow, TargetPrice: dec("100")},
	}

	updated, fired := EvaluateAlerts(alerts, "s1", dec("50"), time.Now())
	require.Len(t, fired, 1)
	assert.Equal(t, "a1", fired[0].ID)
	assert.True(t, updated[1].Active)
	assert.False(t, updated[2].Active)
	assert.Nil(t, updated[2].TriggeredAt)
}

func TestAlertCRUD(t *testing.T) {
	t.Parallel()

	s := newFileStore(t)
	it := seedItem(t, s, "sofa", "https://shop.example/a")
	eng := newTestEngine(t, s, newPages(), nil)
	ctx := context.Background()

	_, err := eng.AddAlert(ctx, it.ID, AlertInput{SourceID: "missing", TargetPrice: dec("10"), Condition: domain.ConditionBelow})
	assert.ErrorIs(t, err, ErrSourceNotFound)

	_, err = eng.AddAlert(ctx, it.ID, AlertInput{SourceID: "sofa-src-a", TargetPrice: dec("10"), Condition: "sometimes"})
	assert.ErrorIs(t, err, ErrInvalidAlert)

	_, err = eng.AddAlert(ctx, it.ID, AlertInput{SourceID: "sofa-src-a", TargetPrice: dec("0"), Condition: domain.ConditionBelow})
	assert.ErrorIs(t, err, ErrInvalidAlert)

	_, err = eng.AddAlert(ctx, "missing", AlertInput{SourceID: "sofa-src-a", TargetPrice: dec("10"), Condition: domain.ConditionBelow})
	assert.ErrorIs(t, err, ErrItemNotFound)

	a, err := eng.AddAlert(ctx, it.ID, AlertInput{SourceID: "sofa-src-a", TargetPrice: dec("10"), Condition: domain.ConditionBelow})
	require.NoError(t, err)
	assert.True(t, a.Active)
	assert.NotEmpty(t, a.ID)

	toggled, err := eng.ToggleAlert(ctx, it.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	toggled, err = eng.ToggleAlert(ctx, it.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Active)

	_, err = eng.ToggleAlert(ctx, it.ID, "missing")
	assert.ErrorIs(t, err, ErrAlertNotFound)

	require.NoError(t, eng.RemoveAlert(ctx, it.ID, a.ID))
	assert.ErrorIs(t, eng.RemoveAlert(ctx, it.ID, a.ID), ErrAlertNotFound)

	got, err := s.GetItem(ctx, it.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Alerts)
}

func TestToggleAlert_RearmClearsTrigger(t *testing.T) {
	t.Parallel()

	s := newFileStore(t)
	it := seedItem(t, s, "sofa", "https://shop.example/a")
	eng := newTestEngine(t, s, newPages(), nil)
	ctx := context.Background()

	fired := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	alerts := []domain.Alert{{
		ID: "a1", SourceID: "sofa-src-a", Active: false, TriggeredAt: &fired,
		Condition: domain.ConditionBelow, TargetPrice: dec("100"),
	}}
	_, err := s.UpdateItem(ctx, it.ID, &store.ItemPatch{Alerts: &alerts})
	require.NoError(t, err)

	got, err := eng.ToggleAlert(ctx, it.ID, "a1")
	require.NoError(t, err)
	assert.True(t, got.Active)
	assert.Nil(t, got.TriggeredAt)

	updated, firedNow := EvaluateAlerts([]domain.Alert{*got}, "sofa-src-a", dec("90"), fired.Add(time.Hour))
	assert.Len(t, firedNow, 1)
	assert.False(t, updated[0].Active)
}
