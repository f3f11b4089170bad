package advisor

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func history(sourceID string, prices ...int64) []domain.PricePoint {
	out := make([]domain.PricePoint, 0, len(prices))
	start := now.Add(-time.Duration(len(prices)) * time.Hour)
	for i, p := range prices {
		out = append(out, domain.PricePoint{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Price:     decimal.NewFromInt(p),
			SourceID:  sourceID,
		})
	}
	return out
}

func TestComputeStatistics(t *testing.T) {
	t.Parallel()

	s := ComputeStatistics(history("s1", 100, 110, 90), "s1", now, 30)
	require.NotNil(t, s)

	assert.True(t, decimal.NewFromInt(90).Equal(s.Current))
	assert.True(t, decimal.NewFromInt(110).Equal(s.Previous))
	assert.True(t, decimal.NewFromInt(100).Equal(s.Average))
	assert.True(t, decimal.NewFromInt(90).Equal(s.Lowest))
	assert.True(t, decimal.NewFromInt(110).Equal(s.Highest))
	assert.True(t, decimal.RequireFromString("-18.18").Equal(s.ChangePercent), "got %s", s.ChangePercent)
	assert.Equal(t, domain.TrendDown, s.Trend)
	assert.Equal(t, 3, s.SampleCount)
	assert.Equal(t, 30, s.WindowDays)
}

func TestComputeStatistics_Trend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prices []int64
		want   domain.Trend
	}{
		{name: "single point is stable", prices: []int64{100}, want: domain.TrendStable},
		{name: "one percent is stable", prices: []int64{100, 101}, want: domain.TrendStable},
		{name: "over one percent is up", prices: []int64{100, 102}, want: domain.TrendUp},
		{name: "minus one percent is stable", prices: []int64{100, 99}, want: domain.TrendStable},
		{name: "under minus one percent is down", prices: []int64{100, 98}, want: domain.TrendDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := ComputeStatistics(history("s1", tt.prices...), "s1", now, 0)
			require.NotNil(t, s)
			assert.Equal(t, tt.want, s.Trend)
			assert.Equal(t, DefaultWindowDays, s.WindowDays)
		})
	}
}

func TestComputeStatistics_Window(t *testing.T) {
	t.Parallel()

	points := []domain.PricePoint{
		{Timestamp: now.AddDate(0, 0, -40), Price: decimal.NewFromInt(500), SourceID: "s1"},
		{Timestamp: now.AddDate(0, 0, -2), Price: decimal.NewFromInt(200), SourceID: "s2"},
		{Timestamp: now.AddDate(0, 0, -1), Price: decimal.NewFromInt(80), SourceID: "s1"},
		{Timestamp: now.AddDate(0, 0, -3), Price: decimal.NewFromInt(60), SourceID: "s1"},
	}

	s := ComputeStatistics(points, "s1", now, 30)
	require.NotNil(t, s)
	assert.Equal(t, 2, s.SampleCount)
	assert.True(t, decimal.NewFromInt(80).Equal(s.Current), "points are ordered by time")
	assert.True(t, decimal.NewFromInt(60).Equal(s.Previous))
	assert.True(t, decimal.NewFromInt(80).Equal(s.Highest), "old points fall outside the window")

	assert.Nil(t, ComputeStatistics(points, "s2", now, 1))
	assert.Nil(t, ComputeStatistics(points, "missing", now, 30))
	assert.Nil(t, ComputeStatistics(nil, "s1", now, 30))
}

func TestComputeStatistics_RoundsAverage(t *testing.T) {
	t.Parallel()

	s := ComputeStatistics(history("s1", 10, 10, 11), "s1", now, 30)
	require.NotNil(t, s)
	assert.True(t, decimal.RequireFromString("10.33").Equal(s.Average), "got %s", s.Average)
}

func TestWindow_AllSources(t *testing.T) {
	t.Parallel()

	points := append(history("a", 1, 2), history("b", 3)...)
	got := Window(points, "", now, 30)
	assert.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Timestamp.Before(got[i-1].Timestamp))
	}
}
