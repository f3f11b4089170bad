package advisor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

func price(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestCompare(t *testing.T) {
	t.Parallel()

	it := &domain.Item{
		ID: "item-1",
		Sources: []domain.Source{
			{ID: "a", Name: "A", Active: true, CurrentPrice: price("120")},
			{ID: "b", Name: "B", Active: true},
			{ID: "c", Name: "C", Active: false, CurrentPrice: price("10")},
			{ID: "d", Name: "D", Active: true, CurrentPrice: price("95.5")},
			{ID: "e", Name: "E", Active: true, CurrentPrice: price("120")},
		},
	}

	c := Compare(it)
	require.NotNil(t, c)
	require.Len(t, c.Entries, 3)
	assert.Equal(t, "d", c.Entries[0].SourceID)
	assert.Equal(t, "a", c.Entries[1].SourceID, "equal prices keep list order")
	assert.Equal(t, "e", c.Entries[2].SourceID)
	assert.True(t, decimal.RequireFromString("95.5").Equal(c.BestPrice))
	assert.True(t, decimal.RequireFromString("24.5").Equal(c.Savings))
	assert.Equal(t, "D", c.Best().SourceName)
}

func TestCompare_NoPricedSources(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Compare(&domain.Item{Sources: []domain.Source{{ID: "a", Active: true}}}))
	assert.Nil(t, Compare(nil))
}

func TestRecommend(t *testing.T) {
	t.Parallel()

	comparison := &domain.ComparisonSnapshot{
		Entries: []domain.ComparisonEntry{{SourceID: "s1", SourceName: "Store"}},
	}

	stats := func(current, lowest, average string, trend domain.Trend) *domain.Statistics {
		return &domain.Statistics{
			Current: decimal.RequireFromString(current),
			Lowest:  decimal.RequireFromString(lowest),
			Average: decimal.RequireFromString(average),
			Trend:   trend,
		}
	}

	tests := []struct {
		name           string
		stats          *domain.Statistics
		wantDecision   domain.Decision
		wantConfidence int
	}{
		{
			name:           "near lowest and stable buys",
			stats:          stats("100", "98", "120", domain.TrendStable),
			wantDecision:   domain.DecisionBuy,
			wantConfidence: 85,
		},
		{
			name:           "rising price waits",
			stats:          stats("140", "90", "100", domain.TrendUp),
			wantDecision:   domain.DecisionWait,
			wantConfidence: 70,
		},
		{
			name:           "near lowest but rising waits",
			stats:          stats("100", "99", "100", domain.TrendUp),
			wantDecision:   domain.DecisionWait,
			wantConfidence: 70,
		},
		{
			name:           "well below average and falling buys",
			stats:          stats("85", "70", "100", domain.TrendDown),
			wantDecision:   domain.DecisionBuy,
			wantConfidence: 75,
		},
		{
			name:           "far above average waits",
			stats:          stats("130", "80", "110", domain.TrendStable),
			wantDecision:   domain.DecisionWait,
			wantConfidence: 70,
		},
		{
			name:           "middle of the range is uncertain",
			stats:          stats("100", "80", "98", domain.TrendStable),
			wantDecision:   domain.DecisionUncertain,
			wantConfidence: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := Recommend(comparison, tt.stats)
			require.NotNil(t, rec)
			assert.Equal(t, tt.wantDecision, rec.Decision)
			assert.Equal(t, tt.wantConfidence, rec.Confidence)
			assert.NotEmpty(t, rec.Reason)
			assert.Equal(t, "s1", rec.BestSourceID)
			assert.Equal(t, "Store", rec.BestSourceName)
		})
	}
}

func TestRecommend_InsufficientData(t *testing.T) {
	t.Parallel()

	comparison := &domain.ComparisonSnapshot{
		Entries: []domain.ComparisonEntry{{SourceID: "s1", SourceName: "Store"}},
	}

	rec := Recommend(comparison, nil)
	require.NotNil(t, rec)
	assert.Equal(t, domain.DecisionUncertain, rec.Decision)
	assert.Zero(t, rec.Confidence)
	assert.Equal(t, InsufficientData, rec.Reason)

	assert.Nil(t, Recommend(nil, nil))
}
