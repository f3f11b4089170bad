// Package advisor derives read-only insights from committed item state:
// per-source statistics, cross-source comparison and buy/wait advice.
package advisor

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// DefaultWindowDays is the trailing window used when none is given.
const DefaultWindowDays = 30

var (
	hundred        = decimal.NewFromInt(100)
	trendThreshold = decimal.NewFromInt(1)
)

// Window returns the points of sourceID within the trailing days window
// ending at now, in chronological order. An empty sourceID selects every
// source. days <= 0 uses DefaultWindowDays.
func Window(history []domain.PricePoint, sourceID string, now time.Time, days int) []domain.PricePoint {
	if days <= 0 {
		days = DefaultWindowDays
	}
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)

	out := make([]domain.PricePoint, 0, len(history))
	for _, p := range history {
		if sourceID != "" && p.SourceID != sourceID {
			continue
		}
		if p.Timestamp.Before(cutoff) {
			continue
		}
		out = append(out, p)
	}
	slices.SortStableFunc(out, func(a, b domain.PricePoint) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}

// ComputeStatistics aggregates sourceID's history over the trailing window.
// It returns nil when the window holds no points.
func ComputeStatistics(history []domain.PricePoint, sourceID string, now time.Time, days int) *domain.Statistics {
	if days <= 0 {
		days = DefaultWindowDays
	}
	points := Window(history, sourceID, now, days)
	if len(points) == 0 {
		return nil
	}

	current := points[len(points)-1].Price
	previous := current
	if len(points) > 1 {
		previous = points[len(points)-2].Price
	}

	sum := decimal.Zero
	lowest, highest := current, current
	for _, p := range points {
		sum = sum.Add(p.Price)
		lowest = decimal.Min(lowest, p.Price)
		highest = decimal.Max(highest, p.Price)
	}

	change := decimal.Zero
	if previous.IsPositive() {
		change = current.Sub(previous).Div(previous).Mul(hundred)
	}

	return &domain.Statistics{
		SourceID:      sourceID,
		WindowDays:    days,
		SampleCount:   len(points),
		Current:       current,
		Previous:      previous,
		Average:       sum.Div(decimal.NewFromInt(int64(len(points)))).Round(2),
		Lowest:        lowest,
		Highest:       highest,
		ChangePercent: change.Round(2),
		Trend:         trendOf(change),
	}
}

// trendOf classifies an unrounded percent change.
func trendOf(change decimal.Decimal) domain.Trend {
	switch {
	case change.GreaterThan(trendThreshold):
		return domain.TrendUp
	case change.LessThan(trendThreshold.Neg()):
		return domain.TrendDown
	default:
		return domain.TrendStable
	}
}
