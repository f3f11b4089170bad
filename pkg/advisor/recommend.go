package advisor

import (
	"fmt"

	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// Rule thresholds, in percent.
var (
	nearLowestPct   = decimal.NewFromInt(5)
	belowAveragePct = decimal.NewFromInt(-10)
	aboveAveragePct = decimal.NewFromInt(15)
)

// Confidence assigned by each rule.
const (
	confidenceNearLowest   = 85
	confidenceBelowAverage = 75
	confidenceWait         = 70
	confidenceUndecided    = 50
)

// InsufficientData is the reason given when the best source has no history
// in the statistics window.
const InsufficientData = "insufficient data"

// Recommend decides whether to buy now. stats must describe the best-priced
// source of comparison. It returns nil when comparison is nil.
func Recommend(comparison *domain.ComparisonSnapshot, stats *domain.Statistics) *domain.Recommendation {
	best := comparison.Best()
	if best == nil {
		return nil
	}

	rec := &domain.Recommendation{
		BestSourceID:   best.SourceID,
		BestSourceName: best.SourceName,
	}
	if stats == nil {
		rec.Decision = domain.DecisionUncertain
		rec.Reason = InsufficientData
		return rec
	}

	vsLowest := percentOver(stats.Current, stats.Lowest)
	vsAverage := percentOver(stats.Current, stats.Average)

	switch {
	case vsLowest.LessThanOrEqual(nearLowestPct) && stats.Trend != domain.TrendUp:
		rec.Decision = domain.DecisionBuy
		rec.Confidence = confidenceNearLowest
		rec.Reason = fmt.Sprintf("price is within %s%% of the lowest seen and the trend is %s",
			vsLowest.Round(2), stats.Trend)
	case vsAverage.LessThanOrEqual(belowAveragePct) && stats.Trend == domain.TrendDown:
		rec.Decision = domain.DecisionBuy
		rec.Confidence = confidenceBelowAverage
		rec.Reason = fmt.Sprintf("price is %s%% below average and falling", vsAverage.Neg().Round(2))
	case vsAverage.GreaterThanOrEqual(aboveAveragePct) || stats.Trend == domain.TrendUp:
		rec.Decision = domain.DecisionWait
		rec.Confidence = confidenceWait
		rec.Reason = fmt.Sprintf("price is %s%% against average with a %s trend", vsAverage.Round(2), stats.Trend)
	default:
		rec.Decision = domain.DecisionUncertain
		rec.Confidence = confidenceUndecided
		rec.Reason = "price is close to average, buy if needed"
	}
	return rec
}

// percentOver returns (v - ref) / ref * 100, or zero when ref is not positive.
func percentOver(v, ref decimal.Decimal) decimal.Decimal {
	if !ref.IsPositive() {
		return decimal.Zero
	}
	return v.Sub(ref).Div(ref).Mul(hundred)
}
