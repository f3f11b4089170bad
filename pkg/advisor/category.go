package advisor

import (
	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// CategoryStatistics summarizes the items of one category using each item's
// lowest current price. Items with no price count toward TotalItems only.
func CategoryStatistics(items []domain.Item, categoryID string) domain.CategoryStats {
	stats := domain.CategoryStats{CategoryID: categoryID}

	for i := range items {
		if items[i].CategoryID != categoryID {
			continue
		}
		stats.TotalItems++

		p := items[i].LowestPrice()
		if p == nil {
			continue
		}
		if stats.PricedItems == 0 {
			stats.HighestPrice, stats.LowestPrice = *p, *p
		}
		stats.PricedItems++
		stats.TotalValue = stats.TotalValue.Add(*p)
		stats.HighestPrice = decimal.Max(stats.HighestPrice, *p)
		stats.LowestPrice = decimal.Min(stats.LowestPrice, *p)
	}

	if stats.PricedItems > 0 {
		stats.AveragePrice = stats.TotalValue.Div(decimal.NewFromInt(int64(stats.PricedItems))).Round(2)
	}
	return stats
}

// Summarize builds the list overview.
func Summarize(items []domain.Item, categories int) domain.ListSummary {
	sum := domain.ListSummary{
		TotalItems: len(items),
		ByStatus:   make(map[domain.Status]int),
		Categories: categories,
	}

	for i := range items {
		it := &items[i]
		sum.ByStatus[it.Status]++
		if p := it.LowestPrice(); p != nil {
			sum.EstimatedValue = sum.EstimatedValue.Add(*p)
		}
		for _, s := range it.Sources {
			sum.Sources++
			if s.Active {
				sum.ActiveSources++
			}
		}
		for _, a := range it.Alerts {
			sum.Alerts++
			if a.Active {
				sum.ActiveAlerts++
			}
		}
	}
	return sum
}
