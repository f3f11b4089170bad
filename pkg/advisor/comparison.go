package advisor

import (
	"slices"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// Compare ranks the item's active sources that carry a current price by
// ascending price. Sources with equal prices keep their list order. It
// returns nil when no source qualifies.
func Compare(it *domain.Item) *domain.ComparisonSnapshot {
	if it == nil {
		return nil
	}

	var entries []domain.ComparisonEntry
	for _, s := range it.Sources {
		if !s.Active || s.CurrentPrice == nil {
			continue
		}
		entries = append(entries, domain.ComparisonEntry{
			SourceID:    s.ID,
			SourceName:  s.Name,
			URL:         s.URL,
			Price:       *s.CurrentPrice,
			Currency:    s.Currency,
			LastUpdated: s.LastUpdated,
		})
	}
	if len(entries) == 0 {
		return nil
	}

	slices.SortStableFunc(entries, func(a, b domain.ComparisonEntry) int {
		return a.Price.Cmp(b.Price)
	})

	best := entries[0].Price
	worst := entries[len(entries)-1].Price
	return &domain.ComparisonSnapshot{
		ItemID:     it.ID,
		Entries:    entries,
		BestPrice:  best,
		WorstPrice: worst,
		Savings:    worst.Sub(best),
	}
}
