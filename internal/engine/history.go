package engine

import domain "github.com/donaldgifford/buying-list/pkg/types"

// AppendPricePoint appends p to history and, when the point's source then
// holds more than limit points, drops that source's oldest points. Points
// of other sources keep their positions. history is not modified.
func AppendPricePoint(history []domain.PricePoint, p domain.PricePoint, limit int) []domain.PricePoint {
	out := make([]domain.PricePoint, 0, len(history)+1)
	out = append(out, history...)
	out = append(out, p)

	if limit <= 0 {
		return out
	}

	count := 0
	for i := range out {
		if out[i].SourceID == p.SourceID {
			count++
		}
	}
	excess := count - limit
	if excess <= 0 {
		return out
	}

	// History is appended in time order, so the first points of the source
	// are the oldest.
	kept := out[:0]
	for _, pt := range out {
		if excess > 0 && pt.SourceID == p.SourceID {
			excess--
			continue
		}
		kept = append(kept, pt)
	}
	return kept
}

// removeSourceHistory drops every point recorded for sourceID.
func removeSourceHistory(history []domain.PricePoint, sourceID string) []domain.PricePoint {
	out := make([]domain.PricePoint, 0, len(history))
	for _, pt := range history {
		if pt.SourceID != sourceID {
			out = append(out, pt)
		}
	}
	return out
}
