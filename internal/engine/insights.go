package engine

import (
	"context"
	"fmt"

	"github.com/donaldgifford/buying-list/pkg/advisor"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// Comparison ranks the item's priced active sources. It returns nil without
// error when no source has a price yet.
func (eng *Engine) Comparison(ctx context.Context, itemID string) (*domain.ComparisonSnapshot, error) {
	it, err := eng.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return advisor.Compare(it), nil
}

// History returns the item's ledger points within the last days days, oldest
// first. An empty sourceID returns points of every source; days <= 0 uses
// the configured window.
func (eng *Engine) History(ctx context.Context, itemID, sourceID string, days int) ([]domain.PricePoint, error) {
	it, err := eng.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if sourceID != "" && it.Source(sourceID) == nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, sourceID)
	}
	if days <= 0 {
		days = eng.windowDays
	}
	return advisor.Window(it.PriceHistory, sourceID, eng.now(), days), nil
}

// Statistics summarizes one source's history over the configured window.
// It returns nil without error when the window is empty.
func (eng *Engine) Statistics(ctx context.Context, itemID, sourceID string) (*domain.Statistics, error) {
	it, err := eng.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.Source(sourceID) == nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, sourceID)
	}
	return advisor.ComputeStatistics(it.PriceHistory, sourceID, eng.now(), eng.windowDays), nil
}

// Recommendation advises on buying the item from its best-priced source.
// It returns nil without error when no source has a price.
func (eng *Engine) Recommendation(ctx context.Context, itemID string) (*domain.Recommendation, error) {
	it, err := eng.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	cmp := advisor.Compare(it)
	best := cmp.Best()
	if best == nil {
		return nil, nil //nolint:nilnil // no priced source yet
	}
	stats := advisor.ComputeStatistics(it.PriceHistory, best.SourceID, eng.now(), eng.windowDays)
	return advisor.Recommend(cmp, stats), nil
}
