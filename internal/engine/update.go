package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/donaldgifford/buying-list/internal/metrics"
	"github.com/donaldgifford/buying-list/internal/store"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// UpdateSourcePrice fetches one source's page, extracts its price and, when
// the price changed, commits it: current price, ledger point, fired alerts.
// Extraction problems are reported in the result, not as errors; the error
// is reserved for unknown ids and storage failures.
func (eng *Engine) UpdateSourcePrice(ctx context.Context, itemID, sourceID string) (*domain.ExtractionResult, error) {
	ctx, span := eng.tracer.Start(ctx, "engine.UpdateSourcePrice")
	defer span.End()
	span.SetAttributes(
		attribute.String("item.id", itemID),
		attribute.String("source.id", sourceID),
	)

	it, err := eng.getItem(ctx, itemID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	src := it.Source(sourceID)
	if src == nil {
		err := fmt.Errorf("%w: %s", ErrSourceNotFound, sourceID)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	res := eng.extractSource(ctx, src)
	res.SourceID = sourceID
	if !res.Success {
		span.SetAttributes(attribute.String("extraction.error", res.Error))
		eng.log.WarnContext(ctx, "price extraction failed",
			"item", itemID,
			"source", sourceID,
			"error", res.Error,
		)
		return res, nil
	}

	span.SetAttributes(
		attribute.String("extraction.stage", string(res.Stage)),
		attribute.String("extraction.price", res.Price.String()),
	)

	changed, err := eng.commitPrice(ctx, itemID, sourceID, *res.Price)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	res.Changed = changed
	return res, nil
}

// extractSource fetches the source page and runs the pipeline over it.
func (eng *Engine) extractSource(ctx context.Context, src *domain.Source) *domain.ExtractionResult {
	resp, err := eng.fetcher.Fetch(ctx, src.URL, eng.headers())
	if err != nil {
		metrics.ExtractionFailuresTotal.WithLabelValues("fetch").Inc()
		return &domain.ExtractionResult{Error: fmt.Sprintf("fetch failed: %v", err)}
	}
	if resp.Status != http.StatusOK {
		metrics.ExtractionFailuresTotal.WithLabelValues("http").Inc()
		text := http.StatusText(resp.Status)
		if text == "" {
			text = "Unable to fetch page"
		}
		return &domain.ExtractionResult{Error: fmt.Sprintf("HTTP %d: %s", resp.Status, text)}
	}
	if len(resp.Body) < eng.minBodyBytes {
		metrics.ExtractionFailuresTotal.WithLabelValues("empty").Inc()
		return &domain.ExtractionResult{Error: "page content is empty or too short"}
	}

	_, span := eng.tracer.Start(ctx, "extract.Pipeline")
	start := time.Now()
	res := eng.pipeline.Extract(resp.Body, src.Selectors)
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	span.End()

	if !res.Success {
		metrics.ExtractionFailuresTotal.WithLabelValues("no_price").Inc()
		return res
	}
	metrics.ExtractionsTotal.WithLabelValues(string(res.Stage)).Inc()
	metrics.ExtractionConfidence.Observe(float64(res.Confidence))
	return res
}

// commitPrice applies a resolved price under the item lock. It re-reads the
// item so concurrent commits for other sources of the same item are kept.
// An unchanged price writes nothing.
func (eng *Engine) commitPrice(ctx context.Context, itemID, sourceID string, price decimal.Decimal) (bool, error) {
	unlock := eng.locks.lock(itemID)
	it, src, fired, changed, err := eng.applyPrice(ctx, itemID, sourceID, price)
	unlock()
	if err != nil || !changed {
		return false, err
	}

	metrics.PriceChangesTotal.Inc()
	eng.log.InfoContext(ctx, "price updated",
		"item", itemID,
		"source", sourceID,
		"price", price.String(),
		"alerts_fired", len(fired),
	)

	eng.notifyFired(ctx, it, src, fired)
	return true, nil
}

func (eng *Engine) applyPrice(
	ctx context.Context,
	itemID, sourceID string,
	price decimal.Decimal,
) (*domain.Item, *domain.Source, []domain.Alert, bool, error) {
	it, err := eng.getItem(ctx, itemID)
	if err != nil {
		return nil, nil, nil, false, err
	}
	src := it.Source(sourceID)
	if src == nil {
		return nil, nil, nil, false, fmt.Errorf("%w: %s", ErrSourceNotFound, sourceID)
	}
	if src.CurrentPrice != nil && src.CurrentPrice.Equal(price) {
		return it, src, nil, false, nil
	}

	now := eng.now()
	p := price
	ts := now
	src.CurrentPrice = &p
	src.LastUpdated = &ts

	history := AppendPricePoint(it.PriceHistory, domain.PricePoint{
		Timestamp: now,
		Price:     price,
		SourceID:  sourceID,
	}, eng.historyLimit)

	alerts, fired := EvaluateAlerts(it.Alerts, sourceID, price, now)

	sources := it.Sources
	patch := &store.ItemPatch{
		Sources:      &sources,
		PriceHistory: &history,
		Alerts:       &alerts,
	}
	updated, err := eng.store.UpdateItem(ctx, itemID, patch)
	if err != nil {
		return nil, nil, nil, false, fmt.Errorf("saving price: %w", err)
	}
	return updated, updated.Source(sourceID), fired, true, nil
}

// UpdateAllPrices refreshes every active source of every item concurrently
// and waits for all of them. A failing source never stops the others; only
// a failure to list items is returned as an error.
func (eng *Engine) UpdateAllPrices(ctx context.Context) (*domain.BatchSummary, error) {
	ctx, span := eng.tracer.Start(ctx, "engine.UpdateAllPrices")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.UpdateAllDuration.Observe(time.Since(start).Seconds())
	}()

	items, _, err := eng.store.ListItems(ctx, &store.ItemQuery{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("listing items: %w", err)
	}

	var (
		mu      sync.Mutex
		summary domain.BatchSummary
		g       errgroup.Group
	)
	g.SetLimit(eng.concurrency)

	for i := range items {
		it := &items[i]
		for j := range it.Sources {
			if !it.Sources[j].Active {
				continue
			}
			itemID, sourceID := it.ID, it.Sources[j].ID
			summary.Total++

			g.Go(func() error {
				res, err := eng.UpdateSourcePrice(ctx, itemID, sourceID)
				ok := err == nil && res.Success

				mu.Lock()
				defer mu.Unlock()
				if !ok {
					summary.Failed++
					metrics.UpdateAllSourcesTotal.WithLabelValues("failure").Inc()
					if err != nil && !errors.Is(err, context.Canceled) {
						eng.log.ErrorContext(ctx, "source update failed", "item", itemID, "source", sourceID, "error", err)
					}
					return nil
				}
				summary.Succeeded++
				if res.Changed {
					summary.Changed++
				}
				metrics.UpdateAllSourcesTotal.WithLabelValues("success").Inc()
				return nil
			})
		}
	}
	_ = g.Wait()

	summary.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("batch.total", summary.Total),
		attribute.Int("batch.failed", summary.Failed),
	)
	eng.log.InfoContext(ctx, "price update complete",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"changed", summary.Changed,
		"duration", summary.Duration,
	)
	return &summary, nil
}
