package engine

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/donaldgifford/buying-list/internal/store"
	"github.com/donaldgifford/buying-list/pkg/extract"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

var minManualPrice = decimal.RequireFromString("0.01")

// SourceInput carries the fields of a new source.
type SourceInput struct {
	Name      string
	URL       string
	Selectors []string
	Currency  string
	Active    *bool
}

// SourcePatch carries the source fields to change. Nil fields are kept.
type SourcePatch struct {
	Name      *string
	URL       *string
	Selectors *[]string
	Currency  *string
	Active    *bool
}

// AddSource validates and attaches a new source to the item. An empty
// currency takes the default currency from settings.
func (eng *Engine) AddSource(ctx context.Context, itemID string, in SourceInput) (*domain.Source, error) {
	src := domain.Source{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		URL:       strings.TrimSpace(in.URL),
		Selectors: cleanSelectors(in.Selectors),
		Currency:  strings.TrimSpace(in.Currency),
		Active:    in.Active == nil || *in.Active,
	}
	if err := validateSource(&src); err != nil {
		return nil, err
	}
	if src.Currency == "" {
		settings, err := eng.store.GetSettings(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading settings: %w", err)
		}
		src.Currency = settings.DefaultCurrency
	}

	unlock := eng.locks.lock(itemID)
	defer unlock()

	it, err := eng.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	sources := append(append([]domain.Source{}, it.Sources...), src)
	if _, err := eng.store.UpdateItem(ctx, itemID, &store.ItemPatch{Sources: &sources}); err != nil {
		return nil, fmt.Errorf("saving source: %w", err)
	}
	return &src, nil
}

// UpdateSource applies patch to one source. The price fields are not
// editable here; see SetManualPrice.
func (eng *Engine) UpdateSource(ctx context.Context, itemID, sourceID string, patch SourcePatch) (*domain.Source, error) {
	unlock := eng.locks.lock(itemID)
	defer unlock()

	it, err := eng.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	src := it.Source(sourceID)
	if src == nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, sourceID)
	}

	if patch.Name != nil {
		src.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.URL != nil {
		src.URL = strings.TrimSpace(*patch.URL)
	}
	if patch.Selectors != nil {
		src.Selectors = cleanSelectors(*patch.Selectors)
	}
	if patch.Currency != nil {
		src.Currency = strings.TrimSpace(*patch.Currency)
	}
	if patch.Active != nil {
		src.Active = *patch.Active
	}
	if err := validateSource(src); err != nil {
		return nil, err
	}

	out := *src
	sources := it.Sources
	if _, err := eng.store.UpdateItem(ctx, itemID, &store.ItemPatch{Sources: &sources}); err != nil {
		return nil, fmt.Errorf("saving source: %w", err)
	}
	return &out, nil
}

// RemoveSource deletes a source together with its ledger points and alerts.
func (eng *Engine) RemoveSource(ctx context.Context, itemID, sourceID string) error {
	unlock := eng.locks.lock(itemID)
	defer unlock()

	it, err := eng.getItem(ctx, itemID)
	if err != nil {
		return err
	}
	if it.Source(sourceID) == nil {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, sourceID)
	}

	sources := make([]domain.Source, 0, len(it.Sources))
	for _, s := range it.Sources {
		if s.ID != sourceID {
			sources = append(sources, s)
		}
	}
	alerts := make([]domain.Alert, 0, len(it.Alerts))
	for _, a := range it.Alerts {
		if a.SourceID != sourceID {
			alerts = append(alerts, a)
		}
	}
	history := removeSourceHistory(it.PriceHistory, sourceID)

	patch := &store.ItemPatch{Sources: &sources, Alerts: &alerts, PriceHistory: &history}
	if _, err := eng.store.UpdateItem(ctx, itemID, patch); err != nil {
		return fmt.Errorf("removing source: %w", err)
	}
	return nil
}

// SetManualPrice records a price entered by hand. It always appends a
// ledger point, even when the price is unchanged, and does not evaluate
// alerts.
func (eng *Engine) SetManualPrice(ctx context.Context, itemID, sourceID string, price decimal.Decimal) (*domain.Source, error) {
	if price.LessThan(minManualPrice) || price.GreaterThan(decimal.NewFromInt(extract.DefaultMaxPrice)) {
		return nil, fmt.Errorf("%w: %s is outside 0.01..%d", ErrInvalidPrice, price, extract.DefaultMaxPrice)
	}

	unlock := eng.locks.lock(itemID)
	defer unlock()

	it, err := eng.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	src := it.Source(sourceID)
	if src == nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, sourceID)
	}

	now := eng.now()
	p := price
	ts := now
	src.CurrentPrice = &p
	src.LastUpdated = &ts
	out := *src

	sources := it.Sources
	history := AppendPricePoint(it.PriceHistory, domain.PricePoint{
		Timestamp: now,
		Price:     price,
		SourceID:  sourceID,
	}, eng.historyLimit)

	patch := &store.ItemPatch{Sources: &sources, PriceHistory: &history}
	if _, err := eng.store.UpdateItem(ctx, itemID, patch); err != nil {
		return nil, fmt.Errorf("saving manual price: %w", err)
	}
	return &out, nil
}

// UpdateItem applies an item patch under the item lock so it cannot
// interleave with a price commit. Source, ledger and alert fields are
// ignored; they have their own operations.
func (eng *Engine) UpdateItem(ctx context.Context, itemID string, patch *store.ItemPatch) (*domain.Item, error) {
	unlock := eng.locks.lock(itemID)
	defer unlock()

	p := *patch
	p.Sources = nil
	p.PriceHistory = nil
	p.Alerts = nil

	it, err := eng.store.UpdateItem(ctx, itemID, &p)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	return it, nil
}

// DeleteItem removes an item under its lock.
func (eng *Engine) DeleteItem(ctx context.Context, itemID string) error {
	unlock := eng.locks.lock(itemID)
	defer unlock()

	err := eng.store.DeleteItem(ctx, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

func validateSource(s *domain.Source) error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	u, err := url.Parse(s.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("url %q must be an absolute http(s) URL", s.URL))
	}
	if len(s.Selectors) == 0 {
		errs = append(errs, errors.New("at least one selector is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSource, errors.Join(errs...))
	}
	return nil
}

// cleanSelectors trims selectors and drops blanks, keeping order.
func cleanSelectors(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Import replaces the whole list with doc. Every item lock is held for the
// duration, so no price commit started before the import can write an old
// item back over the imported one.
func (eng *Engine) Import(ctx context.Context, doc *store.Document) error {
	unlock := eng.locks.lockAll()
	defer unlock()

	if err := eng.store.Import(ctx, doc); err != nil {
		return fmt.Errorf("importing document: %w", err)
	}
	return nil
}
