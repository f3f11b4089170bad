// Package engine refreshes tracked source prices, commits them to the price
// ledger, fires alerts, and serves the read-side price insights.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/donaldgifford/buying-list/internal/fetch"
	"github.com/donaldgifford/buying-list/internal/notify"
	"github.com/donaldgifford/buying-list/internal/store"
	"github.com/donaldgifford/buying-list/internal/telemetry"
	"github.com/donaldgifford/buying-list/pkg/advisor"
	"github.com/donaldgifford/buying-list/pkg/extract"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

const (
	// DefaultHistoryLimit is the per-source price ledger cap.
	DefaultHistoryLimit = 100

	// DefaultMinBodyBytes is the shortest page body worth extracting from.
	DefaultMinBodyBytes = 100

	defaultConcurrency = 16
)

var (
	// ErrItemNotFound is returned when the item does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrSourceNotFound is returned when the item has no source with the id.
	ErrSourceNotFound = errors.New("source not found")

	// ErrAlertNotFound is returned when the item has no alert with the id.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrInvalidSource is returned when a source fails validation.
	ErrInvalidSource = errors.New("invalid source")

	// ErrInvalidAlert is returned when an alert fails validation.
	ErrInvalidAlert = errors.New("invalid alert")

	// ErrInvalidPrice is returned for a manual price outside the accepted range.
	ErrInvalidPrice = errors.New("invalid price")
)

// Engine orchestrates fetching, extraction, ledger commits, and alerting.
type Engine struct {
	store    store.Store
	fetcher  fetch.Fetcher
	pipeline *extract.Pipeline
	notifier notify.Notifier
	log      *slog.Logger
	tracer   trace.Tracer
	locks    *itemLocks

	now          func() time.Time
	userAgents   []string
	minBodyBytes int
	historyLimit int
	windowDays   int
	concurrency  int
}

// NewEngine creates a new Engine with injected dependencies.
func NewEngine(
	s store.Store,
	f fetch.Fetcher,
	n notify.Notifier,
	opts ...EngineOption,
) *Engine {
	eng := &Engine{
		store:        s,
		fetcher:      f,
		notifier:     n,
		log:          slog.Default(),
		tracer:       otel.Tracer(telemetry.InstrumentationName),
		locks:        newItemLocks(),
		now:          time.Now,
		minBodyBytes: DefaultMinBodyBytes,
		historyLimit: DefaultHistoryLimit,
		windowDays:   advisor.DefaultWindowDays,
		concurrency:  defaultConcurrency,
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.pipeline == nil {
		eng.pipeline = extract.NewPipeline(extract.WithLogger(eng.log))
	}
	return eng
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithPipeline replaces the default extraction pipeline.
func WithPipeline(p *extract.Pipeline) EngineOption {
	return func(e *Engine) {
		e.pipeline = p
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithUserAgents sets the User-Agent pool rotated across fetches.
func WithUserAgents(agents []string) EngineOption {
	return func(e *Engine) {
		e.userAgents = agents
	}
}

// WithMinBodyBytes sets the shortest body treated as a real page.
func WithMinBodyBytes(n int) EngineOption {
	return func(e *Engine) {
		if n >= 0 {
			e.minBodyBytes = n
		}
	}
}

// WithHistoryLimit sets the per-source price ledger cap.
func WithHistoryLimit(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.historyLimit = n
		}
	}
}

// WithStatsWindowDays sets the default window for history and statistics.
func WithStatsWindowDays(days int) EngineOption {
	return func(e *Engine) {
		if days > 0 {
			e.windowDays = days
		}
	}
}

// WithConcurrency caps the number of sources refreshed at once by
// UpdateAllPrices. Zero or less uses the default.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func (eng *Engine) headers() http.Header {
	return fetch.BrowserHeaders(eng.userAgents)
}

// getItem loads an item and maps a missing row to ErrItemNotFound.
func (eng *Engine) getItem(ctx context.Context, itemID string) (*domain.Item, error) {
	it, err := eng.store.GetItem(ctx, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting item %s: %w", itemID, err)
	}
	return it, nil
}
