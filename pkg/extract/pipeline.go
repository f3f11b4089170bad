// Package extract resolves a single price from raw page markup using user
// selectors, a built-in list of common price selectors, and finally a scored
// scan of the whole document text.
package extract

import (
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

const (
	// DefaultMaxPrice is the sanity ceiling applied to every candidate.
	DefaultMaxPrice = 1_000_000

	// DocumentScanSelector is recorded when the full-text scan found the price.
	DocumentScanSelector = "fallback: document scan"

	commonSelectorPrefix = "common: "
	excerptLength        = 200
	maxMatchedText       = 200
)

var minPrice = decimal.RequireFromString("0.01")

// CommonSelectors is the built-in fallback list, tried in order after the
// source's own selectors.
var CommonSelectors = []string{
	// Generic
	".price",
	"#price",
	"[data-price]",
	".amount",
	".cost",
	".price-now",
	".current-price",
	".sale-price",
	".final-price",
	".product-price",
	".item-price",
	".total-price",

	// Amazon
	".a-price .a-offscreen",
	".a-price-whole",
	".a-price-range",
	"#priceblock_dealprice",
	"#priceblock_ourprice",
	".a-price.a-text-price",

	// Regional storefronts
	".price-current",

	// Wildcards
	`[class*="price"]`,
	`[class*="cost"]`,
	`[class*="amount"]`,
	`[id*="price"]`,
	`[id*="cost"]`,
	`[id*="amount"]`,
	`span[class*="currency"]`,
	`div[class*="money"]`,

	// Bare tags
	"span",
	"div",
	"p",
	"strong",
	"b",
}

// Pipeline extracts prices from markup. It holds no per-call state and is
// safe for concurrent use.
type Pipeline struct {
	common   []string
	maxPrice decimal.Decimal
	log      *slog.Logger
}

// PipelineOption configures the Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.log = l
	}
}

// WithMaxPrice overrides the sanity ceiling. Values above DefaultMaxPrice
// are clamped to it.
func WithMaxPrice(v decimal.Decimal) PipelineOption {
	return func(p *Pipeline) {
		if v.IsPositive() && v.LessThanOrEqual(decimal.NewFromInt(DefaultMaxPrice)) {
			p.maxPrice = v
		}
	}
}

// WithCommonSelectors replaces the built-in fallback selector list.
func WithCommonSelectors(selectors []string) PipelineOption {
	return func(p *Pipeline) {
		p.common = selectors
	}
}

// NewPipeline creates a Pipeline.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		common:   CommonSelectors,
		maxPrice: decimal.NewFromInt(DefaultMaxPrice),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) inRange(v decimal.Decimal) bool {
	return v.GreaterThanOrEqual(minPrice) && v.LessThanOrEqual(p.maxPrice)
}

// Extract resolves a price from markup. selectors are the source's own hints,
// tried first and in order. The returned result never carries a price
// outside (0, max].
func (p *Pipeline) Extract(markup string, selectors []string) *domain.ExtractionResult {
	doc, err := ParseDocument(markup)
	if err != nil {
		return &domain.ExtractionResult{Error: err.Error()}
	}
	doc.onSelectorError = func(selector string, err error) {
		p.log.Debug("selector rejected by css engine", "selector", selector, "error", err)
	}

	for _, sel := range selectors {
		if c, ok := p.trySelector(doc, sel); ok {
			return success(c, sel, domain.StageUser)
		}
	}

	for _, sel := range p.common {
		if c, ok := p.trySelector(doc, sel); ok {
			return success(c, commonSelectorPrefix+sel, domain.StageCommon)
		}
	}

	text := doc.BodyText()
	if c, ok := p.ScanText(text); ok {
		return success(c, DocumentScanSelector, domain.StageDocument)
	}

	return &domain.ExtractionResult{
		Error:       "no price found by selectors, common selectors or document scan",
		MatchedText: excerpt(text, excerptLength) + "...",
	}
}

func (p *Pipeline) trySelector(doc *Document, selector string) (Candidate, bool) {
	var (
		found Candidate
		ok    bool
	)
	doc.Resolve(selector).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		found, ok = p.collect(node)
		return !ok
	})
	return found, ok
}

func success(c Candidate, selector string, stage domain.Stage) *domain.ExtractionResult {
	price := c.Price
	return &domain.ExtractionResult{
		Success:      true,
		Price:        &price,
		MatchedText:  c.Text,
		UsedSelector: selector,
		Stage:        stage,
		Confidence:   c.Confidence,
	}
}
