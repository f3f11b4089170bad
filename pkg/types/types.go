// Package domain defines the core business types for the buying list tracker.
package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Priority ranks how urgently an item is wanted.
type Priority string

// Priority constants.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank returns the sort weight of the priority (high sorts first when descending).
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Status is the purchase state of an item.
type Status string

// Status constants.
const (
	StatusWishlist  Status = "wishlist"
	StatusNeeded    Status = "needed"
	StatusPurchased Status = "purchased"
)

// AlertCondition is the comparison an alert applies to a new price.
type AlertCondition string

// Alert condition constants.
const (
	ConditionBelow AlertCondition = "below"
	ConditionAbove AlertCondition = "above"
	ConditionEqual AlertCondition = "equal"
)

// Valid reports whether c is a known condition.
func (c AlertCondition) Valid() bool {
	switch c {
	case ConditionBelow, ConditionAbove, ConditionEqual:
		return true
	default:
		return false
	}
}

// Trend is the coarse direction of recent price movement.
type Trend string

// Trend constants.
const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// Decision is the outcome of a buy/wait recommendation.
type Decision string

// Decision constants.
const (
	DecisionBuy       Decision = "buy"
	DecisionWait      Decision = "wait"
	DecisionUncertain Decision = "uncertain"
)

// Stage identifies which extraction layer produced a price.
type Stage string

// Stage constants.
const (
	StageUser     Stage = "user"
	StageCommon   Stage = "common"
	StageDocument Stage = "document"
)

// Source is a single website tracked for an item, with its own selectors,
// currency and price state.
type Source struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	URL          string           `json:"url"`
	Selectors    []string         `json:"selectors"`
	Currency     string           `json:"currency"`
	CurrentPrice *decimal.Decimal `json:"current_price,omitempty"`
	LastUpdated  *time.Time       `json:"last_updated,omitempty"`
	Active       bool             `json:"active"`
}

// PricePoint is one timestamped price observation for a source.
type PricePoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
	SourceID  string          `json:"source_id"`
}

// Alert fires once when a source's price satisfies its condition.
type Alert struct {
	ID          string          `json:"id"`
	SourceID    string          `json:"source_id"`
	TargetPrice decimal.Decimal `json:"target_price"`
	Condition   AlertCondition  `json:"condition"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	TriggeredAt *time.Time      `json:"triggered_at,omitempty"`
}

// Item is a tracked shopping item.
type Item struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	CategoryID   string           `json:"category_id"`
	Sources      []Source         `json:"sources"`
	PriceHistory []PricePoint     `json:"price_history"`
	Alerts       []Alert          `json:"alerts"`
	Priority     Priority         `json:"priority"`
	Status       Status           `json:"status"`
	Tags         []string         `json:"tags"`
	Notes        string           `json:"notes,omitempty"`
	Image        string           `json:"image,omitempty"`
	TargetBudget *decimal.Decimal `json:"target_budget,omitempty"`
	Quantity     int              `json:"quantity,omitempty"`
	Order        int              `json:"order"`
	DateAdded    time.Time        `json:"date_added"`
	DateModified time.Time        `json:"date_modified"`
}

// Source returns the source with the given ID, or nil.
func (it *Item) Source(id string) *Source {
	for i := range it.Sources {
		if it.Sources[i].ID == id {
			return &it.Sources[i]
		}
	}
	return nil
}

// Alert returns the alert with the given ID, or nil.
func (it *Item) Alert(id string) *Alert {
	for i := range it.Alerts {
		if it.Alerts[i].ID == id {
			return &it.Alerts[i]
		}
	}
	return nil
}

// LowestPrice returns the lowest current price across the item's sources.
// Inactive sources are included, matching what the list view shows.
func (it *Item) LowestPrice() *decimal.Decimal {
	var lowest *decimal.Decimal
	for i := range it.Sources {
		p := it.Sources[i].CurrentPrice
		if p == nil || !p.IsPositive() {
			continue
		}
		if lowest == nil || p.LessThan(*lowest) {
			v := *p
			lowest = &v
		}
	}
	return lowest
}

// Category groups items.
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Color        string    `json:"color"`
	Icon         string    `json:"icon"`
	ParentID     string    `json:"parent_id,omitempty"`
	Order        int       `json:"order"`
	IsDefault    bool      `json:"is_default"`
	DateCreated  time.Time `json:"date_created"`
	DateModified time.Time `json:"date_modified"`
}

// Theme is the UI theme preference stored with the settings.
type Theme string

// Theme constants.
const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// Settings are the user-editable runtime settings.
type Settings struct {
	DefaultCurrency      string `json:"default_currency"`
	UpdateIntervalMs     int64  `json:"update_interval_ms"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	Theme                Theme  `json:"theme"`
}

// UpdateInterval returns the configured price update interval.
func (s Settings) UpdateInterval() time.Duration {
	return time.Duration(s.UpdateIntervalMs) * time.Millisecond
}

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() Settings {
	return Settings{
		DefaultCurrency:      "ر.س",
		UpdateIntervalMs:     int64(time.Hour / time.Millisecond),
		NotificationsEnabled: true,
		Theme:                ThemeAuto,
	}
}

// OtherCategoryID is the catch-all default category.
const OtherCategoryID = "other"

// DefaultCategories returns the built-in categories seeded into an empty store.
func DefaultCategories(now time.Time) []Category {
	defs := []struct {
		id, name, color, icon string
		order                 int
	}{
		{"electronics", "Electronics", "#3b82f6", "smartphone", 1},
		{"clothing", "Clothing", "#ec4899", "shirt", 2},
		{"home", "Home & Garden", "#10b981", "home", 3},
		{"books", "Books", "#f59e0b", "book", 4},
		{"sports", "Sports", "#ef4444", "dumbbell", 5},
		{"beauty", "Beauty", "#8b5cf6", "sparkles", 6},
		{"food", "Food & Grocery", "#f97316", "shopping-cart", 7},
		{OtherCategoryID, "Other", "#6b7280", "package", 999},
	}

	cats := make([]Category, 0, len(defs))
	for _, d := range defs {
		cats = append(cats, Category{
			ID:           d.id,
			Name:         d.name,
			Color:        d.color,
			Icon:         d.icon,
			Order:        d.order,
			IsDefault:    true,
			DateCreated:  now,
			DateModified: now,
		})
	}
	return cats
}

// ExtractionResult is the outcome of one price extraction attempt for a source.
type ExtractionResult struct {
	SourceID     string           `json:"source_id,omitempty"`
	Success      bool             `json:"success"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Changed      bool             `json:"changed"`
	MatchedText  string           `json:"matched_text,omitempty"`
	UsedSelector string           `json:"used_selector,omitempty"`
	Stage        Stage            `json:"stage,omitempty"`
	Confidence   int              `json:"confidence,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// ComparisonEntry is one ranked source in a comparison.
type ComparisonEntry struct {
	SourceID    string          `json:"source_id"`
	SourceName  string          `json:"source_name"`
	URL         string          `json:"url"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	LastUpdated *time.Time      `json:"last_updated,omitempty"`
}

// ComparisonSnapshot ranks an item's priced active sources by ascending price.
type ComparisonSnapshot struct {
	ItemID     string            `json:"item_id"`
	Entries    []ComparisonEntry `json:"entries"`
	BestPrice  decimal.Decimal   `json:"best_price"`
	WorstPrice decimal.Decimal   `json:"worst_price"`
	Savings    decimal.Decimal   `json:"savings"`
}

// Best returns the cheapest entry.
func (c *ComparisonSnapshot) Best() *ComparisonEntry {
	if c == nil || len(c.Entries) == 0 {
		return nil
	}
	return &c.Entries[0]
}

// Statistics aggregates a source's price history over a trailing window.
type Statistics struct {
	SourceID      string          `json:"source_id"`
	WindowDays    int             `json:"window_days"`
	SampleCount   int             `json:"sample_count"`
	Current       decimal.Decimal `json:"current"`
	Previous      decimal.Decimal `json:"previous"`
	Average       decimal.Decimal `json:"average"`
	Lowest        decimal.Decimal `json:"lowest"`
	Highest       decimal.Decimal `json:"highest"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	Trend         Trend           `json:"trend"`
}

// Recommendation is a buy/wait decision for an item.
type Recommendation struct {
	Decision       Decision `json:"decision"`
	Confidence     int      `json:"confidence"`
	Reason         string   `json:"reason"`
	BestSourceID   string   `json:"best_source_id,omitempty"`
	BestSourceName string   `json:"best_source_name,omitempty"`
}

// CategoryStats summarizes the prices of a category's items.
type CategoryStats struct {
	CategoryID   string          `json:"category_id"`
	TotalItems   int             `json:"total_items"`
	PricedItems  int             `json:"priced_items"`
	TotalValue   decimal.Decimal `json:"total_value"`
	AveragePrice decimal.Decimal `json:"average_price"`
	HighestPrice decimal.Decimal `json:"highest_price"`
	LowestPrice  decimal.Decimal `json:"lowest_price"`
}

// ListSummary is the overview shown above the item list.
type ListSummary struct {
	TotalItems     int             `json:"total_items"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	ByStatus       map[Status]int  `json:"by_status"`
	Categories     int             `json:"categories"`
	Sources        int             `json:"sources"`
	ActiveSources  int             `json:"active_sources"`
	Alerts         int             `json:"alerts"`
	ActiveAlerts   int             `json:"active_alerts"`
}

// BatchSummary reports the counts of an update-all run.
type BatchSummary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Changed   int           `json:"changed"`
	Duration  time.Duration `json:"duration_ns"`
}

// ItemFilter narrows an item list. Empty fields match everything. Items
// without any price always pass the price range.
type ItemFilter struct {
	CategoryIDs []string         `json:"category_ids,omitempty"`
	Statuses    []Status         `json:"statuses,omitempty"`
	Priorities  []Priority       `json:"priorities,omitempty"`
	MinPrice    *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice    *decimal.Decimal `json:"max_price,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
	Search      string           `json:"search,omitempty"`
}

// Match returns true if the item passes every filter that is set.
func (f *ItemFilter) Match(it *Item) bool {
	if f == nil {
		return true
	}
	if len(f.CategoryIDs) > 0 && !slices.Contains(f.CategoryIDs, it.CategoryID) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, it.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !slices.Contains(f.Priorities, it.Priority) {
		return false
	}
	if !f.matchPrice(it) {
		return false
	}
	if len(f.Tags) > 0 && !slices.ContainsFunc(f.Tags, func(t string) bool {
		return slices.Contains(it.Tags, t)
	}) {
		return false
	}
	return f.matchSearch(it)
}

func (f *ItemFilter) matchPrice(it *Item) bool {
	if f.MinPrice == nil && f.MaxPrice == nil {
		return true
	}
	lowest := it.LowestPrice()
	if lowest == nil {
		return true
	}
	if f.MinPrice != nil && lowest.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && lowest.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

func (f *ItemFilter) matchSearch(it *Item) bool {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	for _, field := range []string{it.Name, it.Description, it.Notes} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
