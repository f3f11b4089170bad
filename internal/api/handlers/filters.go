package handlers

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// ParseFilters parses CLI --filter flags into an ItemFilter.
// Supported formats:
//
//	category=electronics,books
//	status=wishlist,needed
//	priority=high
//	tag=gift,sale
//	min_price=100
//	max_price=2500.50
//	search=headphones
func ParseFilters(filters []string) (domain.ItemFilter, error) {
	var f domain.ItemFilter

	for _, raw := range filters {
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			return f, fmt.Errorf("invalid filter format %q: expected key=value", raw)
		}
		if err := parseFilter(&f, strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return f, err
		}
	}

	return f, nil
}

func parseFilter(f *domain.ItemFilter, key, value string) error {
	switch key {
	case "category":
		f.CategoryIDs = append(f.CategoryIDs, splitList(value)...)
	case "status":
		for _, v := range splitList(value) {
			s := domain.Status(v)
			switch s {
			case domain.StatusWishlist, domain.StatusNeeded, domain.StatusPurchased:
			default:
				return fmt.Errorf("invalid status %q", v)
			}
			f.Statuses = append(f.Statuses, s)
		}
	case "priority":
		for _, v := range splitList(value) {
			p := domain.Priority(v)
			if p.Rank() == 0 {
				return fmt.Errorf("invalid priority %q", v)
			}
			f.Priorities = append(f.Priorities, p)
		}
	case "tag":
		f.Tags = append(f.Tags, splitList(value)...)
	case "min_price":
		v, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("invalid min_price %q: %w", value, err)
		}
		f.MinPrice = &v
	case "max_price":
		v, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("invalid max_price %q: %w", value, err)
		}
		f.MaxPrice = &v
	case "search":
		f.Search = value
	default:
		return fmt.Errorf("unknown filter key %q", key)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
