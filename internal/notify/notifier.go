// Package notify defines the notification interface and implementations
// for price alert delivery.
package notify

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// AlertPayload contains the data needed to send a price alert notification.
type AlertPayload struct {
	ItemID      string
	ItemName    string
	SourceName  string
	URL         string
	Price       decimal.Decimal
	Currency    string
	TargetPrice decimal.Decimal
	Condition   domain.AlertCondition
	TriggeredAt time.Time
}

// Notifier defines the interface for sending price alert notifications.
type Notifier interface {
	SendAlert(ctx context.Context, alert *AlertPayload) error
	SendBatchAlert(ctx context.Context, alerts []AlertPayload, itemName string) error
}

var printer = message.NewPrinter(language.English)

// FormatPrice renders a price with thousands grouping and two decimals,
// followed by the currency when one is set.
func FormatPrice(v decimal.Decimal, currency string) string {
	s := printer.Sprintf("%.2f", v.Round(2).InexactFloat64())
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// Summary is the one-line human description of a fired alert.
func (a *AlertPayload) Summary() string {
	return printer.Sprintf("%s at %s is now %s (%s %s)",
		a.ItemName,
		a.SourceName,
		FormatPrice(a.Price, a.Currency),
		conditionLabel(a.Condition),
		FormatPrice(a.TargetPrice, a.Currency),
	)
}

func conditionLabel(c domain.AlertCondition) string {
	switch c {
	case domain.ConditionBelow:
		return "below target"
	case domain.ConditionAbove:
		return "above target"
	default:
		return "at target"
	}
}
