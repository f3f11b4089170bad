package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/donaldgifford/buying-list/internal/metrics"
	"github.com/donaldgifford/buying-list/internal/notify"
	"github.com/donaldgifford/buying-list/internal/store"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

var equalTolerance = decimal.RequireFromString("0.01")

// EvaluateAlerts checks every active alert on sourceID against price.
// Triggered alerts are deactivated and stamped in the returned copy of
// alerts, and also returned on their own. Alerts that do not trigger, are
// inactive, or belong to other sources are left as they are.
func EvaluateAlerts(
	alerts []domain.Alert,
	sourceID string,
	price decimal.Decimal,
	now time.Time,
) (updated, fired []domain.Alert) {
	updated = make([]domain.Alert, len(alerts))
	copy(updated, alerts)

	for i := range updated {
		a := &updated[i]
		if !a.Active || a.SourceID != sourceID {
			continue
		}
		if !conditionMet(a.Condition, price, a.TargetPrice) {
			continue
		}
		a.Active = false
		t := now
		a.TriggeredAt = &t
		fired = append(fired, *a)
	}
	return updated, fired
}

func conditionMet(c domain.AlertCondition, price, target decimal.Decimal) bool {
	switch c {
	case domain.ConditionBelow:
		return price.LessThan(target)
	case domain.ConditionAbove:
		return price.GreaterThan(target)
	case domain.ConditionEqual:
		return price.Sub(target).Abs().LessThan(equalTolerance)
	default:
		return false
	}
}

// AlertInput carries the fields of a new alert.
type AlertInput struct {
	SourceID    string
	TargetPrice decimal.Decimal
	Condition   domain.AlertCondition
}

// AddAlert attaches a new active alert to one of the item's sources.
func (eng *Engine) AddAlert(ctx context.Context, itemID string, in AlertInput) (*domain.Alert, error) {
	if !in.Condition.Valid() {
		return nil, fmt.Errorf("%w: unknown condition %q", ErrInvalidAlert, in.Condition)
	}
	if !in.TargetPrice.IsPositive() {
		return nil, fmt.Errorf("%w: target price must be positive", ErrInvalidAlert)
	}

	unlock := eng.locks.lock(itemID)
	defer unlock()

	it, err := eng.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.Source(in.SourceID) == nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, in.SourceID)
	}

	alert := domain.Alert{
		ID:          uuid.NewString(),
		SourceID:    in.SourceID,
		TargetPrice: in.TargetPrice,
		Condition:   in.Condition,
		Active:      true,
		CreatedAt:   eng.now(),
	}
	alerts := append(append([]domain.Alert{}, it.Alerts...), alert)

	if _, err := eng.store.UpdateItem(ctx, itemID, &store.ItemPatch{Alerts: &alerts}); err != nil {
		return nil, fmt.Errorf("saving alert: %w", err)
	}
	return &alert, nil
}

// RemoveAlert deletes an alert from the item.
func (eng *Engine) RemoveAlert(ctx context.Context, itemID, alertID string) error {
	unlock := eng.locks.lock(itemID)
	defer unlock()

	it, err := eng.getItem(ctx, itemID)
	if err != nil {
		return err
	}

	alerts := make([]domain.Alert, 0, len(it.Alerts))
	found := false
	for _, a := range it.Alerts {
		if a.ID == alertID {
			found = true
			continue
		}
		alerts = append(alerts, a)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrAlertNotFound, alertID)
	}

	if _, err := eng.store.UpdateItem(ctx, itemID, &store.ItemPatch{Alerts: &alerts}); err != nil {
		return fmt.Errorf("removing alert: %w", err)
	}
	return nil
}

// ToggleAlert flips an alert between active and inactive. Re-activating a
// fired alert arms it again and clears its trigger time.
func (eng *Engine) ToggleAlert(ctx context.Context, itemID, alertID string) (*domain.Alert, error) {
	unlock := eng.locks.lock(itemID)
	defer unlock()

	it, err := eng.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	alerts := append([]domain.Alert{}, it.Alerts...)
	var toggled *domain.Alert
	for i := range alerts {
		if alerts[i].ID == alertID {
			alerts[i].Active = !alerts[i].Active
			if alerts[i].Active {
				alerts[i].TriggeredAt = nil
			}
			toggled = &alerts[i]
			break
		}
	}
	if toggled == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlertNotFound, alertID)
	}

	if _, err := eng.store.UpdateItem(ctx, itemID, &store.ItemPatch{Alerts: &alerts}); err != nil {
		return nil, fmt.Errorf("toggling alert: %w", err)
	}
	out := *toggled
	return &out, nil
}

// notifyFired delivers fired alerts when notifications are enabled in
// settings. Delivery failures are logged and counted, never returned.
func (eng *Engine) notifyFired(ctx context.Context, it *domain.Item, src *domain.Source, fired []domain.Alert) {
	if len(fired) == 0 {
		return
	}
	metrics.AlertsFiredTotal.Add(float64(len(fired)))

	settings, err := eng.store.GetSettings(ctx)
	if err != nil {
		eng.log.ErrorContext(ctx, "loading settings for notification", "item", it.ID, "error", err)
		return
	}
	if !settings.NotificationsEnabled || eng.notifier == nil {
		return
	}

	payloads := make([]notify.AlertPayload, 0, len(fired))
	for i := range fired {
		payloads = append(payloads, buildAlertPayload(it, src, &fired[i]))
	}

	if len(payloads) == 1 {
		err = eng.notifier.SendAlert(ctx, &payloads[0])
	} else {
		err = eng.notifier.SendBatchAlert(ctx, payloads, it.Name)
	}
	if err != nil {
		metrics.NotificationFailuresTotal.Inc()
		eng.log.ErrorContext(ctx, "sending alert notification", "item", it.ID, "source", src.ID, "error", err)
	}
}

func buildAlertPayload(it *domain.Item, src *domain.Source, a *domain.Alert) notify.AlertPayload {
	p := notify.AlertPayload{
		ItemID:      it.ID,
		ItemName:    it.Name,
		SourceName:  src.Name,
		URL:         src.URL,
		Currency:    src.Currency,
		TargetPrice: a.TargetPrice,
		Condition:   a.Condition,
	}
	if src.CurrentPrice != nil {
		p.Price = *src.CurrentPrice
	}
	if a.TriggeredAt != nil {
		p.TriggeredAt = *a.TriggeredAt
	}
	return p
}
