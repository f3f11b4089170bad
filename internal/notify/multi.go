package notify

import (
	"context"
	"errors"
)

// Multi fans an alert out to several notifiers. Every notifier is tried;
// failures are joined.
type Multi []Notifier

// SendAlert sends to every notifier.
func (m Multi) SendAlert(ctx context.Context, alert *AlertPayload) error {
	var errs []error
	for _, n := range m {
		if err := n.SendAlert(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendBatchAlert sends the batch to every notifier.
func (m Multi) SendBatchAlert(ctx context.Context, alerts []AlertPayload, itemName string) error {
	var errs []error
	for _, n := range m {
		if err := n.SendBatchAlert(ctx, alerts, itemName); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
