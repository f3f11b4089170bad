package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes fired alerts to the log. It stands in when no webhook
// backend is enabled so alerts are still visible somewhere.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier creates a notifier that logs alerts at INFO.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// SendAlert logs a single alert.
func (n *LogNotifier) SendAlert(ctx context.Context, alert *AlertPayload) error {
	n.log.InfoContext(ctx, "price alert",
		"item", alert.ItemID,
		"summary", alert.Summary(),
		"url", alert.URL,
	)
	return nil
}

// SendBatchAlert logs each alert of a batch under the item name.
func (n *LogNotifier) SendBatchAlert(ctx context.Context, alerts []AlertPayload, itemName string) error {
	for i := range alerts {
		n.log.InfoContext(ctx, "price alert",
			"item", alerts[i].ItemID,
			"summary", alerts[i].Summary(),
			"batch", itemName,
			"batch_size", len(alerts),
		)
	}
	return nil
}
