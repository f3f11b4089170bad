package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/donaldgifford/buying-list/internal/metrics"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

// WebhookNotifier posts alerts as plain JSON to an arbitrary endpoint.
type WebhookNotifier struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// WebhookOption configures a WebhookNotifier.
type WebhookOption func(*WebhookNotifier)

// WithWebhookHTTPClient sets a custom HTTP client.
func WithWebhookHTTPClient(c *http.Client) WebhookOption {
	return func(w *WebhookNotifier) {
		w.client = c
	}
}

// WithHeaders adds static headers to every request, e.g. an auth token.
func WithHeaders(h map[string]string) WebhookOption {
	return func(w *WebhookNotifier) {
		w.headers = h
	}
}

// NewWebhookNotifier creates a new WebhookNotifier.
func NewWebhookNotifier(url string, opts ...WebhookOption) *WebhookNotifier {
	w := &WebhookNotifier{
		url:    url,
		client: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type webhookAlert struct {
	ItemID      string                `json:"item_id"`
	ItemName    string                `json:"item_name"`
	SourceName  string                `json:"source_name"`
	URL         string                `json:"url,omitempty"`
	Price       decimal.Decimal       `json:"price"`
	Currency    string                `json:"currency"`
	TargetPrice decimal.Decimal       `json:"target_price"`
	Condition   domain.AlertCondition `json:"condition"`
	Message     string                `json:"message"`
	TriggeredAt time.Time             `json:"triggered_at"`
}

type webhookBody struct {
	Item   string         `json:"item"`
	Alerts []webhookAlert `json:"alerts"`
}

// SendAlert posts one alert.
func (w *WebhookNotifier) SendAlert(ctx context.Context, alert *AlertPayload) error {
	return w.post(ctx, webhookBody{
		Item:   alert.ItemName,
		Alerts: []webhookAlert{toWebhookAlert(alert)},
	})
}

// SendBatchAlert posts all alerts of one item in a single request.
func (w *WebhookNotifier) SendBatchAlert(ctx context.Context, alerts []AlertPayload, itemName string) error {
	if len(alerts) == 0 {
		return nil
	}
	body := webhookBody{Item: itemName, Alerts: make([]webhookAlert, 0, len(alerts))}
	for i := range alerts {
		body.Alerts = append(body.Alerts, toWebhookAlert(&alerts[i]))
	}
	return w.post(ctx, body)
}

func toWebhookAlert(a *AlertPayload) webhookAlert {
	return webhookAlert{
		ItemID:      a.ItemID,
		ItemName:    a.ItemName,
		SourceName:  a.SourceName,
		URL:         a.URL,
		Price:       a.Price,
		Currency:    a.Currency,
		TargetPrice: a.TargetPrice,
		Condition:   a.Condition,
		Message:     a.Summary(),
		TriggeredAt: a.TriggeredAt,
	}
}

func (w *WebhookNotifier) post(ctx context.Context, body webhookBody) error {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
