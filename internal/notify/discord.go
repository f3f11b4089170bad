package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/donaldgifford/buying-list/internal/metrics"
	domain "github.com/donaldgifford/buying-list/pkg/types"
)

const (
	colorGreen  = 0x2ECC71 // below target
	colorYellow = 0xF1C40F // at target
	colorOrange = 0xE67E22 // above target

	maxEmbeds = 10
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	username   string
	client     *http.Client
}

// RateLimitedError is returned when Discord answers 429. RetryAfter is
// zero when the response did not say.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("discord rate limited (429), retry after %s", e.RetryAfter)
	}
	return "discord rate limited (429)"
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// WithUsername overrides the webhook's display name.
func WithUsername(name string) DiscordOption {
	return func(d *DiscordNotifier) {
		d.username = name
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Username string         `json:"username,omitempty"`
	Embeds   []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	URL         string              `json:"url,omitempty"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Footer      *discordEmbedFooter `json:"footer,omitempty"`
}

type discordEmbedFooter struct {
	Text string `json:"text"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// SendAlert sends a single alert as a Discord embed.
func (d *DiscordNotifier) SendAlert(ctx context.Context, alert *AlertPayload) error {
	return d.post(ctx, discordWebhookPayload{
		Username: d.username,
		Embeds:   []discordEmbed{buildEmbed(alert)},
	})
}

// SendBatchAlert sends multiple alerts for one item as a single Discord message.
func (d *DiscordNotifier) SendBatchAlert(
	ctx context.Context,
	alerts []AlertPayload,
	itemName string,
) error {
	if len(alerts) == 0 {
		return nil
	}

	limit := min(len(alerts), maxEmbeds)
	embeds := make([]discordEmbed, 0, limit+1)
	for i := range limit {
		embeds = append(embeds, buildEmbed(&alerts[i]))
	}

	if len(alerts) > maxEmbeds {
		embeds = append(embeds, discordEmbed{
			Title:       fmt.Sprintf("... and %d more alerts for %s", len(alerts)-maxEmbeds, itemName),
			Color:       colorYellow,
			Description: "Open the buying list for the full set.",
		})
	}

	return d.post(ctx, discordWebhookPayload{Username: d.username, Embeds: embeds})
}

func buildEmbed(alert *AlertPayload) discordEmbed {
	embed := discordEmbed{
		Title:       fmt.Sprintf("Price Alert: %s", alert.ItemName),
		URL:         alert.URL,
		Color:       conditionColor(alert.Condition),
		Description: alert.Summary(),
		Fields: []discordEmbedField{
			{Name: "Source", Value: alert.SourceName, Inline: true},
			{Name: "Price", Value: FormatPrice(alert.Price, alert.Currency), Inline: true},
			{Name: "Target", Value: FormatPrice(alert.TargetPrice, alert.Currency), Inline: true},
			{Name: "Condition", Value: string(alert.Condition), Inline: true},
		},
		Footer: &discordEmbedFooter{Text: "Item " + alert.ItemID},
	}

	if !alert.TriggeredAt.IsZero() {
		embed.Timestamp = alert.TriggeredAt.UTC().Format(time.RFC3339)
	}

	return embed
}

func conditionColor(c domain.AlertCondition) int {
	switch c {
	case domain.ConditionBelow:
		return colorGreen
	case domain.ConditionAbove:
		return colorOrange
	default:
		return colorYellow
	}
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.webhookURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		rl := &RateLimitedError{}
		if secs, err := strconv.ParseFloat(resp.Header.Get("Retry-After"), 64); err == nil && secs > 0 {
			rl.RetryAfter = time.Duration(secs * float64(time.Second))
		}
		return rl
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("discord returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
