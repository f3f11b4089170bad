package cmd

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/buying-list/internal/config"
	"github.com/donaldgifford/buying-list/internal/engine"
	"github.com/donaldgifford/buying-list/internal/notify"
	"github.com/donaldgifford/buying-list/internal/store"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewNotifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.NotificationsConfig
		want any
	}{
		{name: "nothing enabled", want: &notify.LogNotifier{}},
		{
			name: "discord and webhook",
			cfg: config.NotificationsConfig{
				Discord: config.DiscordConfig{Enabled: true, WebhookURL: "https://discord.example/hook"},
				Webhook: config.WebhookConfig{Enabled: true, URL: "https://hooks.example/in"},
			},
			want: notify.Multi{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := newNotifier(&tt.cfg, quietLogger())
			assert.IsType(t, tt.want, n)
		})
	}
}

func TestNewScheduler_IntervalSource(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name            string
		configured      time.Duration
		wantInterval    time.Duration
		wantRescheduler bool
	}{
		{name: "from settings", wantInterval: time.Hour, wantRescheduler: true},
		{name: "from config", configured: 5 * time.Minute, wantInterval: 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			st, err := store.NewFileStore(t.TempDir() + "/data.json")
			require.NoError(t, err)

			cfg := config.Default()
			cfg.Schedule.UpdateInterval = tt.configured
			eng := engine.NewEngine(st, nil, notify.NewLogNotifier(quietLogger()))

			sched, resched, err := newScheduler(ctx, cfg, st, eng, quietLogger())
			require.NoError(t, err)
			assert.Equal(t, tt.wantInterval, sched.Interval())
			assert.Equal(t, tt.wantRescheduler, resched != nil)
		})
	}
}
