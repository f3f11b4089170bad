package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/donaldgifford/buying-list/internal/api/handlers"
	"github.com/donaldgifford/buying-list/internal/api/middleware"
	"github.com/donaldgifford/buying-list/internal/config"
	"github.com/donaldgifford/buying-list/internal/engine"
	"github.com/donaldgifford/buying-list/internal/fetch"
	"github.com/donaldgifford/buying-list/internal/notify"
	"github.com/donaldgifford/buying-list/internal/store"
	"github.com/donaldgifford/buying-list/internal/telemetry"
	"github.com/donaldgifford/buying-list/pkg/extract"
	"github.com/donaldgifford/buying-list/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and scheduler",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, &cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			log.Error("telemetry shutdown failed", "err", err)
		}
	}()

	st, closeStore, err := openStore(ctx, &cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating store: %w", err)
	}

	pipeline := newPipeline(cfg, log)
	limiter := newRateLimiter(&cfg.Fetch)
	fetcher := newFetcher(&cfg.Fetch, limiter)
	eng := engine.NewEngine(st, fetcher, newNotifier(&cfg.Notifications, logger.Component(log, "notify")),
		engine.WithLogger(logger.Component(log, "engine")),
		engine.WithPipeline(pipeline),
		engine.WithUserAgents(cfg.Fetch.UserAgents),
		engine.WithMinBodyBytes(cfg.Fetch.MinBodyBytes),
		engine.WithHistoryLimit(cfg.Extraction.HistoryLimit),
		engine.WithStatsWindowDays(cfg.Extraction.StatsWindowDays),
		engine.WithConcurrency(cfg.Schedule.Concurrency),
	)

	sched, rescheduler, err := newScheduler(ctx, cfg, st, eng, logger.Component(log, "scheduler"))
	if err != nil {
		return err
	}
	if cfg.Schedule.IsEnabled() {
		sched.Start()
	} else {
		log.Info("scheduler disabled")
	}

	e := newEcho(log)
	handlers.RegisterHealthRoutes(e, handlers.NewHealthHandler(st))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("buying-list API", Version))
	handlers.RegisterItemRoutes(api, handlers.NewItemsHandler(st, eng))
	handlers.RegisterSourceRoutes(api, handlers.NewSourcesHandler(eng))
	handlers.RegisterAlertRoutes(api, handlers.NewAlertsHandler(eng))
	handlers.RegisterInsightRoutes(api, handlers.NewInsightsHandler(eng))
	handlers.RegisterCategoryRoutes(api, handlers.NewCategoriesHandler(st))
	handlers.RegisterSettingsRoutes(api, handlers.NewSettingsHandler(st, rescheduler))
	handlers.RegisterTransferRoutes(api, handlers.NewTransferHandler(st, eng, rescheduler))
	handlers.RegisterExtractRoutes(api, handlers.NewExtractHandler(pipeline, fetcher))
	handlers.RegisterRefreshRoutes(api, handlers.NewRefreshHandler(sched))
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(limiter))

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      otelhttp.NewHandler(e, "buying-list"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	log.Info("shutting down server")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	select {
	case <-sched.Stop().Done():
	case <-sctx.Done():
		log.Warn("refresh still running at shutdown")
	}

	log.Info("server stopped")
	return nil
}

func newEcho(log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(
		middleware.Recovery(log),
		middleware.RequestLog(log),
		middleware.Metrics(),
	)
	return e
}

func newPipeline(cfg *config.Config, log *slog.Logger) *extract.Pipeline {
	opts := []extract.PipelineOption{
		extract.WithLogger(logger.Component(log, "extract")),
		extract.WithMaxPrice(decimal.NewFromFloat(cfg.Extraction.MaxPrice)),
	}
	if len(cfg.Extraction.CommonSelectors) > 0 {
		opts = append(opts, extract.WithCommonSelectors(cfg.Extraction.CommonSelectors))
	}
	return extract.NewPipeline(opts...)
}

func newRateLimiter(cfg *config.FetchConfig) *fetch.RateLimiter {
	return fetch.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst, cfg.RateLimit.DailyLimit)
}

func newFetcher(cfg *config.FetchConfig, limiter *fetch.RateLimiter) *fetch.HTTPFetcher {
	return fetch.NewHTTPFetcher(
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithRateLimiter(limiter),
		fetch.WithMaxBodyBytes(cfg.MaxBodyBytes),
	)
}

func newNotifier(cfg *config.NotificationsConfig, log *slog.Logger) notify.Notifier {
	var targets notify.Multi
	if cfg.Discord.Enabled {
		targets = append(targets, notify.NewDiscordNotifier(cfg.Discord.WebhookURL, notify.WithUsername(cfg.Discord.Username)))
	}
	if cfg.Webhook.Enabled {
		targets = append(targets, notify.NewWebhookNotifier(cfg.Webhook.URL, notify.WithHeaders(cfg.Webhook.Headers)))
	}
	if len(targets) == 0 {
		return notify.NewLogNotifier(log)
	}
	return targets
}

// newScheduler builds the refresh scheduler. A configured interval takes
// precedence over the one in settings, and then settings changes do not
// reschedule.
func newScheduler(
	ctx context.Context,
	cfg *config.Config,
	st store.Store,
	eng *engine.Engine,
	log *slog.Logger,
) (*engine.Scheduler, handlers.Rescheduler, error) {
	interval := cfg.Schedule.UpdateInterval
	if interval == 0 {
		settings, err := st.GetSettings(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("loading settings: %w", err)
		}
		interval = settings.UpdateInterval()
	}

	sched, err := engine.NewScheduler(eng, interval, log)
	if err != nil {
		return nil, nil, fmt.Errorf("creating scheduler: %w", err)
	}

	if cfg.Schedule.UpdateInterval > 0 {
		log.Info("update interval fixed by config", "interval", interval)
		return sched, nil, nil
	}
	return sched, sched, nil
}

