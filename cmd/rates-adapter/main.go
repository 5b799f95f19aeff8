package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/clearbook-finance/rates-adapter/internal/api"
	"github.com/clearbook-finance/rates-adapter/internal/config"
	"github.com/clearbook-finance/rates-adapter/internal/fred"
	"github.com/clearbook-finance/rates-adapter/internal/jobs"
	"github.com/clearbook-finance/rates-adapter/internal/publisher"
	"github.com/clearbook-finance/rates-adapter/internal/rate"
	internalsecrets "github.com/clearbook-finance/rates-adapter/internal/secrets"
	"github.com/clearbook-finance/rates-adapter/internal/store"
	"github.com/clearbook-finance/rates-adapter/internal/surface"
	"github.com/clearbook-finance/rates-adapter/pkg/logger"
	"github.com/clearbook-finance/rates-adapter/pkg/secrets"
	"github.com/clearbook-finance/rates-adapter/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [rates-adapter]...")
	if cfg.DatabaseURL != "" {
		logg.Info("connection to DSN: ", utils.MaskDSN(cfg.DatabaseURL))
	}

	// --- Provider config resolver (secret cached in-memory) ---
	var resolver fred.ConfigResolver
	stopCleaner := make(chan struct{})
	awsProvider, err := secrets.NewAWSProvider(cfg.AWSRegion)
	if err != nil {
		logg.Warnw("AWS Secrets Manager unavailable, using env provider config", "error", err)
	} else {
		configCache := secrets.NewCache[*fred.ProviderConfig](cfg.CacheTTL)
		go configCache.StartCleaner(cfg.CleanupFreq, stopCleaner)

		r := internalsecrets.NewResolver(
			logg.Desugar(),
			awsProvider,
			configCache,
			cfg.Env,
			fred.ProviderConfig{
				FREDBaseURL:     cfg.FREDBaseURL,
				DividendBaseURL: cfg.DividendBaseURL,
			},
		)
		if names, err := r.DiscoverSecrets(ctx); err != nil {
			logg.Warnw("secret discovery failed, continuing with configured key", "error", err)
		} else {
			logg.Infow("discovered provider secrets", "count", len(names))
		}
		resolver = r
	}

	// --- Connect to NATS ---
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		logg.Fatalw("failed to connect to NATS", "error", err)
	}

	// --- Publisher ---
	pub, err := publisher.New(nc, cfg.OutboundSubject, cfg.ServiceName)
	if err != nil {
		logg.Fatalw("failed to init publisher", "error", err)
	}

	// --- Rate limiter ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: 5, // FRED throttles aggressive scrapers
		Burst:             10,
	})

	// --- Store (Redis + Postgres hybrid) ---
	st, err := store.NewHybrid(cfg.RedisAddr, cfg.RedisDB, cfg.DatabaseURL, store.PGPoolConfig{
		MaxConns:          int32(cfg.PGMaxConns),
		MinConns:          int32(cfg.PGMinConns),
		MaxConnLifetime:   cfg.PGMaxConnLifetime,
		MaxConnIdleTime:   cfg.PGMaxConnIdleTime,
		HealthCheckPeriod: cfg.PGHealthCheckPeriod,
	}, logg.Desugar())
	if err != nil {
		logg.Fatalw("failed to init store", "error", err)
	}

	// --- Fetch pipeline ---
	client := fred.NewClient(logg.Desugar(), rateMgr)
	fetcher := fred.NewFetcher(logg.Desugar(), client, st, cfg.RawCacheTTL)
	holder := &surface.Holder{}
	svc := fred.NewService(*cfg, logg.Desugar(), fetcher, resolver, st, pub, holder)

	// --- Initial build ---
	// Queries 503 until the first snapshot lands; startup does not block on
	// slow providers.
	if cfg.RebuildOnStart {
		go func() {
			if _, err := svc.Rebuild(ctx); err != nil {
				logg.Errorw("initial surface build failed, refresher will retry", "error", err)
			}
		}()
	}

	// --- Periodic refresher with NATS command trigger ---
	refresher := jobs.NewSurfaceRefresher(logg.Desugar(), nc, svc, cfg.CommandSubject, cfg.RefreshInterval)
	go refresher.Start(ctx)

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	})

	handler := api.NewSurfaceHandler(logg.Desugar(), holder, svc, st)
	api.RegisterRoutes(app, nc, st, handler)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[rates-adapter] running",
		"nats", cfg.NATSURL,
		"env", cfg.Env,
		"earliest_date", cfg.EarliestDate.Format("2006-01-02"),
		"refresh_interval", cfg.RefreshInterval)

	<-ctx.Done()
	logg.Info("shutting down [rates-adapter]...")

	close(stopCleaner)
	refresher.Stop()
	if err := app.Shutdown(); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if err := st.Close(); err != nil {
		logg.Warnw("store.close_failed", "error", err)
	}
	pub.Close()
	logg.Info("[rates-adapter] stopped")
}
