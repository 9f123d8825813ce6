package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/cleanline/opsdesk/internal/app"
	"github.com/cleanline/opsdesk/internal/auth"
	"github.com/cleanline/opsdesk/internal/integration/orders"
	"github.com/cleanline/opsdesk/internal/observability"
	"github.com/cleanline/opsdesk/internal/platform/cache"
	"github.com/cleanline/opsdesk/internal/platform/db"
	"github.com/cleanline/opsdesk/internal/pricing"
	"github.com/cleanline/opsdesk/internal/view"
	"github.com/cleanline/opsdesk/internal/workshop"
	"github.com/cleanline/opsdesk/jobs"
	"github.com/cleanline/opsdesk/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns, MaxConnIdleTime: 5 * time.Minute})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisOpts := cfg.RedisOptions()
	redisClient, err := cache.New(ctx, redisOpts)
	if err != nil {
		// The order cache degrades to direct backend calls without Redis.
		logger.Warn("redis unavailable, order cache disabled", slog.Any("error", err))
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	authService, err := auth.NewService(cfg.APITokenHash)
	if err != nil {
		logger.Error("init api token", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	pdfClient := report.NewClient(cfg.GotenbergURL, 30*time.Second)

	jobClient, err := jobs.NewClient(redisOpts.QueueOpt())
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts.QueueOpt())
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("asynq inspector close", slog.Any("error", err))
		}
	}()

	orderClient := orders.NewClient(cfg.OrderAPIURL, cfg.OrderAPIKey, cfg.OrderAPITimeout)
	var orderCache *cache.Versioned
	if redisClient != nil {
		orderCache = cache.NewVersioned(redisClient, "orders", cfg.OrderCacheTTL)
	}
	orderBackend := orders.NewCachedClient(orderClient, orderCache, logger)

	tax := pricing.TaxExclusive
	if cfg.PricesIncGST {
		tax = pricing.TaxInclusive
	}
	pricingService := pricing.NewService(orderBackend, tax, logger).WithRecorder(metrics)
	pricingHandler := pricing.NewHandler(logger, pricingService)

	workshopRepo := workshop.NewRepository(dbpool)
	workshopService := workshop.NewService(workshopRepo, workshop.ServiceConfig{
		Notifier:  jobClient,
		Metrics:   metrics,
		Templates: templates,
		PDF:       pdfClient,
		Logger:    logger,
	})
	workshopHandler := workshop.NewHandler(logger, workshopService)

	jobHandler := jobs.NewHandler(inspector, jobClient, cfg.StaleJobAfter, logger)
	reportHandler := report.NewHandler(map[string]report.Pinger{
		"gotenberg": pdfClient,
		"order_api": orderClient,
		"postgres":  dbpool,
	}, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Auth:            authService,
		WorkshopHandler: workshopHandler,
		PricingHandler:  pricingHandler,
		JobHandler:      jobHandler,
		ReportHandler:   reportHandler,
		Metrics:         metrics,
		Pool:            dbpool,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
