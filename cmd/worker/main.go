package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cleanline/opsdesk/internal/app"
	"github.com/cleanline/opsdesk/internal/integration/orders"
	jobmetrics "github.com/cleanline/opsdesk/internal/jobs"
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
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts := cfg.RedisOptions()
	redisClient, err := cache.New(ctx, redisOpts)
	if err != nil {
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := jobmetrics.NewMetrics(registry)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	workshopService := workshop.NewService(workshop.NewRepository(pool), workshop.ServiceConfig{
		Templates: templates,
		PDF:       report.NewClient(cfg.GotenbergURL, time.Minute),
		Logger:    logger,
	})

	var orderCache *cache.Versioned
	if redisClient != nil {
		orderCache = cache.NewVersioned(redisClient, "orders", cfg.OrderCacheTTL)
	}
	tax := pricing.TaxExclusive
	if cfg.PricesIncGST {
		tax = pricing.TaxInclusive
	}
	pricingService := pricing.NewService(
		orders.NewCachedClient(orders.NewClient(cfg.OrderAPIURL, cfg.OrderAPIKey, cfg.OrderAPITimeout), orderCache, logger),
		tax,
		logger,
	)

	statusJob := &jobs.StatusChangedJob{
		Dockets:    workshopService,
		StorageDir: cfg.DocketStorageDir,
		Logger:     logger,
		Metrics:    metrics,
	}
	staleJob := &jobs.StaleScanJob{
		Jobs:       workshopService,
		Pricer:     pricingService,
		DefaultAge: cfg.StaleJobAfter,
		Logger:     logger,
		Metrics:    metrics,
	}

	staleTask, err := jobs.NewStaleScanTask(cfg.StaleJobAfter)
	if err != nil {
		logger.Error("build stale scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpts.QueueOpt(),
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskWorkshopStatusChanged, Handler: statusJob.Handle},
			{Type: jobs.TaskWorkshopStaleScan, Handler: staleJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.StaleScanCron, Task: staleTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:              cfg.WorkerMetricsAddr,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving worker metrics", slog.String("addr", cfg.WorkerMetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("worker metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
