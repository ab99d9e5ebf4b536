package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mailom-erp/mailom-erp/internal/analytics"
	"github.com/mailom-erp/mailom-erp/internal/app"
	"github.com/mailom-erp/mailom-erp/internal/importer"
	"github.com/mailom-erp/mailom-erp/internal/inventory"
	"github.com/mailom-erp/mailom-erp/internal/platform/cache"
	"github.com/mailom-erp/mailom-erp/internal/platform/db"
	"github.com/mailom-erp/mailom-erp/internal/shared"
	"github.com/mailom-erp/mailom-erp/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)

	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	analyticsService := analytics.NewService(logger, analytics.NewRepo(pool), analyticsCache)
	if err := analyticsCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("analytics invalidation listener", slog.Any("error", err))
	}

	inventoryService := inventory.NewService(inventory.NewRepository(pool), auditLogger, analyticsService)
	importerService := importer.NewService(logger, importer.NewRepo(pool), auditLogger, analyticsService)

	importJob := jobs.NewExcelImportJob(importerService, logger, nil)
	warmupJob := jobs.NewAnalyticsWarmupJob(analyticsService, logger, nil)
	deadStockJob := jobs.NewDeadStockScanJob(inventoryService, logger, nil)

	warmupTask, err := jobs.NewAnalyticsWarmupTask(time.Now().UTC())
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	deadStockTask, err := jobs.NewDeadStockScanTask(int(cfg.DeadStockAfter.Hours() / 24))
	if err != nil {
		logger.Error("build dead stock task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskExcelImport, Handler: importJob.Handle},
			{Type: jobs.TaskAnalyticsWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskDeadStockScan, Handler: deadStockJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "45 1 * * *", Task: deadStockTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
