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

	"github.com/mailom-erp/mailom-erp/internal/analytics"
	analytichttp "github.com/mailom-erp/mailom-erp/internal/analytics/http"
	"github.com/mailom-erp/mailom-erp/internal/app"
	"github.com/mailom-erp/mailom-erp/internal/audit"
	audithttp "github.com/mailom-erp/mailom-erp/internal/audit/http"
	"github.com/mailom-erp/mailom-erp/internal/auth"
	"github.com/mailom-erp/mailom-erp/internal/importer"
	"github.com/mailom-erp/mailom-erp/internal/inventory"
	"github.com/mailom-erp/mailom-erp/internal/masterdata/costcategories"
	"github.com/mailom-erp/mailom-erp/internal/masterdata/gardens"
	"github.com/mailom-erp/mailom-erp/internal/masterdata/treenames"
	"github.com/mailom-erp/mailom-erp/internal/observability"
	"github.com/mailom-erp/mailom-erp/internal/platform/cache"
	"github.com/mailom-erp/mailom-erp/internal/platform/db"
	"github.com/mailom-erp/mailom-erp/internal/purchases"
	"github.com/mailom-erp/mailom-erp/internal/rbac"
	"github.com/mailom-erp/mailom-erp/internal/sales"
	"github.com/mailom-erp/mailom-erp/internal/sales/customers"
	"github.com/mailom-erp/mailom-erp/internal/shared"
	"github.com/mailom-erp/mailom-erp/internal/users"
	"github.com/mailom-erp/mailom-erp/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// Sessions live in redis, so the API cannot come up without it.
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

	sessionManager := shared.NewSessionManager(redisClient, "mailom_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)

	rbacService := rbac.NewService(pool)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	authService := auth.NewService(auth.NewRepository(pool))
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	usersService := users.NewService(users.NewRepository(pool), auditLogger)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	gardensService := gardens.NewService(gardens.NewRepository(pool))
	gardensHandler := gardens.NewHandler(logger, gardensService, rbacMiddleware)

	categoriesService := costcategories.NewService(costcategories.NewRepository(pool))
	categoriesHandler := costcategories.NewHandler(logger, categoriesService, rbacMiddleware)

	treeNamesService := treenames.NewService(treenames.NewRepository(pool))
	treeNamesHandler := treenames.NewHandler(logger, treeNamesService, rbacMiddleware)

	analyticsCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	analyticsService := analytics.NewService(logger, analytics.NewRepo(pool), analyticsCache)
	analyticsHandler := analytichttp.NewHandler(logger, analyticsService)
	if err := analyticsCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("analytics invalidation listener", slog.Any("error", err))
	}

	purchasesService := purchases.NewService(purchases.NewRepository(pool), auditLogger, analyticsService)
	purchasesHandler := purchases.NewHandler(logger, purchasesService, rbacMiddleware)

	inventoryService := inventory.NewService(inventory.NewRepository(pool), auditLogger, analyticsService)
	inventoryHandler := inventory.NewHandler(logger, inventoryService, rbacMiddleware)

	salesService := sales.NewService(sales.NewRepository(pool), inventoryService, auditLogger, analyticsService)
	salesHandler := sales.NewHandler(logger, salesService, rbacMiddleware)

	customersService := customers.NewService(customers.NewRepository(pool))
	customersHandler := customers.NewHandler(logger, customersService, rbacMiddleware)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	auditService := audit.NewService(audit.NewRepo(pool))
	auditHandler := audithttp.NewHandler(logger, auditService)

	importerService := importer.NewService(logger, importer.NewRepo(pool), auditLogger, analyticsService)
	importerHandler := importer.NewHandler(logger, importerService, jobsClient, rbacMiddleware, cfg.ImportMaxFileSize)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		RBACMiddleware: rbacMiddleware,
		Metrics:        metrics,

		AuthHandler:         authHandler,
		UsersHandler:        usersHandler,
		GardensHandler:      gardensHandler,
		CostCategoryHandler: categoriesHandler,
		TreeNamesHandler:    treeNamesHandler,
		PurchasesHandler:    purchasesHandler,
		InventoryHandler:    inventoryHandler,
		SalesHandler:        salesHandler,
		CustomersHandler:    customersHandler,
		AnalyticsHandler:    analyticsHandler,
		AuditHandler:        auditHandler,
		ImporterHandler:     importerHandler,
		JobsHandler:         jobsHandler,
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
