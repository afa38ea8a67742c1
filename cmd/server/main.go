package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	dashboardapp "github.com/istlgroup/crm-backend/internal/application/dashboard"
	statsapp "github.com/istlgroup/crm-backend/internal/application/stats"
	"github.com/istlgroup/crm-backend/internal/infrastructure/cache"
	"github.com/istlgroup/crm-backend/internal/infrastructure/config"
	"github.com/istlgroup/crm-backend/internal/infrastructure/logger"
	"github.com/istlgroup/crm-backend/internal/infrastructure/persistence"
	"github.com/istlgroup/crm-backend/internal/infrastructure/scheduler"
	"github.com/istlgroup/crm-backend/internal/interfaces/http/handler"
	"github.com/istlgroup/crm-backend/internal/interfaces/http/middleware"
	"github.com/istlgroup/crm-backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting CRM Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories and readers
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	poReader := persistence.NewGormPurchaseOrderReader(db.DB)
	quoteReader := persistence.NewGormQuotationReader(db.DB)
	vendorReader := persistence.NewGormVendorReader(db.DB)
	billReader := persistence.NewGormBillReader(db.DB)
	invoiceReader := persistence.NewGormInvoicePaymentReader(db.DB)

	// Per-project stats lock (redis or in-memory per config)
	lockFactory := cache.NewProjectLockFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	projectLock, err := lockFactory.Create(cfg.Stats.LockBackend, cfg.Stats.LockTTL)
	if err != nil {
		log.Fatal("Failed to create project lock", zap.Error(err))
	}

	// Application services
	verifier := statsapp.NewVerifier(projectRepo, poReader, log)
	statsService := statsapp.NewService(
		projectRepo,
		poReader,
		quoteReader,
		vendorReader,
		billReader,
		invoiceReader,
		verifier,
		projectLock,
		log,
		cfg.Stats.QueryTimeout,
	)
	dashboardService := dashboardapp.NewService(
		projectRepo,
		poReader,
		quoteReader,
		vendorReader,
		billReader,
		invoiceReader,
		projectLock,
		log,
	)

	// Stats cron scheduler
	cronScheduler, err := scheduler.NewStatsCronScheduler(cfg.Scheduler, statsService, log)
	if err != nil {
		log.Fatal("Failed to create scheduler", zap.Error(err))
	}
	if cfg.Scheduler.Enabled {
		if err := cronScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	} else {
		log.Info("Scheduler disabled by configuration")
	}

	// Initialize HTTP handlers
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	statsHandler := handler.NewStatsHandler(statsService)
	schedulerHandler := handler.NewSchedulerHandler(cronScheduler)

	// Setup gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID, panic recovery, request logging,
	// security headers, CORS
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS())

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	projectRoutes := router.NewDomainGroup("projects", "/projects")
	projectRoutes.GET("/:uid/dashboard", dashboardHandler.GetDashboard)
	projectRoutes.GET("/:uid/dashboard/financial", dashboardHandler.GetFinancialData)
	projectRoutes.GET("/:uid/dashboard/procurement", dashboardHandler.GetProcurementData)
	projectRoutes.POST("/:uid/stats/recalculate", statsHandler.RecalculateProject)
	projectRoutes.POST("/:uid/stats/verify", statsHandler.VerifyProject)
	projectRoutes.POST("/:uid/stats/domain-change", statsHandler.DomainChange)
	projectRoutes.POST("/stats/recalculate-all", statsHandler.RecalculateAll)
	projectRoutes.POST("/stats/fix-inconsistent", statsHandler.FixInconsistent)
	projectRoutes.GET("/stats/stale", statsHandler.ListStale)

	schedulerRoutes := router.NewDomainGroup("scheduler", "/scheduler")
	schedulerRoutes.GET("/status", schedulerHandler.Status)
	schedulerRoutes.POST("/trigger/:job", schedulerHandler.Trigger)

	r.Register(projectRoutes).
		Register(schedulerRoutes)

	r.Setup()

	// Simple ping at root API level for basic liveness checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := cronScheduler.Stop(ctx); err != nil {
		log.Error("Scheduler shutdown error", zap.Error(err))
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
