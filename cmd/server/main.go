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

	distributionapp "github.com/storelink/backend/internal/application/distribution"
	notificationapp "github.com/storelink/backend/internal/application/notification"
	"github.com/storelink/backend/internal/domain/distribution"
	"github.com/storelink/backend/internal/domain/notification"
	"github.com/storelink/backend/internal/domain/shared"
	"github.com/storelink/backend/internal/infrastructure/cache"
	"github.com/storelink/backend/internal/infrastructure/config"
	"github.com/storelink/backend/internal/infrastructure/event"
	"github.com/storelink/backend/internal/infrastructure/logger"
	"github.com/storelink/backend/internal/infrastructure/persistence"
	"github.com/storelink/backend/internal/infrastructure/scheduler"
	"github.com/storelink/backend/internal/infrastructure/storefront"
	"github.com/storelink/backend/internal/infrastructure/telemetry"
	"github.com/storelink/backend/internal/interfaces/http/handler"
	"github.com/storelink/backend/internal/interfaces/http/middleware"
	"github.com/storelink/backend/internal/interfaces/http/router"
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

	log.Info("Starting StoreLink Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing (no-op provider when disabled)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

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

	if err := telemetry.RegisterDBTracing(db.DB, tracerProvider, log); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	destinationRepo := persistence.NewGormDestinationRepository(db.DB)
	syncRecordRepo := persistence.NewGormSyncRecordRepository(db.DB)
	overrideRepo := persistence.NewGormOverrideRepository(db.DB)
	assignmentRepo := persistence.NewGormAssignmentRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	poolReader := persistence.NewGormVariantPoolReader(db.DB)

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Idempotency store for event dedup: Redis when reachable, with an
	// in-memory fallback
	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis).CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Notification feed: preload the most recent entries so the dashboard
	// view survives restarts
	feed := notification.NewFeed(notificationRepo, notification.WithFeedLimit(cfg.Notification.FeedLimit))
	if err := feed.Load(context.Background()); err != nil {
		log.Warn("Failed to preload notification feed", zap.Error(err))
	}

	// Relay sync lifecycle events into the notification feed, deduplicated
	// by event ID so redeliveries do not produce duplicate notifications
	relay := notificationapp.NewRelay(notificationRepo, feed, log)
	idempotentRelay := event.NewIdempotentHandler(relay, idempotencyStore, log,
		event.WithIdempotencyConfig(shared.IdempotencyConfig{
			TTL:     cfg.Notification.IdempotencyTTL,
			Enabled: true,
		}),
	)
	eventBus.Subscribe(idempotentRelay)
	log.Info("Notification relay registered", zap.Strings("event_types", relay.EventTypes()))

	// Storefront client registry and the sync domain services
	registry := storefront.NewRegistry(cfg.Storefront, log)
	ledger := distribution.NewLedger(syncRecordRepo)
	pool := distribution.NewInventoryPool(poolReader, assignmentRepo)
	orchestrator := distribution.NewOrchestrator(registry, pool, ledger, log,
		distribution.WithWorkerLimit(cfg.Sync.WorkerLimit),
		distribution.WithJobTimeout(cfg.Sync.JobTimeout),
		distribution.WithEventPublisher(eventBus),
	)

	// Initialize application services
	syncService := distributionapp.NewSyncService(
		productRepo, destinationRepo, overrideRepo, assignmentRepo,
		orchestrator, ledger, pool,
	)
	destinationService := distributionapp.NewDestinationService(destinationRepo, ledger, eventBus, log)
	notificationService := notificationapp.NewNotificationService(notificationRepo, feed)
	stalePendingService := distributionapp.NewStalePendingService(syncRecordRepo, cfg.Sync.StalePendingAge, log)

	// Background sweeper resolves sync records stuck in pending
	if cfg.Scheduler.Enabled {
		sweeper := scheduler.NewStalePendingSweeper(stalePendingService, cfg.Scheduler, log)
		if err := sweeper.Start(context.Background()); err != nil {
			log.Fatal("Failed to start stale-pending sweeper", zap.Error(err))
		}
		defer func() {
			if err := sweeper.Stop(context.Background()); err != nil {
				log.Error("Error stopping stale-pending sweeper", zap.Error(err))
			}
		}()
		log.Info("Stale-pending sweeper started",
			zap.Duration("sweep_interval", cfg.Scheduler.SweepInterval),
			zap.Duration("stale_pending_age", cfg.Sync.StalePendingAge),
		)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Assemble the HTTP surface
	engine := router.New(log, router.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		CORS: middleware.CORSConfig{
			AllowOrigins:  cfg.HTTP.CORSAllowOrigins,
			AllowMethods:  cfg.HTTP.CORSAllowMethods,
			AllowHeaders:  cfg.HTTP.CORSAllowHeaders,
			ExposeHeaders: []string{"X-Request-ID"},
			MaxAge:        12 * time.Hour,
		},
		MaxBodyBytes: cfg.HTTP.MaxBodySize,
		Tracing:      cfg.Telemetry.Enabled,
	}, router.Handlers{
		Sync:         handler.NewSyncHandler(syncService),
		Destination:  handler.NewDestinationHandler(destinationService),
		Notification: handler.NewNotificationHandler(notificationService),
		System:       handler.NewSystemHandler(db),
	})

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

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

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
