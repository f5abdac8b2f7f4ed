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

	financeapp "github.com/backoffice/financeiro/internal/application/finance"
	"github.com/backoffice/financeiro/internal/application/listing"
	"github.com/backoffice/financeiro/internal/application/lookup"
	reportapp "github.com/backoffice/financeiro/internal/application/report"
	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/infrastructure/cache"
	"github.com/backoffice/financeiro/internal/infrastructure/config"
	"github.com/backoffice/financeiro/internal/infrastructure/logger"
	"github.com/backoffice/financeiro/internal/infrastructure/migration"
	"github.com/backoffice/financeiro/internal/infrastructure/persistence"
	"github.com/backoffice/financeiro/internal/infrastructure/storage"
	"github.com/backoffice/financeiro/internal/infrastructure/telemetry"
	"github.com/backoffice/financeiro/internal/interfaces/http/handler"
	"github.com/backoffice/financeiro/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	telemetry.ServiceVersion = version
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if providers.Logs.IsEnabled() {
		console, err := logger.NewCore(logCfg)
		if err != nil {
			log.Fatal("Failed to build console log core", zap.Error(err))
		}
		log = providers.Logs.Bridge(console, logger.ParseLevel(cfg.Log.Level), zap.AddCaller())
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Error("Telemetry shutdown incomplete", zap.Error(err))
		}
		_ = log.Sync()
	}()

	log.Info("Starting financeiro",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	store, closeStore := openStore(cfg, log)
	defer closeStore()

	lookupCache, err := cache.NewLookupCacheFactory(cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to create lookup cache", zap.Error(err))
	}
	defer func() {
		if err := lookupCache.Close(); err != nil {
			log.Error("Error closing lookup cache", zap.Error(err))
		}
	}()
	subCtx, stopSubscription := context.WithCancel(ctx)
	defer stopSubscription()
	go func() {
		if err := lookupCache.Subscribe(subCtx); err != nil && subCtx.Err() == nil {
			log.Warn("Lookup cache invalidation subscription stopped", zap.Error(err))
		}
	}()

	var receipts financeapp.ReceiptStorage
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3ReceiptStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize receipt storage", zap.Error(err))
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Warn("Receipt bucket check failed", zap.String("bucket", s3.Bucket()), zap.Error(err))
		}
		receipts = s3
	}

	meter := providers.Metrics.Meter(telemetry.TracerName)
	var metrics listing.Metrics
	if lm, err := telemetry.NewListingMetrics(meter); err != nil {
		log.Warn("Listing metrics disabled", zap.Error(err))
	} else {
		metrics = lm
	}

	resolver := lookup.NewResolver(store, lookupCache, log)
	opts := financeapp.Options{
		PageSize: cfg.List.PageSize,
		Debounce: cfg.List.Debounce,
		Metrics:  metrics,
		Logger:   log,
	}
	receivableService := financeapp.NewReceivableService(store, resolver, opts)
	payableService := financeapp.NewPayableService(store, resolver, opts)
	movementService := financeapp.NewMovementService(store, resolver, receipts, opts)
	catalogService := financeapp.NewCatalogService(store, resolver, log)
	reportService := reportapp.NewReportService(store, resolver, reportapp.Options{
		TopN:           cfg.Report.TopN,
		MaxMonths:      cfg.Report.MaxMonths,
		TrailingMonths: cfg.Report.TrailingMonths,
		Logger:         log,
	})
	exportService := reportapp.NewExportService(reportService, receivableService, payableService, movementService, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.NewEngine(router.EngineOptions{
		App:       cfg.App,
		HTTP:      cfg.HTTP,
		Telemetry: cfg.Telemetry,
		Logger:    log,
		Meter:     meter,
	}, router.Handlers{
		Receivables: handler.NewReceivableHandler(receivableService),
		Payables:    handler.NewPayableHandler(payableService),
		Movements:   handler.NewMovementHandler(movementService),
		Catalog:     handler.NewCatalogHandler(catalogService),
		Reports:     handler.NewReportHandler(reportService, exportService),
		System:      handler.NewSystemHandler(store, cfg.App.Name, version),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

// openStore connects the configured database and brings its schema up to
// date. Without a database the server still starts; every store call then
// reports ErrStoreUnavailable.
func openStore(cfg *config.Config, log *zap.Logger) (datastore.Store, func()) {
	if !cfg.Database.Configured() {
		log.Warn("No database configured, serving without a data store")
		return datastore.Unavailable{}, func() {}
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.SQL),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}

	dbSystem := "postgresql"
	if cfg.Database.Driver == config.DriverSQLite {
		dbSystem = "sqlite"
	}
	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, log)
	if err := plugin.Register(db.DB); err != nil {
		log.Warn("Database tracing disabled", zap.Error(err))
	}

	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to create sqlite schema", zap.Error(err))
		}
	} else {
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatal("Failed to access database handle", zap.Error(err))
		}
		m, err := migration.New(sqlDB, log)
		if err != nil {
			log.Fatal("Failed to create migrator", zap.Error(err))
		}
		if err := m.Up(); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))
	return persistence.NewStore(db), closeDB
}
