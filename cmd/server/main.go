package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/kegledger/backend/internal/application/catalog"
	inventoryapp "github.com/kegledger/backend/internal/application/inventory"
	ledgerapp "github.com/kegledger/backend/internal/application/ledger"
	partnerapp "github.com/kegledger/backend/internal/application/partner"
	"github.com/kegledger/backend/internal/domain/shared"
	"github.com/kegledger/backend/internal/infrastructure/cache"
	"github.com/kegledger/backend/internal/infrastructure/config"
	"github.com/kegledger/backend/internal/infrastructure/event"
	"github.com/kegledger/backend/internal/infrastructure/logger"
	"github.com/kegledger/backend/internal/infrastructure/persistence"
	"github.com/kegledger/backend/internal/infrastructure/telemetry"
	"github.com/kegledger/backend/internal/interfaces/http/handler"
	"github.com/kegledger/backend/internal/interfaces/http/middleware"
	"github.com/kegledger/backend/internal/interfaces/http/router"
	"github.com/kegledger/backend/internal/interfaces/http/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Keg Ledger API
//	@version		1.0
//	@description	Deposit and equipment-loan ledger for kegs, cups and dispensing equipment

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logger.New(cfg.Log)
	telemetryProviders, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Insecure:          cfg.Telemetry.Insecure,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		MetricInterval:    cfg.Telemetry.MetricInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}, log)
	if err != nil {
		log.Fatal("Failed to set up telemetry", zap.Error(err))
	}
	defer func() {
		_ = telemetryProviders.Shutdown(context.Background())
	}()
	if level, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
		log = telemetryProviders.BridgeLogger(log, level)
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting keg ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, driverName := openDatabase(cfg, log)
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	meter := telemetryProviders.Meter("github.com/kegledger/backend")
	if err := telemetry.InstrumentDatabase(db.DB, telemetry.DBConfig{
		Enabled:            telemetryProviders.Enabled() && cfg.Telemetry.DBTraceEnabled,
		DBSystem:           dbSystem(driverName),
		LogFullSQL:         cfg.Telemetry.DBLogFullSQL,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
		TracerProvider:     telemetryProviders.TracerProvider(),
		Meter:              meter,
	}, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	ledgerMetrics, err := telemetry.NewLedgerMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}
	if telemetryProviders.Enabled() && cfg.Telemetry.StockGauges {
		reg, err := telemetry.RegisterStockGauges(meter, telemetry.NewGormStockSnapshotReader(db.DB), log)
		if err != nil {
			log.Fatal("Failed to register stock gauges", zap.Error(err))
		}
		defer func() {
			_ = reg.Unregister()
		}()
	}

	// Repositories
	scope := persistence.NewGormTransactionScope(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	variantRepo := persistence.NewGormVariantRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)
	ruleRepo := persistence.NewGormReorderRuleRepository(db.DB)

	driftReader, err := persistence.NewSqlxLedgerReportReaderFromDatabase(db, driverName)
	if err != nil {
		log.Fatal("Failed to create ledger report reader", zap.Error(err))
	}

	idempotencyStore, err := cache.NewIdempotencyStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idempotencyStore.Close()
	}()

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewLoggingHandler(log))
	eventBus.Subscribe(inventoryapp.NewStockBelowThresholdHandler(log).
		WithNotifier(inventoryapp.NewLoggingStockAlertNotifier(log)))

	// Application services
	clientService := partnerapp.NewClientService(clientRepo)
	clientService.SetEventPublisher(eventBus)

	productService := catalogapp.NewProductService(productRepo, variantRepo, scope, log)
	productService.SetEventPublisher(eventBus)

	stockService := inventoryapp.NewStockService(scope, variantRepo, stockRepo, ruleRepo, log)
	stockService.SetDriftReader(driftReader)
	stockService.SetEventPublisher(eventBus)
	stockService.SetLedgerMetrics(ledgerMetrics)

	movementService := ledgerapp.NewMovementService(scope, movementRepo, log)
	movementService.SetStockWatcher(stockService)
	movementService.SetEventPublisher(eventBus)
	movementService.SetLedgerMetrics(ledgerMetrics)
	movementService.SetIdempotencyStore(idempotencyStore, shared.IdempotencyConfig{
		TTL:     cfg.Ledger.IdempotencyTTL,
		Enabled: cfg.Ledger.IdempotencyEnabled,
	})

	accountService := ledgerapp.NewClientAccountService(scope, clientRepo, movementRepo, log)
	accountService.SetStockWatcher(stockService)
	accountService.SetEventPublisher(eventBus)

	engine, err := server.NewEngine(cfg.HTTP, log, router.Handlers{
		Clients:   handler.NewClientHandler(clientService, accountService),
		Products:  handler.NewProductHandler(productService),
		Movements: handler.NewMovementHandler(movementService),
		Inventory: handler.NewInventoryHandler(stockService),
		System:    handler.NewSystemHandler(db, version),
	}, server.WithTracing(middleware.TracingConfig{
		Enabled:        telemetryProviders.Enabled(),
		ServiceName:    cfg.Telemetry.ServiceName,
		TracerProvider: telemetryProviders.TracerProvider(),
	}))
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := server.New(cfg.App.Port, cfg.HTTP, engine, log)
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// openDatabase connects to the configured database and returns it with the
// database/sql driver name the sqlx reader needs
func openDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, string) {
	if cfg.Database.Driver == "sqlite" {
		db, err := persistence.NewSQLiteDatabase(cfg.Database.SQLitePath)
		if err != nil {
			log.Fatal("Failed to open sqlite database", zap.Error(err))
		}
		log.Warn("Using sqlite; schema is created with AutoMigrate",
			zap.String("path", cfg.Database.SQLitePath))
		return db, "sqlite3"
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQueryThreshold))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	return db, "postgres"
}

func dbSystem(driverName string) string {
	if driverName == "sqlite3" {
		return "sqlite"
	}
	return "postgresql"
}
