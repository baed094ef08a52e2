package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/tcc"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/usecase/charging"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/usecase/outbox"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/usecase/payment"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/usecase/points"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/usecase/settlement"
	"github.com/amirhossein-jamali/charging-settlement/internal/domain/usecase/workflow"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/database/migration"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/messaging"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/repository"
	timeProvider "github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/config"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/scheduler"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate essential configuration
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create logger
	appLogger := logger.NewZapLogger(cfg.Environment == config.Production)

	// Initialize time provider
	tp := timeProvider.NewRealTimeProvider()

	// Connect to the database
	dbConfig := database.CreateConfigFromAppConfig(cfg)
	dbManager := database.NewManager(dbConfig, appLogger, tp)
	if _, err := dbManager.Connect(); err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			appLogger.Warn("Failed to close database connection", map[string]any{
				"error": err.Error(),
			})
		}
	}()

	// Run migrations
	if err := dbManager.MigrationManager().MigrateAll(); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Seed demo accounts
	accountRepo := repository.NewAccountRepository(dbManager.DB(), tp, appLogger)
	if err := migration.CreateDefaultAccounts(context.Background(), accountRepo, tp); err != nil {
		appLogger.Error("Failed to create default accounts", map[string]any{
			"error": err.Error(),
		})
	}

	// Connect to the message broker
	mqConfig := messaging.CreateConfigFromAppConfig(cfg)
	brokerConn := messaging.NewConnection(mqConfig, appLogger)
	if err := brokerConn.Connect(); err != nil {
		appLogger.Error("Failed to connect to message broker", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer func() {
		if err := brokerConn.Close(); err != nil {
			appLogger.Warn("Failed to close broker connection", map[string]any{
				"error": err.Error(),
			})
		}
	}()
	publisher := messaging.NewPublisher(brokerConn, appLogger)

	// Unit of work (transaction manager)
	uow := dbManager.CreateUnitOfWork()

	// Saga participants and workflow
	coordinator := tcc.NewCoordinator(uow, appLogger, tp)
	paymentParticipant := payment.NewParticipant(uow, appLogger, tp)
	chargingParticipant := charging.NewParticipant(
		uow,
		charging.FixedRateOutcome(cfg.Workflow.ChargingSuccessRate),
		appLogger,
		tp,
	)
	chargeWorkflow := workflow.NewChargeWorkflow(coordinator, paymentParticipant, chargingParticipant, appLogger)

	// Settlement and points services
	policy, err := entity.NewPointsPolicy(cfg.Points.Mode, cfg.Points.Ratio)
	if err != nil {
		appLogger.Warn("Invalid points policy, using default", map[string]any{
			"error": err.Error(),
		})
		policy = entity.DefaultPointsPolicy()
	}
	settlementService := settlement.NewService(uow, policy, appLogger, tp)
	pointsService := points.NewService(uow, appLogger, tp)

	// Reconciliation supervisor
	recordRepo := repository.NewTransactionRecordRepository(dbManager.DB(), tp, appLogger)
	supervisor := tcc.NewSupervisor(
		coordinator,
		[]tcc.Participant{paymentParticipant, chargingParticipant},
		[]tcc.StuckFinder{paymentParticipant, chargingParticipant},
		chargingParticipant.OrderState,
		recordRepo,
		cfg.Supervisor.StuckTimeout,
		appLogger,
		tp,
	)
	supervisorTask := scheduler.NewPeriodicTask(
		"reconciliation-supervisor",
		cfg.Supervisor.ScanInterval,
		supervisor.RunOnce,
		appLogger,
	)

	// Outbox relay
	outboxRepo := repository.NewOutboxRepository(dbManager.DB(), tp, appLogger)
	relay := outbox.NewRelay(outboxRepo, publisher, outbox.Config{
		RoutingKey:      mqConfig.PointsRoutingKey,
		BatchSize:       cfg.Outbox.BatchSize,
		MaxRetry:        cfg.Outbox.MaxRetry,
		PublishAttempts: uint64(cfg.Outbox.PublishAttempts),
	}, appLogger, tp)
	relayTask := scheduler.NewPeriodicTask(
		"outbox-relay",
		cfg.Outbox.ScanInterval,
		relay.RunOnce,
		appLogger,
	)

	// Background workers and consumers share one lifecycle context
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	supervisorTask.Start(workerCtx)
	relayTask.Start(workerCtx)

	pointsConsumer := messaging.NewPointsConsumer(brokerConn, pointsService, appLogger)
	if err := pointsConsumer.Start(workerCtx); err != nil {
		appLogger.Error("Failed to start points consumer", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	deadLetterConsumer := messaging.NewDeadLetterConsumer(brokerConn, pointsService, appLogger)
	if err := deadLetterConsumer.Start(workerCtx); err != nil {
		appLogger.Error("Failed to start dead-letter consumer", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Initialize API handlers
	chargeHandler := handler.NewChargeHandler(chargeWorkflow, appLogger)
	settlementHandler := handler.NewSettlementHandler(settlementService, appLogger)
	pointsHandler := handler.NewPointsHandler(pointsService, appLogger)

	// Initialize Gin router
	router := gin.New()
	routes.SetupMiddlewares(router, appLogger)
	routes.SetupRoutes(router, chargeHandler, settlementHandler, pointsHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port": cfg.Server.Port,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop accepting requests first, then drain background workers so an
	// in-flight repair or relay cycle finishes before connections close
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	supervisorTask.Stop()
	relayTask.Stop()
	stopWorkers()

	appLogger.Info("Server exited gracefully", nil)
}

// validateConfig ensures all required configuration values are present
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}
	if cfg.Server.ReadTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.readTimeout")
	}
	if cfg.Server.WriteTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.writeTimeout")
	}
	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}

	if cfg.Database.Host == "" && os.Getenv("CS_DB_HOST") == "" {
		missingConfigs = append(missingConfigs, "database.host (or CS_DB_HOST environment variable)")
	}
	if cfg.Database.Database == "" && os.Getenv("CS_DB_NAME") == "" {
		missingConfigs = append(missingConfigs, "database.database (or CS_DB_NAME environment variable)")
	}
	if cfg.Database.Username == "" && os.Getenv("CS_DB_USERNAME") == "" {
		missingConfigs = append(missingConfigs, "database.username (or CS_DB_USERNAME environment variable)")
	}

	if cfg.RabbitMQ.Host == "" && os.Getenv("CS_MQ_HOST") == "" {
		missingConfigs = append(missingConfigs, "rabbitmq.host (or CS_MQ_HOST environment variable)")
	}

	if cfg.Supervisor.ScanInterval == 0 {
		missingConfigs = append(missingConfigs, "supervisor.scanInterval")
	}
	if cfg.Supervisor.StuckTimeout == 0 {
		missingConfigs = append(missingConfigs, "supervisor.stuckTimeout")
	}
	if cfg.Outbox.ScanInterval == 0 {
		missingConfigs = append(missingConfigs, "outbox.scanInterval")
	}

	if cfg.Workflow.ChargingSuccessRate < 0 || cfg.Workflow.ChargingSuccessRate > 1 {
		return fmt.Errorf("workflow.chargingSuccessRate must be between 0 and 1, got %v",
			cfg.Workflow.ChargingSuccessRate)
	}

	if cfg.Environment == "" {
		missingConfigs = append(missingConfigs, "environment")
	} else if cfg.Environment != config.Development &&
		cfg.Environment != config.Production &&
		cfg.Environment != config.Test {
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	if cfg.Logger.Level == "" {
		missingConfigs = append(missingConfigs, "logger.level")
	}

	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	if cfg.Environment == config.Production {
		var warnings []string

		if cfg.Database.SSLMode != "require" && cfg.Database.SSLMode != "verify-ca" && cfg.Database.SSLMode != "verify-full" {
			warnings = append(warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
		}
		if cfg.Server.ReadTimeout < 5*time.Second {
			warnings = append(warnings, "server.readTimeout is too low for production")
		}
		if cfg.Server.WriteTimeout < 5*time.Second {
			warnings = append(warnings, "server.writeTimeout is too low for production")
		}

		if len(warnings) > 0 {
			log.Printf("Warning: potential issues in production configuration: %v", warnings)
		}
	}

	return nil
}
