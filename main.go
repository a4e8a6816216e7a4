package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/audit"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/azure"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/config"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/database"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/events"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/handler"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/middleware"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/pdf"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/repository"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/security"
	"github.com/vcscsvcscs/digital-farm/apps/backend/internal/service"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.Connect(ctx, cfg.Database.URL, database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("Successfully connected to database")

	if cfg.Database.AutoMigrate {
		applied, err := database.NewMigrator(pool, logger).Up(ctx)
		if err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
		logger.Info("Migrations up to date", zap.Int("applied", applied))
	}

	encryptor, err := security.NewEncryptor([]byte(cfg.Security.EncryptionKey))
	if err != nil {
		logger.Fatal("Failed to initialize field encryption", zap.Error(err))
	}

	reportStorage, err := newReportStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize report storage", zap.Error(err))
	}

	// Repositories
	farmerRepo := repository.NewFarmerRepository(pool, encryptor, logger)
	animalRepo := repository.NewAnimalRepository(pool, logger)
	medicineRepo := repository.NewMedicineRepository(pool, logger)
	treatmentRepo := repository.NewTreatmentRepository(pool, logger)
	alertRepo := repository.NewAlertRepository(pool, logger)
	outboxRepo := repository.NewOutboxRepository(pool, logger)
	dashboardRepo := repository.NewDashboardRepository(pool, logger)
	reportRepo := repository.NewReportRepository(pool, logger)

	// Services
	treatmentService := service.NewTreatmentService(treatmentRepo, animalRepo, medicineRepo, logger)
	safetyService := service.NewSafetyService(farmerRepo, animalRepo, alertRepo, logger)
	animalService := service.NewAnimalService(animalRepo, farmerRepo, logger)
	medicineService := service.NewMedicineService(medicineRepo, logger)
	farmerService := service.NewFarmerService(farmerRepo, logger)
	dashboardService := service.NewDashboardService(dashboardRepo, logger)
	reportService := service.NewReportService(
		farmerRepo,
		animalRepo,
		treatmentRepo,
		alertRepo,
		reportRepo,
		reportStorage,
		pdf.NewPDFGenerator(logger),
		logger,
	)
	auditLogger := audit.NewLogger(pool, logger)

	if _, err := handler.LoadOpenAPI(ctx); err != nil {
		logger.Fatal("Embedded OpenAPI document is invalid", zap.Error(err))
	}

	handlers := handler.Handlers{
		Treatments: handler.NewTreatmentHandler(treatmentService, auditLogger, logger),
		Safety:     handler.NewSafetyHandler(safetyService, logger),
		Animals:    handler.NewAnimalHandler(animalService, auditLogger, logger),
		Medicines:  handler.NewMedicineHandler(medicineService, auditLogger, logger),
		Farmers:    handler.NewFarmerHandler(farmerService, auditLogger, logger),
		Dashboard:  handler.NewDashboardHandler(dashboardService, logger),
		Reports:    handler.NewReportHandler(reportService, auditLogger, logger),
		Audit:      handler.NewAuditHandler(auditLogger, logger),
		Health:     handler.NewHealthHandler(pool, logger),
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Recovery must be first
	r.Use(middleware.RecoveryMiddleware(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLoggingMiddleware(logger))
	r.Use(middleware.ErrorLoggingMiddleware(logger))

	verifier := middleware.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	handler.RegisterRoutes(r, handlers, middleware.AuthMiddleware(verifier, logger))

	// Outbox relay
	if cfg.Kafka.Enabled() {
		publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		if err != nil {
			logger.Fatal("Failed to initialize Kafka publisher", zap.Error(err))
		}
		defer publisher.Close()

		relay := events.NewOutboxRelay(outboxRepo, publisher, events.RelayConfig{
			PollInterval: cfg.Kafka.PollInterval,
			BatchSize:    cfg.Kafka.BatchSize,
			MaxRetries:   cfg.Kafka.MaxRetries,
		}, logger)

		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Outbox relay stopped unexpectedly", zap.Error(err))
			}
		}()
	} else {
		logger.Warn("No Kafka brokers configured, withdrawal alert events stay in the outbox")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// newLogger builds a production logger in production and a development one
// otherwise, honouring the configured level and encoding.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = level

	if cfg.Logging.Format == "console" {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zcfg.Encoding = "json"
	}

	return zcfg.Build()
}

// newReportStorage uses Azure Blob Storage when an account is configured and
// keeps reports in memory otherwise.
func newReportStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (azure.ReportStorage, error) {
	if !cfg.Storage.Enabled() {
		logger.Warn("Azure storage not configured, reports are kept in memory")
		return azure.NewMemoryBlobStorage(logger), nil
	}

	client, err := azure.NewBlobStorageClient(
		cfg.Storage.AccountName,
		cfg.Storage.AccountKey,
		cfg.Storage.BlobEndpoint,
		cfg.Storage.ReportContainer,
		logger,
	)
	if err != nil {
		return nil, err
	}
	if err := client.EnsureContainer(ctx); err != nil {
		return nil, err
	}
	return client, nil
}
