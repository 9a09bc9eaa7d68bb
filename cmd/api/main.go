package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanjeevani/pos-api/internal/application/service"
	"github.com/sanjeevani/pos-api/internal/config"
	"github.com/sanjeevani/pos-api/internal/infrastructure/database"
	"github.com/sanjeevani/pos-api/internal/infrastructure/repository"
	"github.com/sanjeevani/pos-api/internal/presentation/http/handler"
	"github.com/sanjeevani/pos-api/internal/presentation/http/routes"
	"github.com/sanjeevani/pos-api/pkg/printer"
	"github.com/sanjeevani/pos-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		logrus.WithError(err).Warn("failed to seed default data")
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Purge expired idempotency keys in the background
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := idempotencyRepo.DeleteExpired(context.Background()); err != nil {
				logrus.WithError(err).Warn("failed to purge expired idempotency keys")
			}
		}
	}()

	// Initialize thermal printer
	thermalPrinter, err := printer.New(
		cfg.Printer.Type,
		cfg.Printer.USBPath,
		cfg.Printer.Address,
	)
	if err != nil {
		logrus.WithError(err).Warn("failed to initialize printer")
		thermalPrinter = printer.NewNullPrinter()
	}

	// Initialize services
	sessions := service.NewSessionRegistry(service.DefaultSessionRegistryConfig())
	authService := service.NewAuthService(userRepo, jwtManager)
	customerService := service.NewCustomerService(customerRepo)
	inventoryService := service.NewInventoryService(productRepo, batchRepo)
	billingService := service.NewBillingService(sessions, batchRepo, customerRepo, invoiceRepo)
	receiptService := service.NewReceiptService(invoiceRepo, thermalPrinter, cfg.App.Name)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Customer:  handler.NewCustomerHandler(customerService),
		Inventory: handler.NewInventoryHandler(inventoryService),
		Billing:   handler.NewBillingHandler(billingService),
		Receipt:   handler.NewReceiptHandler(receiptService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	logrus.WithFields(logrus.Fields{
		"service": cfg.App.Name,
		"env":     cfg.App.Env,
		"port":    port,
	}).Info("starting server")

	if err := router.Run(":" + port); err != nil {
		logrus.WithError(err).Fatal("failed to start server")
	}
}
