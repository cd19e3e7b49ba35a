package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sana-bookkeeping/internal/api_gateway"
	"github.com/sana-bookkeeping/internal/api_gateway/service"
	"github.com/sana-bookkeeping/internal/assistant"
	"github.com/sana-bookkeeping/internal/config"
	mongodata "github.com/sana-bookkeeping/internal/data/mongo"
	"github.com/sana-bookkeeping/internal/data/postgres"
	"github.com/sana-bookkeeping/internal/importer"
	"github.com/sana-bookkeeping/internal/logger"
	"github.com/sana-bookkeeping/internal/platform/messaging/producers"
	"github.com/sana-bookkeeping/internal/platform/persistence"
	"github.com/sana-bookkeeping/internal/platform/storage"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg, "api_gateway")

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize document file storage
	fileStorage, err := storage.New(appCtx, &cfg.Storage)
	if err != nil {
		log.Error("Failed to initialize document storage", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer for reconciliation requests
	kafkaProducer, err := producers.NewReconciliationReqMessageProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize reconciliation Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	companyRepo := postgres.NewCompanyRepository(log, postgresDB)
	documentRepo := postgres.NewDocumentRepository(log, postgresDB)
	bankTxnRepo := postgres.NewBankTxnRepository(log, postgresDB)
	entryRepo := postgres.NewEntryRepository(log, postgresDB)
	outboxRepo := postgres.NewAuditOutboxRepository(log, postgresDB)
	auditStore := mongodata.NewAuditRepository(log, mongoDB.Database())

	// Initialize services
	companyService := service.NewCompanyService(companyRepo)
	documentService := service.NewDocumentService(log, postgresDB, companyRepo, documentRepo, outboxRepo, fileStorage, kafkaProducer)
	transactionService := service.NewTransactionService(log, postgresDB, companyRepo, bankTxnRepo, outboxRepo, importer.NewImporter(log))
	entryService := service.NewEntryService(log, postgresDB, entryRepo, outboxRepo)
	auditService := service.NewAuditService(auditStore)

	// Initialize the chat assistant when enabled
	var chatAssistant *assistant.Assistant
	if cfg.Assistant.Enabled {
		chatAssistant, err = assistant.NewAssistant(appCtx, log, &cfg.Assistant)
		if err != nil {
			log.Error("Failed to initialize assistant", "error", err)
			os.Exit(1)
		}
	}

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, companyService, documentService, transactionService, entryService, auditService, chatAssistant)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = kafkaProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
