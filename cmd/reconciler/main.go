package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sana-bookkeeping/internal/config"
	mongodata "github.com/sana-bookkeeping/internal/data/mongo"
	"github.com/sana-bookkeeping/internal/data/postgres"
	"github.com/sana-bookkeeping/internal/extraction"
	"github.com/sana-bookkeeping/internal/logger"
	"github.com/sana-bookkeeping/internal/platform/messaging/consumers"
	"github.com/sana-bookkeeping/internal/platform/messaging/producers"
	"github.com/sana-bookkeeping/internal/platform/persistence"
	"github.com/sana-bookkeeping/internal/platform/storage"
	"github.com/sana-bookkeeping/internal/reconciler/audit_poller"
	"github.com/sana-bookkeeping/internal/reconciler/components"
	"github.com/sana-bookkeeping/internal/reconciler/consumer"
	"github.com/sana-bookkeeping/internal/reconciler/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("reconciler")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg, "reconciler")

	log.Info("Starting Reconciler",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

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

	// Initialize repositories
	documentRepo := postgres.NewDocumentRepository(log, postgresDB)
	bankTxnRepo := postgres.NewBankTxnRepository(log, postgresDB)
	entryRepo := postgres.NewEntryRepository(log, postgresDB)
	outboxRepo := postgres.NewAuditOutboxRepository(log, postgresDB)

	auditStore := mongodata.NewAuditRepository(log, mongoDB.Database())
	if err := auditStore.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to ensure audit store indexes", "error", err)
		os.Exit(1)
	}

	// Initialize the extraction adapter
	extractor, err := extraction.NewGeminiExtractor(appCtx, log, &cfg.Extraction, fileStorage)
	if err != nil {
		log.Error("Failed to initialize extraction adapter", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer might be nil if DLQTopic is not configured. Handler should be nil-safe.

	// Initialize the reconciliation pipeline with separated concerns
	reconcileService, err := components.CreateReconcileService(
		postgresDB,
		documentRepo,
		bankTxnRepo,
		entryRepo,
		outboxRepo,
		extractor,
		log,
		cfg,
	)
	if err != nil {
		log.Error("Failed to initialize reconciliation service", "error", err)
		os.Exit(1)
	}

	// Initialize document event handler
	documentEventHandler := consumer.NewDocumentEventHandler(
		log,
		reconcileService,
		dlqProducer,
	)

	// Initialize audit trail poller
	recordPublisher := audit_poller.NewRecordPublisher(
		outboxRepo,
		auditStore,
		log,
	)
	poller := audit_poller.NewPoller(
		&cfg.AuditTrail,
		outboxRepo,
		recordPublisher,
		log,
	)

	// Create error channel for service errors
	errChan := make(chan error, 2)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.ReconciliationTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := kafkaConsumer.Subscribe(appCtx, cfg.Kafka.ReconciliationTopic, cfg.Kafka.ConsumerGroup, documentEventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	// Start audit trail poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting audit trail poller",
			"interval", cfg.AuditTrail.PollingInterval.String(),
			"batch_size", cfg.AuditTrail.BatchSize,
		)
		poller.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Shutdown the worker pool if it's a WorkerPoolReconcileService
	if wpService, ok := reconcileService.(*service.WorkerPoolReconcileService); ok {
		log.Info("Shutting down worker pool", "running_workers", wpService.Running())
		wpService.Shutdown()
	}

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Close DLQ Kafka producer
	if dlqProducer != nil { // dlqProducer can be nil if DLQTopic was not configured
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	// Close Kafka consumer
	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Reconciler shutdown with errors", "error", serviceErr)
	}
	if err != nil {
		log.Error("Reconciler shutdown completed with errors")
	} else {
		log.Info("Reconciler shutdown completed successfully")
	}
}
