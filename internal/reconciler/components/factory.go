package components

import (
	"fmt"
	"log/slog"

	"github.com/sana-bookkeeping/internal/config"
	"github.com/sana-bookkeeping/internal/domain/audit"
	"github.com/sana-bookkeeping/internal/domain/banktxn"
	"github.com/sana-bookkeeping/internal/domain/document"
	"github.com/sana-bookkeeping/internal/domain/entry"
	"github.com/sana-bookkeeping/internal/extraction"
	"github.com/sana-bookkeeping/internal/platform/persistence"
	"github.com/sana-bookkeeping/internal/reconciler/service"
)

// CreateReconcileService creates a new ReconcileService with all its dependencies.
func CreateReconcileService(
	pgDB *persistence.PostgresDB,
	docRepo document.Repository,
	txnRepo banktxn.Repository,
	entryRepo entry.Repository,
	outboxRepo audit.OutboxRepository,
	extractor extraction.Extractor,
	logger *slog.Logger,
	cfg *config.Config,
) (service.ReconcileService, error) {
	accounts, err := NewAccountMapper(cfg.Matching.AccountsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to build account mapping: %w", err)
	}

	matcher := NewMatcher(logger, &cfg.Matching)
	synthesizer := NewSynthesizer(logger, accounts)
	auditStager := NewAuditStager(logger, outboxRepo)

	baseService := service.NewReconcileService(
		pgDB,
		docRepo,
		txnRepo,
		entryRepo,
		extractor,
		matcher,
		synthesizer,
		auditStager,
		&cfg.Matching,
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolReconcileService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)

	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return baseService, nil
	}

	logger.Info("Created worker pool reconcile service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService, nil
}
