package service

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"
	"github.com/sana-bookkeeping/internal/domain/shared"
)

// WorkerPoolReconcileService bounds pipeline concurrency with an ants pool.
// The caller still gets a synchronous answer: Submit blocks while the pool is
// full, and ProcessDocument waits for the worker's result before returning,
// so the Kafka offset is only committed once the pipeline run finished.
type WorkerPoolReconcileService struct {
	baseService ReconcileService
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolReconcileService(
	baseService ReconcileService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolReconcileService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolReconcileService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
	}, nil
}

// ProcessDocument runs the request on a pool worker and waits for its result.
func (s *WorkerPoolReconcileService) ProcessDocument(ctx context.Context, request *shared.ReconciliationRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Submitting document to worker pool",
		"document_id", request.DocumentID.String(),
		"company_id", request.CompanyID.String(),
	)

	// Copy the request so the worker never shares memory with the caller
	requestCopy := *request
	resultChan := make(chan error, 1)

	if err := s.pool.Submit(func() {
		resultChan <- s.baseService.ProcessDocument(ctx, &requestCopy)
	}); err != nil {
		logger.Error("Failed to submit document to worker pool",
			"document_id", request.DocumentID.String(),
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolReconcileService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolReconcileService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolReconcileService) Capacity() int {
	return s.pool.Cap()
}
