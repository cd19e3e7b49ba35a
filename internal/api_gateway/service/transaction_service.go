package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sana-bookkeeping/internal/domain/audit"
	"github.com/sana-bookkeeping/internal/domain/banktxn"
	"github.com/sana-bookkeeping/internal/domain/company"
	"github.com/sana-bookkeeping/internal/importer"
)

// TransactionServiceImpl implements the TransactionService interface
type TransactionServiceImpl struct {
	txRunner    TxRunner
	companyRepo company.Repository
	txnRepo     banktxn.Repository
	outboxRepo  audit.OutboxRepository
	importer    *importer.Importer
	logger      *slog.Logger
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	logger *slog.Logger,
	txRunner TxRunner,
	companyRepo company.Repository,
	txnRepo banktxn.Repository,
	outboxRepo audit.OutboxRepository,
	imp *importer.Importer,
) TransactionService {
	return &TransactionServiceImpl{
		txRunner:    txRunner,
		companyRepo: companyRepo,
		txnRepo:     txnRepo,
		outboxRepo:  outboxRepo,
		importer:    imp,
		logger:      logger,
	}
}

// ImportStatement parses the CSV statement and inserts the accepted rows in
// one batch together with the import audit record. Rejected rows are part of
// the result, never a failure.
func (s *TransactionServiceImpl) ImportStatement(ctx context.Context, companyID, userID uuid.UUID, statement io.Reader, correlationID string) (*importer.Result, error) {
	comp, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	result, err := s.importer.ParseStatement(statement, comp, userID)
	if err != nil {
		return nil, err
	}

	if len(result.Accepted) > 0 {
		batchID := uuid.New()
		err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
			if err := s.txnRepo.WithTx(tx).CreateBatch(ctx, result.Accepted); err != nil {
				return err
			}
			detail := map[string]interface{}{"accepted": len(result.Accepted), "rejected": len(result.Rejected)}
			return stageAudit(ctx, tx, s.outboxRepo, companyID, userID, audit.ActionBatchImported, "import_batch", batchID, detail, correlationID)
		})
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("Bank statement imported",
		"company_id", companyID.String(),
		"accepted", len(result.Accepted),
		"rejected", len(result.Rejected),
	)

	return result, nil
}

// ListTransactions returns a page of the company's transactions with the total count
func (s *TransactionServiceImpl) ListTransactions(ctx context.Context, companyID uuid.UUID, page, perPage int) ([]*banktxn.Transaction, int64, error) {
	offset := (page - 1) * perPage

	txns, err := s.txnRepo.ListByCompany(ctx, companyID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.txnRepo.CountByCompany(ctx, companyID)
	if err != nil {
		return nil, 0, err
	}

	return txns, total, nil
}
