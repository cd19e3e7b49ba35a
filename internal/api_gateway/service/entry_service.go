package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sana-bookkeeping/internal/domain/audit"
	"github.com/sana-bookkeeping/internal/domain/entry"
)

// EntryServiceImpl implements the EntryService interface
type EntryServiceImpl struct {
	txRunner   TxRunner
	entryRepo  entry.Repository
	outboxRepo audit.OutboxRepository
	logger     *slog.Logger
}

// NewEntryService creates a new entry service
func NewEntryService(
	logger *slog.Logger,
	txRunner TxRunner,
	entryRepo entry.Repository,
	outboxRepo audit.OutboxRepository,
) EntryService {
	return &EntryServiceImpl{
		txRunner:   txRunner,
		entryRepo:  entryRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// ListEntries returns a page of the company's entries with the total count
func (s *EntryServiceImpl) ListEntries(ctx context.Context, companyID uuid.UUID, status entry.Status, page, perPage int) ([]*entry.Entry, int64, error) {
	offset := (page - 1) * perPage

	entries, err := s.entryRepo.ListByCompany(ctx, companyID, status, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.entryRepo.CountByCompany(ctx, companyID, status)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// ConfirmEntry transitions a suggested entry to confirmed
func (s *EntryServiceImpl) ConfirmEntry(ctx context.Context, entryID, userID uuid.UUID, correlationID string) (*entry.Entry, error) {
	return s.review(ctx, entryID, userID, correlationID, audit.ActionEntryConfirmed, func(e *entry.Entry) error {
		return e.Confirm(userID, time.Now())
	})
}

// RejectEntry transitions a suggested entry to rejected
func (s *EntryServiceImpl) RejectEntry(ctx context.Context, entryID, userID uuid.UUID, correlationID string) (*entry.Entry, error) {
	return s.review(ctx, entryID, userID, correlationID, audit.ActionEntryRejected, func(e *entry.Entry) error {
		return e.Reject(time.Now())
	})
}

// review loads the entry, applies the state machine transition in memory and
// persists it with the conditional update. Zero rows affected means another
// reviewer won the race; the caller sees the same ErrInvalidTransition as for
// an entry already in a terminal status.
func (s *EntryServiceImpl) review(ctx context.Context, entryID, userID uuid.UUID, correlationID string, action audit.Action, transition func(*entry.Entry) error) (*entry.Entry, error) {
	e, err := s.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if err := transition(e); err != nil {
		return nil, err
	}

	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		applied, err := s.entryRepo.WithTx(tx).SaveTransition(ctx, e)
		if err != nil {
			return err
		}
		if !applied {
			return entry.ErrInvalidTransition
		}
		detail := map[string]string{"status": string(e.Status)}
		return stageAudit(ctx, tx, s.outboxRepo, e.CompanyID, userID, action, "entry", e.ID, detail, correlationID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Entry reviewed",
		"entry_id", e.ID.String(),
		"company_id", e.CompanyID.String(),
		"status", string(e.Status),
	)

	return e, nil
}
