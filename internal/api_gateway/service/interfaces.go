package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sana-bookkeeping/internal/domain/audit"
	"github.com/sana-bookkeeping/internal/domain/banktxn"
	"github.com/sana-bookkeeping/internal/domain/company"
	"github.com/sana-bookkeeping/internal/domain/document"
	"github.com/sana-bookkeeping/internal/domain/entry"
	"github.com/sana-bookkeeping/internal/importer"
)

// CompanyService defines the interface for company operations
type CompanyService interface {
	// CreateCompany registers a new company (tenant)
	CreateCompany(ctx context.Context, name, binIIN string, regime company.TaxRegime, currency string) (*company.Company, error)

	// GetCompanyByID retrieves a company by its ID
	// Returns ErrCompanyNotFound if the company doesn't exist
	GetCompanyByID(ctx context.Context, id uuid.UUID) (*company.Company, error)
}

// DocumentService defines the interface for document operations
type DocumentService interface {
	// Upload stores the file, persists the document in uploaded status and
	// queues a reconciliation request. The document is returned immediately;
	// extraction happens asynchronously.
	Upload(ctx context.Context, companyID, userID uuid.UUID, fileName, mimeType string, data []byte, correlationID string) (*document.Document, error)

	// GetDocumentByID retrieves a document with its current pipeline status
	GetDocumentByID(ctx context.Context, id uuid.UUID) (*document.Document, error)

	// ListDocuments returns a page of the company's documents, newest first,
	// along with the total count
	ListDocuments(ctx context.Context, companyID uuid.UUID, page, perPage int) ([]*document.Document, int64, error)
}

// TransactionService defines the interface for bank transaction operations
type TransactionService interface {
	// ImportStatement parses a CSV bank statement and inserts the accepted
	// rows in one batch. Rejected rows are reported per line, not fatal;
	// ErrEmptyBatch is returned when no row could be parsed at all.
	ImportStatement(ctx context.Context, companyID, userID uuid.UUID, statement io.Reader, correlationID string) (*importer.Result, error)

	// ListTransactions returns a page of the company's transactions, newest
	// first, along with the total count
	ListTransactions(ctx context.Context, companyID uuid.UUID, page, perPage int) ([]*banktxn.Transaction, int64, error)
}

// EntryService defines the interface for entry review operations
type EntryService interface {
	// ListEntries returns a page of the company's entries, optionally
	// filtered by status, along with the total count
	ListEntries(ctx context.Context, companyID uuid.UUID, status entry.Status, page, perPage int) ([]*entry.Entry, int64, error)

	// ConfirmEntry transitions a suggested entry to confirmed.
	// Returns ErrInvalidTransition when the entry was already reviewed.
	ConfirmEntry(ctx context.Context, entryID, userID uuid.UUID, correlationID string) (*entry.Entry, error)

	// RejectEntry transitions a suggested entry to rejected.
	// Returns ErrInvalidTransition when the entry was already reviewed.
	RejectEntry(ctx context.Context, entryID, userID uuid.UUID, correlationID string) (*entry.Entry, error)
}

// AuditService exposes the company's audit trail
type AuditService interface {
	ListAuditTrail(ctx context.Context, companyID uuid.UUID, page, perPage int) ([]*audit.Record, int64, error)
}

// TxRunner runs a function inside a database transaction. Satisfied by
// persistence.PostgresDB.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// stageAudit builds an audit record for the mutation and stages it on the
// outbox inside the mutation's transaction
func stageAudit(ctx context.Context, tx pgx.Tx, outboxRepo audit.OutboxRepository, companyID, userID uuid.UUID, action audit.Action, entityType string, entityID uuid.UUID, detail interface{}, correlationID string) error {
	record, err := audit.NewRecord(companyID, userID, action, entityType, entityID, detail, correlationID)
	if err != nil {
		return err
	}
	message, err := audit.NewOutboxMessage(record)
	if err != nil {
		return err
	}
	return outboxRepo.WithTx(tx).Create(ctx, message)
}
