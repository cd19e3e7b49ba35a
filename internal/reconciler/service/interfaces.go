package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sana-bookkeeping/internal/domain/audit"
	"github.com/sana-bookkeeping/internal/domain/banktxn"
	"github.com/sana-bookkeeping/internal/domain/document"
	"github.com/sana-bookkeeping/internal/domain/entry"
	"github.com/sana-bookkeeping/internal/domain/shared"
)

// ReconcileService runs the reconciliation pipeline for one document
type ReconcileService interface {
	ProcessDocument(ctx context.Context, request *shared.ReconciliationRequest) error
}

// Candidate is one ranked match candidate produced by the matcher
type Candidate struct {
	Transaction  *banktxn.Transaction
	Score        float64
	DateDistance int // Whole days between document and transaction dates
}

// Matcher ranks unmatched bank transactions against a processed document.
// An empty result means no match, an expected outcome rather than an error.
type Matcher interface {
	Rank(doc *document.Document, pool []*banktxn.Transaction) []Candidate
}

// Synthesizer builds a suggested entry from a matched pair or a document
// alone
type Synthesizer interface {
	Synthesize(doc *document.Document, txn *banktxn.Transaction) (*entry.Entry, error)
}

// AuditStager stages audit records inside the mutation's database
// transaction
type AuditStager interface {
	Stage(ctx context.Context, tx pgx.Tx, companyID, userID uuid.UUID, action audit.Action, entityType string, entityID uuid.UUID, detail interface{}, correlationID string) error
}

// TxRunner runs a function inside a database transaction. Satisfied by
// persistence.PostgresDB.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}
