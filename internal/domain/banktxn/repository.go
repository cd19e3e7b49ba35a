package banktxn

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNoMatch is the expected outcome when no candidate transaction clears the
// matching threshold. It is not a failure.
var ErrNoMatch = ErrNoMatchType{}

// ErrNoMatchType carries no state; use the ErrNoMatch value
type ErrNoMatchType struct{}

func (ErrNoMatchType) Error() string { return "no matching transaction" }

// Repository defines bank transaction persistence operations
type Repository interface {
	// CreateBatch inserts accepted statement rows in one round trip
	CreateBatch(ctx context.Context, txns []*Transaction) error

	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*Transaction, error)
	CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error)

	// ListUnmatched returns the match candidate pool for a company, ordered by
	// creation time ascending so ranking ties resolve deterministically
	ListUnmatched(ctx context.Context, companyID uuid.UUID) ([]*Transaction, error)

	// Claim atomically marks the transaction as matched by the document.
	// The update applies only while is_matched is false; false is returned
	// when a concurrent claim has already won. At most one document ever
	// claims a given transaction.
	Claim(ctx context.Context, id, documentID uuid.UUID) (bool, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrTransactionNotFound indicates missing bank transaction
type ErrTransactionNotFound struct {
	TransactionID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "bank transaction not found: " + e.TransactionID.String()
}

// Is implements the errors.Is interface for ErrTransactionNotFound
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	if t.TransactionID == uuid.Nil {
		return true
	}
	return e.TransactionID == t.TransactionID
}
