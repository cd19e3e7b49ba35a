package entry

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines entry persistence operations
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, status Status, limit, offset int) ([]*Entry, error)
	CountByCompany(ctx context.Context, companyID uuid.UUID, status Status) (int64, error)

	// SaveTransition persists a confirm/reject transition. The update applies
	// only while the stored status is still suggested; false means another
	// reviewer already moved the entry to a terminal status.
	SaveTransition(ctx context.Context, e *Entry) (bool, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrEntryNotFound indicates missing entry
type ErrEntryNotFound struct {
	EntryID uuid.UUID
}

func (e ErrEntryNotFound) Error() string {
	return "entry not found: " + e.EntryID.String()
}

// Is implements the errors.Is interface for ErrEntryNotFound
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	if t.EntryID == uuid.Nil {
		return true
	}
	return e.EntryID == t.EntryID
}
