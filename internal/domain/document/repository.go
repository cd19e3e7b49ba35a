package document

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines document persistence operations
type Repository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*Document, error)
	CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error)

	// ClaimForProcessing conditionally moves the document to processing.
	// It succeeds only when the current status still permits reconciliation
	// (uploaded or error), so two racing pipeline runs cannot both claim it.
	ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error)

	// SaveExtraction persists the extracted fields, the raw payload and the
	// done status in a single statement.
	SaveExtraction(ctx context.Context, doc *Document) error

	// MarkError moves the document to the error terminal status.
	MarkError(ctx context.Context, id uuid.UUID) error

	WithTx(tx pgx.Tx) Repository
}

// ErrDocumentNotFound indicates missing document
type ErrDocumentNotFound struct {
	DocumentID uuid.UUID
}

func (e ErrDocumentNotFound) Error() string {
	return "document not found: " + e.DocumentID.String()
}

// Is implements the errors.Is interface for ErrDocumentNotFound
func (e ErrDocumentNotFound) Is(target error) bool {
	t, ok := target.(ErrDocumentNotFound)
	if !ok {
		return false
	}
	if t.DocumentID == uuid.Nil {
		return true
	}
	return e.DocumentID == t.DocumentID
}
