package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sana-bookkeeping/internal/domain/document"
	"github.com/sana-bookkeeping/internal/domain/shared"
	"github.com/sana-bookkeeping/internal/platform/persistence"
)

// DocumentRepository implements the document.Repository interface for PostgreSQL
type DocumentRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewDocumentRepository creates a new PostgreSQL document repository
func NewDocumentRepository(logger *slog.Logger, db *persistence.PostgresDB) document.Repository {
	return &DocumentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls
func (r *DocumentRepository) WithTx(tx pgx.Tx) document.Repository {
	return &DocumentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const documentColumns = `id, company_id, uploaded_by, file_name, file_ref, file_size, mime_type,
		       status, category, amount, currency, doc_date, counterparty, confidence, parsed,
		       created_at, updated_at`

// Create stores a new document in the database
func (r *DocumentRepository) Create(ctx context.Context, doc *document.Document) error {
	query := `
		INSERT INTO documents (id, company_id, uploaded_by, file_name, file_ref, file_size, mime_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		doc.ID,
		doc.CompanyID,
		doc.UploadedBy,
		doc.FileName,
		doc.FileRef,
		doc.FileSize,
		doc.MimeType,
		doc.Status,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create document", "id", doc.ID.String(), "error", err)
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// GetByID retrieves a document by its ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1
	`

	doc, err := scanDocument(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, document.ErrDocumentNotFound{DocumentID: id}
		}
		r.logger.Error("Failed to get document", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return doc, nil
}

// ListByCompany returns a page of the company's documents, newest first
func (r *DocumentRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*document.Document, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list documents", "company_id", companyID.String(), "error", err)
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*document.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			r.logger.Error("Failed to scan document", "error", err)
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over documents", "error", err)
		return nil, fmt.Errorf("error iterating over documents: %w", err)
	}

	return docs, nil
}

// CountByCompany returns the total number of the company's documents
func (r *DocumentRepository) CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM documents WHERE company_id = $1`

	var count int64
	if err := r.querier.QueryRow(ctx, query, companyID).Scan(&count); err != nil {
		r.logger.Error("Failed to count documents", "company_id", companyID.String(), "error", err)
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	return count, nil
}

// staleClaimAfter is how long a document may sit in processing before a
// redelivery may take the claim over. A run that dies mid-pipeline leaves
// the row in processing with no one to finish it; the window must
// comfortably exceed the extraction deadline so an active run never loses
// its claim.
const staleClaimAfter = 15 * time.Minute

// ClaimForProcessing conditionally moves the document to processing. The
// status predicate in the WHERE clause makes the claim atomic: of two racing
// pipeline runs only one sees a row in a claimable status. A processing row
// older than staleClaimAfter is claimable again, so a crashed run cannot
// wedge the document.
func (r *DocumentRepository) ClaimForProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE documents
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		  AND (status IN ($3, $4)
		       OR (status = $1 AND updated_at < NOW() - make_interval(secs => $5)))
	`

	result, err := r.querier.Exec(ctx, query,
		document.StatusProcessing,
		id,
		document.StatusUploaded,
		document.StatusError,
		staleClaimAfter.Seconds(),
	)
	if err != nil {
		r.logger.Error("Failed to claim document for processing", "id", id.String(), "error", err)
		return false, fmt.Errorf("failed to claim document for processing: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// SaveExtraction persists the extracted fields, the raw payload and the done
// status in a single statement
func (r *DocumentRepository) SaveExtraction(ctx context.Context, doc *document.Document) error {
	if doc.Extracted == nil {
		return errors.New("document has no extracted fields to save")
	}

	query := `
		UPDATE documents
		SET status = $1, category = $2, amount = $3, currency = $4, doc_date = $5,
		    counterparty = $6, confidence = $7, parsed = $8, updated_at = $9
		WHERE id = $10
	`

	result, err := r.querier.Exec(ctx, query,
		doc.Status,
		doc.Extracted.Category,
		doc.Extracted.Amount,
		doc.Extracted.Currency,
		doc.Extracted.Date,
		doc.Extracted.Counterparty,
		doc.Extracted.Confidence,
		doc.Parsed,
		doc.UpdatedAt,
		doc.ID,
	)
	if err != nil {
		r.logger.Error("Failed to save document extraction", "id", doc.ID.String(), "error", err)
		return fmt.Errorf("failed to save document extraction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return document.ErrDocumentNotFound{DocumentID: doc.ID}
	}

	return nil
}

// MarkError moves the document to the error terminal status
func (r *DocumentRepository) MarkError(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE documents
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, document.StatusError, id)
	if err != nil {
		r.logger.Error("Failed to mark document as failed", "id", id.String(), "error", err)
		return fmt.Errorf("failed to mark document as failed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return document.ErrDocumentNotFound{DocumentID: id}
	}

	return nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDocument reads one documents row. The extraction columns are nullable
// and only populate Extracted when the document has been processed.
func scanDocument(row rowScanner) (*document.Document, error) {
	var (
		doc          document.Document
		category     *string
		amount       *int64
		currency     *string
		docDate      *time.Time
		counterparty *string
		confidence   *float64
	)

	err := row.Scan(
		&doc.ID,
		&doc.CompanyID,
		&doc.UploadedBy,
		&doc.FileName,
		&doc.FileRef,
		&doc.FileSize,
		&doc.MimeType,
		&doc.Status,
		&category,
		&amount,
		&currency,
		&docDate,
		&counterparty,
		&confidence,
		&doc.Parsed,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if category != nil {
		fields := document.ExtractedFields{
			Category: shared.DocumentCategory(*category),
		}
		if amount != nil {
			fields.Amount = *amount
		}
		if currency != nil {
			fields.Currency = *currency
		}
		if docDate != nil {
			fields.Date = *docDate
		}
		if counterparty != nil {
			fields.Counterparty = *counterparty
		}
		if confidence != nil {
			fields.Confidence = *confidence
		}
		doc.Extracted = &fields
	}

	return &doc, nil
}
