package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sana-bookkeeping/internal/domain/entry"
	"github.com/sana-bookkeeping/internal/platform/persistence"
)

// EntryRepository implements the entry.Repository interface for PostgreSQL
type EntryRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewEntryRepository creates a new PostgreSQL entry repository
func NewEntryRepository(logger *slog.Logger, db *persistence.PostgresDB) entry.Repository {
	return &EntryRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls
func (r *EntryRepository) WithTx(tx pgx.Tx) entry.Repository {
	return &EntryRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const entryColumns = `id, company_id, transaction_id, document_id, debit_account, credit_account,
		       amount, currency, description, status, confirmed_by, confirmed_at, created_at, updated_at`

// Create stores a new suggested entry in the database
func (r *EntryRepository) Create(ctx context.Context, e *entry.Entry) error {
	query := `
		INSERT INTO entries (id, company_id, transaction_id, document_id, debit_account, credit_account, amount, currency, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.querier.Exec(ctx, query,
		e.ID,
		e.CompanyID,
		e.TransactionID,
		e.DocumentID,
		e.DebitAccount,
		e.CreditAccount,
		e.Amount,
		e.Currency,
		e.Description,
		e.Status,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create entry", "id", e.ID.String(), "error", err)
		return fmt.Errorf("failed to create entry: %w", err)
	}

	return nil
}

// GetByID retrieves an entry by its ID
func (r *EntryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entry.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE id = $1
	`

	e, err := scanEntry(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entry.ErrEntryNotFound{EntryID: id}
		}
		r.logger.Error("Failed to get entry", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}

	return e, nil
}

// ListByCompany returns a page of the company's entries, newest first. An
// empty status lists every entry regardless of review state.
func (r *EntryRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, status entry.Status, limit, offset int) ([]*entry.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE company_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.querier.Query(ctx, query, companyID, string(status), limit, offset)
	if err != nil {
		r.logger.Error("Failed to list entries", "company_id", companyID.String(), "error", err)
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*entry.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			r.logger.Error("Failed to scan entry", "error", err)
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over entries", "error", err)
		return nil, fmt.Errorf("error iterating over entries: %w", err)
	}

	return entries, nil
}

// CountByCompany returns the number of the company's entries matching the
// optional status filter
func (r *EntryRepository) CountByCompany(ctx context.Context, companyID uuid.UUID, status entry.Status) (int64, error) {
	query := `SELECT COUNT(*) FROM entries WHERE company_id = $1 AND ($2 = '' OR status = $2)`

	var count int64
	if err := r.querier.QueryRow(ctx, query, companyID, string(status)).Scan(&count); err != nil {
		r.logger.Error("Failed to count entries", "company_id", companyID.String(), "error", err)
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	return count, nil
}

// SaveTransition persists a confirm/reject transition. The status predicate
// keeps the review decision first-writer-wins: a false return means another
// reviewer already moved the entry to a terminal status.
func (r *EntryRepository) SaveTransition(ctx context.Context, e *entry.Entry) (bool, error) {
	query := `
		UPDATE entries
		SET status = $1, confirmed_by = $2, confirmed_at = $3, updated_at = $4
		WHERE id = $5 AND status = $6
	`

	result, err := r.querier.Exec(ctx, query,
		e.Status,
		e.ConfirmedBy,
		e.ConfirmedAt,
		e.UpdatedAt,
		e.ID,
		entry.StatusSuggested,
	)
	if err != nil {
		r.logger.Error("Failed to save entry transition",
			"id", e.ID.String(),
			"status", string(e.Status),
			"error", err,
		)
		return false, fmt.Errorf("failed to save entry transition: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func scanEntry(row rowScanner) (*entry.Entry, error) {
	var e entry.Entry
	err := row.Scan(
		&e.ID,
		&e.CompanyID,
		&e.TransactionID,
		&e.DocumentID,
		&e.DebitAccount,
		&e.CreditAccount,
		&e.Amount,
		&e.Currency,
		&e.Description,
		&e.Status,
		&e.ConfirmedBy,
		&e.ConfirmedAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
