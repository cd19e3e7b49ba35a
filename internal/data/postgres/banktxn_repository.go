package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sana-bookkeeping/internal/domain/banktxn"
	"github.com/sana-bookkeeping/internal/platform/persistence"
)

// BankTxnRepository implements the banktxn.Repository interface for PostgreSQL
type BankTxnRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewBankTxnRepository creates a new PostgreSQL bank transaction repository
func NewBankTxnRepository(logger *slog.Logger, db *persistence.PostgresDB) banktxn.Repository {
	return &BankTxnRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls
func (r *BankTxnRepository) WithTx(tx pgx.Tx) banktxn.Repository {
	return &BankTxnRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const bankTxnColumns = `id, company_id, imported_by, transaction_date, description, amount,
		       currency, is_matched, matched_document_id, created_at, updated_at`

// CreateBatch inserts accepted statement rows with a single multi-row INSERT.
// An empty batch is a no-op.
func (r *BankTxnRepository) CreateBatch(ctx context.Context, txns []*banktxn.Transaction) error {
	if len(txns) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO bank_transactions (id, company_id, imported_by, transaction_date, description, amount, currency, is_matched, created_at, updated_at)
		VALUES `)

	args := make([]interface{}, 0, len(txns)*10)
	for i, txn := range txns {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 10
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10)
		args = append(args,
			txn.ID,
			txn.CompanyID,
			txn.ImportedBy,
			txn.TransactionDate,
			txn.Description,
			txn.Amount,
			txn.Currency,
			txn.IsMatched,
			txn.CreatedAt,
			txn.UpdatedAt,
		)
	}

	_, err := r.querier.Exec(ctx, sb.String(), args...)
	if err != nil {
		r.logger.Error("Failed to insert bank transactions", "count", len(txns), "error", err)
		return fmt.Errorf("failed to insert bank transactions: %w", err)
	}

	return nil
}

// GetByID retrieves a bank transaction by its ID
func (r *BankTxnRepository) GetByID(ctx context.Context, id uuid.UUID) (*banktxn.Transaction, error) {
	query := `
		SELECT ` + bankTxnColumns + `
		FROM bank_transactions
		WHERE id = $1
	`

	txn, err := scanBankTxn(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, banktxn.ErrTransactionNotFound{TransactionID: id}
		}
		r.logger.Error("Failed to get bank transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get bank transaction: %w", err)
	}

	return txn, nil
}

// ListByCompany returns a page of the company's bank transactions, newest
// statement date first
func (r *BankTxnRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*banktxn.Transaction, error) {
	query := `
		SELECT ` + bankTxnColumns + `
		FROM bank_transactions
		WHERE company_id = $1
		ORDER BY transaction_date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list bank transactions", "company_id", companyID.String(), "error", err)
		return nil, fmt.Errorf("failed to list bank transactions: %w", err)
	}
	defer rows.Close()

	return collectBankTxns(rows, r.logger)
}

// CountByCompany returns the total number of the company's bank transactions
func (r *BankTxnRepository) CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bank_transactions WHERE company_id = $1`

	var count int64
	if err := r.querier.QueryRow(ctx, query, companyID).Scan(&count); err != nil {
		r.logger.Error("Failed to count bank transactions", "company_id", companyID.String(), "error", err)
		return 0, fmt.Errorf("failed to count bank transactions: %w", err)
	}

	return count, nil
}

// ListUnmatched returns the match candidate pool for a company. Ordering by
// creation time ascending keeps candidate ranking ties deterministic.
func (r *BankTxnRepository) ListUnmatched(ctx context.Context, companyID uuid.UUID) ([]*banktxn.Transaction, error) {
	query := `
		SELECT ` + bankTxnColumns + `
		FROM bank_transactions
		WHERE company_id = $1 AND is_matched = FALSE
		ORDER BY created_at ASC
	`

	rows, err := r.querier.Query(ctx, query, companyID)
	if err != nil {
		r.logger.Error("Failed to list unmatched bank transactions", "company_id", companyID.String(), "error", err)
		return nil, fmt.Errorf("failed to list unmatched bank transactions: %w", err)
	}
	defer rows.Close()

	return collectBankTxns(rows, r.logger)
}

// Claim atomically marks the transaction as matched by the document. The
// is_matched predicate makes the claim first-writer-wins: a false return
// means a concurrent claim already took the transaction.
func (r *BankTxnRepository) Claim(ctx context.Context, id, documentID uuid.UUID) (bool, error) {
	query := `
		UPDATE bank_transactions
		SET is_matched = TRUE, matched_document_id = $1, updated_at = NOW()
		WHERE id = $2 AND is_matched = FALSE
	`

	result, err := r.querier.Exec(ctx, query, documentID, id)
	if err != nil {
		r.logger.Error("Failed to claim bank transaction",
			"id", id.String(),
			"document_id", documentID.String(),
			"error", err,
		)
		return false, fmt.Errorf("failed to claim bank transaction: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

func scanBankTxn(row rowScanner) (*banktxn.Transaction, error) {
	var txn banktxn.Transaction
	err := row.Scan(
		&txn.ID,
		&txn.CompanyID,
		&txn.ImportedBy,
		&txn.TransactionDate,
		&txn.Description,
		&txn.Amount,
		&txn.Currency,
		&txn.IsMatched,
		&txn.MatchedDocumentID,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func collectBankTxns(rows pgx.Rows, logger *slog.Logger) ([]*banktxn.Transaction, error) {
	var txns []*banktxn.Transaction
	for rows.Next() {
		txn, err := scanBankTxn(rows)
		if err != nil {
			logger.Error("Failed to scan bank transaction", "error", err)
			return nil, fmt.Errorf("failed to scan bank transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error iterating over bank transactions", "error", err)
		return nil, fmt.Errorf("error iterating over bank transactions: %w", err)
	}

	return txns, nil
}
