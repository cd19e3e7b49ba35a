package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/sana-bookkeeping/internal/domain/banktxn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankTxnRepository_CreateBatch(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &BankTxnRepository{querier: mock, logger: logger}
	companyID := uuid.New()
	importedBy := uuid.New()
	now := time.Now()

	txns := []*banktxn.Transaction{
		{
			ID:              uuid.New(),
			CompanyID:       companyID,
			ImportedBy:      importedBy,
			TransactionDate: now.AddDate(0, 0, -2),
			Description:     "Oplata za tovar",
			Amount:          -1500000,
			Currency:        "KZT",
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:              uuid.New(),
			CompanyID:       companyID,
			ImportedBy:      importedBy,
			TransactionDate: now.AddDate(0, 0, -1),
			Description:     "Postuplenie ot klienta",
			Amount:          2000000,
			Currency:        "KZT",
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}

	query := `INSERT INTO bank_transactions (.+) VALUES \(\$1, (.+)\), \(\$11, (.+)\)`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(
				txns[0].ID, txns[0].CompanyID, txns[0].ImportedBy, txns[0].TransactionDate, txns[0].Description,
				txns[0].Amount, txns[0].Currency, txns[0].IsMatched, txns[0].CreatedAt, txns[0].UpdatedAt,
				txns[1].ID, txns[1].CompanyID, txns[1].ImportedBy, txns[1].TransactionDate, txns[1].Description,
				txns[1].Amount, txns[1].Currency, txns[1].IsMatched, txns[1].CreatedAt, txns[1].UpdatedAt,
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 2))

		err := repo.CreateBatch(ctx, txns)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		err := repo.CreateBatch(ctx, nil)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("insert db error")
		mock.ExpectExec(query).
			WithArgs(
				txns[0].ID, txns[0].CompanyID, txns[0].ImportedBy, txns[0].TransactionDate, txns[0].Description,
				txns[0].Amount, txns[0].Currency, txns[0].IsMatched, txns[0].CreatedAt, txns[0].UpdatedAt,
				txns[1].ID, txns[1].CompanyID, txns[1].ImportedBy, txns[1].TransactionDate, txns[1].Description,
				txns[1].Amount, txns[1].Currency, txns[1].IsMatched, txns[1].CreatedAt, txns[1].UpdatedAt,
			).
			WillReturnError(dbErr)

		err := repo.CreateBatch(ctx, txns)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to insert bank transactions")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBankTxnRepository_Claim(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &BankTxnRepository{querier: mock, logger: logger}
	txnID := uuid.New()
	docID := uuid.New()

	query := `
		UPDATE bank_transactions
		SET is_matched = TRUE, matched_document_id = \$1, updated_at = NOW\(\)
		WHERE id = \$2 AND is_matched = FALSE
	`

	t.Run("claim wins", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(docID, txnID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		claimed, err := repo.Claim(ctx, txnID, docID)
		assert.NoError(t, err)
		assert.True(t, claimed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("claim lost to a concurrent document", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(docID, txnID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		claimed, err := repo.Claim(ctx, txnID, docID)
		assert.NoError(t, err)
		assert.False(t, claimed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("claim db error")
		mock.ExpectExec(query).
			WithArgs(docID, txnID).
			WillReturnError(dbErr)

		claimed, err := repo.Claim(ctx, txnID, docID)
		assert.Error(t, err)
		assert.False(t, claimed)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBankTxnRepository_ListUnmatched(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &BankTxnRepository{querier: mock, logger: logger}
	companyID := uuid.New()
	now := time.Now()

	columns := []string{
		"id", "company_id", "imported_by", "transaction_date", "description", "amount",
		"currency", "is_matched", "matched_document_id", "created_at", "updated_at",
	}

	t.Run("returns unmatched pool", func(t *testing.T) {
		firstID := uuid.New()
		secondID := uuid.New()
		rows := pgxmock.NewRows(columns).
			AddRow(firstID, companyID, uuid.New(), now.AddDate(0, 0, -2), "Oplata", int64(-15000), "KZT", false, nil, now, now).
			AddRow(secondID, companyID, uuid.New(), now.AddDate(0, 0, -1), "Postuplenie", int64(30000), "KZT", false, nil, now, now)

		mock.ExpectQuery(`SELECT (.+) FROM bank_transactions WHERE company_id = \$1 AND is_matched = FALSE`).
			WithArgs(companyID).
			WillReturnRows(rows)

		txns, err := repo.ListUnmatched(ctx, companyID)
		assert.NoError(t, err)
		require.Len(t, txns, 2)
		assert.Equal(t, firstID, txns[0].ID)
		assert.Equal(t, secondID, txns[1].ID)
		assert.False(t, txns[0].IsMatched)
		assert.Nil(t, txns[0].MatchedDocumentID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty pool", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bank_transactions WHERE company_id = \$1 AND is_matched = FALSE`).
			WithArgs(companyID).
			WillReturnRows(pgxmock.NewRows(columns))

		txns, err := repo.ListUnmatched(ctx, companyID)
		assert.NoError(t, err)
		assert.Empty(t, txns)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBankTxnRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &BankTxnRepository{querier: mock, logger: logger}
	txnID := uuid.New()

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bank_transactions WHERE id = \$1`).
			WithArgs(txnID).
			WillReturnError(pgx.ErrNoRows)

		txn, err := repo.GetByID(ctx, txnID)
		assert.Error(t, err)
		assert.Nil(t, txn)
		var notFoundErr banktxn.ErrTransactionNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, txnID, notFoundErr.TransactionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
