package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sana-bookkeeping/internal/domain/audit"
	"github.com/sana-bookkeeping/internal/domain/banktxn"
	"github.com/sana-bookkeeping/internal/domain/company"
	"github.com/sana-bookkeeping/internal/importer"
)

type transactionFixture struct {
	companyRepo *MockCompanyRepository
	txnRepo     *MockBankTxnRepository
	outboxRepo  *MockOutboxRepository
	service     TransactionService
}

func newTransactionFixture() *transactionFixture {
	logger := newTestLogger()
	f := &transactionFixture{
		companyRepo: new(MockCompanyRepository),
		txnRepo:     new(MockBankTxnRepository),
		outboxRepo:  new(MockOutboxRepository),
	}
	f.service = NewTransactionService(logger, &fakeTxRunner{}, f.companyRepo, f.txnRepo, f.outboxRepo, importer.NewImporter(logger))
	return f
}

func TestTransactionService_ImportStatement(t *testing.T) {
	userID := uuid.New()

	t.Run("AcceptsValidRowsAndReportsRejects", func(t *testing.T) {
		f := newTransactionFixture()
		comp := testCompany(t)

		statement := strings.Join([]string{
			"date,description,amount,currency",
			"2024-03-11,Payment to TOO Postavshik,-15000.00,KZT",
			"not-a-date,Broken row,100.00,KZT",
		}, "\n")

		f.companyRepo.On("GetByID", mock.Anything, comp.ID).Return(comp, nil)
		f.txnRepo.On("WithTx", mock.Anything).Return()
		f.txnRepo.On("CreateBatch", mock.Anything, mock.MatchedBy(func(txns []*banktxn.Transaction) bool {
			return len(txns) == 1 && txns[0].Amount == -1500000 && txns[0].CompanyID == comp.ID
		})).Return(nil)
		f.outboxRepo.On("WithTx", mock.Anything).Return()
		f.outboxRepo.On("Create", mock.Anything, mock.MatchedBy(func(message *audit.OutboxMessage) bool {
			record, err := message.Record()
			return err == nil && record.Action == audit.ActionBatchImported && record.EntityType == "import_batch"
		})).Return(nil)

		result, err := f.service.ImportStatement(context.Background(), comp.ID, userID, strings.NewReader(statement), "corr1")

		require.NoError(t, err)
		require.Len(t, result.Accepted, 1)
		require.Len(t, result.Rejected, 1)
		assert.Equal(t, importer.ReasonInvalidDate, result.Rejected[0].Reason)

		f.txnRepo.AssertExpectations(t)
		f.outboxRepo.AssertExpectations(t)
	})

	t.Run("CompanyNotFound", func(t *testing.T) {
		f := newTransactionFixture()
		companyID := uuid.New()

		f.companyRepo.On("GetByID", mock.Anything, companyID).
			Return(nil, company.ErrCompanyNotFound{CompanyID: companyID})

		result, err := f.service.ImportStatement(context.Background(), companyID, userID, strings.NewReader("x"), "corr1")

		assert.Nil(t, result)
		assert.ErrorIs(t, err, company.ErrCompanyNotFound{})
	})

	t.Run("EmptyStatement", func(t *testing.T) {
		f := newTransactionFixture()
		comp := testCompany(t)

		f.companyRepo.On("GetByID", mock.Anything, comp.ID).Return(comp, nil)

		result, err := f.service.ImportStatement(context.Background(), comp.ID, userID, strings.NewReader(""), "corr1")

		assert.Nil(t, result)
		assert.ErrorIs(t, err, importer.ErrEmptyBatch)
		f.txnRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("AllRowsRejectedSkipsPersistence", func(t *testing.T) {
		f := newTransactionFixture()
		comp := testCompany(t)

		statement := strings.Join([]string{
			"date,description,amount,currency",
			"bad-date,Broken row,100.00,KZT",
			"2024-03-11,Zero amount row,0,KZT",
		}, "\n")

		f.companyRepo.On("GetByID", mock.Anything, comp.ID).Return(comp, nil)

		result, err := f.service.ImportStatement(context.Background(), comp.ID, userID, strings.NewReader(statement), "corr1")

		require.NoError(t, err)
		assert.Empty(t, result.Accepted)
		assert.Len(t, result.Rejected, 2)
		f.txnRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
		f.outboxRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("PersistenceFailure", func(t *testing.T) {
		f := newTransactionFixture()
		comp := testCompany(t)

		statement := "date,description,amount,currency\n2024-03-11,Payment,-15000.00,KZT\n"
		dbErr := errors.New("connection reset")

		f.companyRepo.On("GetByID", mock.Anything, comp.ID).Return(comp, nil)
		f.txnRepo.On("WithTx", mock.Anything).Return()
		f.txnRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(dbErr)

		result, err := f.service.ImportStatement(context.Background(), comp.ID, userID, strings.NewReader(statement), "corr1")

		assert.Nil(t, result)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestTransactionService_ListTransactions(t *testing.T) {
	f := newTransactionFixture()
	companyID := uuid.New()

	txn, err := banktxn.NewTransaction(companyID, uuid.New(), time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), "Payment", -1500000, "KZT")
	require.NoError(t, err)

	f.txnRepo.On("ListByCompany", mock.Anything, companyID, 20, 20).
		Return([]*banktxn.Transaction{txn}, nil)
	f.txnRepo.On("CountByCompany", mock.Anything, companyID).Return(int64(21), nil)

	txns, total, err := f.service.ListTransactions(context.Background(), companyID, 2, 20)

	require.NoError(t, err)
	assert.Len(t, txns, 1)
	assert.Equal(t, int64(21), total)
	f.txnRepo.AssertExpectations(t)
}
