package components

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sana-bookkeeping/internal/config"
	"github.com/sana-bookkeeping/internal/domain/banktxn"
	"github.com/sana-bookkeeping/internal/domain/document"
	"github.com/sana-bookkeeping/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func defaultMatchingConfig() *config.MatchingConfig {
	return &config.MatchingConfig{
		DateWindowDays:            5,
		AmountWeight:              0.6,
		DateWeight:                0.25,
		TextWeight:                0.15,
		MinScore:                  0.65,
		SuggestWithoutTransaction: true,
	}
}

func processedDocument(companyID uuid.UUID, amount int64, currency string, date time.Time, counterparty string) *document.Document {
	return &document.Document{
		ID:        uuid.New(),
		CompanyID: companyID,
		Status:    document.StatusDone,
		Extracted: &document.ExtractedFields{
			Category:     shared.CategoryInvoice,
			Amount:       amount,
			Currency:     currency,
			Date:         date,
			Counterparty: counterparty,
			Confidence:   0.9,
		},
	}
}

func unmatchedTransaction(companyID uuid.UUID, amount int64, currency string, date time.Time, description string) *banktxn.Transaction {
	return &banktxn.Transaction{
		ID:              uuid.New(),
		CompanyID:       companyID,
		TransactionDate: date,
		Description:     description,
		Amount:          amount,
		Currency:        currency,
		CreatedAt:       time.Now(),
	}
}

func TestMatcher_Rank_ExactAmountNextDay(t *testing.T) {
	companyID := uuid.New()
	docDate := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	doc := processedDocument(companyID, 1500000, "KZT", docDate, "TOO Postavshik")

	txn := unmatchedTransaction(companyID, -1500000, "KZT", docDate.AddDate(0, 0, 1), "Payment order 42")

	matcher := NewMatcher(newTestLogger(), defaultMatchingConfig())
	candidates := matcher.Rank(doc, []*banktxn.Transaction{txn})

	require.Len(t, candidates, 1)
	assert.Equal(t, txn.ID, candidates[0].Transaction.ID)
	assert.Equal(t, 1, candidates[0].DateDistance)
	// Exact amount and one day off clear the threshold even with no text overlap
	assert.InDelta(t, 0.808, candidates[0].Score, 0.01)
}

func TestMatcher_Rank_Disqualifiers(t *testing.T) {
	companyID := uuid.New()
	docDate := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	doc := processedDocument(companyID, 1500000, "KZT", docDate, "TOO Postavshik")
	matcher := NewMatcher(newTestLogger(), defaultMatchingConfig())

	t.Run("currency mismatch", func(t *testing.T) {
		txn := unmatchedTransaction(companyID, -1500000, "USD", docDate, "TOO Postavshik")
		assert.Empty(t, matcher.Rank(doc, []*banktxn.Transaction{txn}))
	})

	t.Run("outside date window", func(t *testing.T) {
		txn := unmatchedTransaction(companyID, -1500000, "KZT", docDate.AddDate(0, 0, 6), "TOO Postavshik")
		assert.Empty(t, matcher.Rank(doc, []*banktxn.Transaction{txn}))
	})

	t.Run("already matched", func(t *testing.T) {
		txn := unmatchedTransaction(companyID, -1500000, "KZT", docDate, "TOO Postavshik")
		txn.IsMatched = true
		assert.Empty(t, matcher.Rank(doc, []*banktxn.Transaction{txn}))
	})

	t.Run("below minimum score", func(t *testing.T) {
		// Amount far off, date at the window edge, no text overlap
		txn := unmatchedTransaction(companyID, -300000, "KZT", docDate.AddDate(0, 0, 5), "Payment")
		assert.Empty(t, matcher.Rank(doc, []*banktxn.Transaction{txn}))
	})

	t.Run("document without extraction", func(t *testing.T) {
		bare := &document.Document{ID: uuid.New(), CompanyID: companyID, Status: document.StatusUploaded}
		txn := unmatchedTransaction(companyID, -1500000, "KZT", docDate, "TOO Postavshik")
		assert.Nil(t, matcher.Rank(bare, []*banktxn.Transaction{txn}))
	})
}

func TestMatcher_Rank_OrdersBestFirst(t *testing.T) {
	companyID := uuid.New()
	docDate := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	doc := processedDocument(companyID, 1500000, "KZT", docDate, "TOO Postavshik")
	matcher := NewMatcher(newTestLogger(), defaultMatchingConfig())

	sameDay := unmatchedTransaction(companyID, -1500000, "KZT", docDate, "Oplata TOO Postavshik")
	nextDay := unmatchedTransaction(companyID, -1500000, "KZT", docDate.AddDate(0, 0, 1), "Payment order 42")
	closeAmount := unmatchedTransaction(companyID, -1490000, "KZT", docDate, "Oplata TOO Postavshik")

	candidates := matcher.Rank(doc, []*banktxn.Transaction{nextDay, closeAmount, sameDay})

	require.Len(t, candidates, 3)
	// Exact amount, same day, counterparty in description is the best candidate
	assert.Equal(t, sameDay.ID, candidates[0].Transaction.ID)
	assert.Equal(t, closeAmount.ID, candidates[1].Transaction.ID)
	assert.Equal(t, nextDay.ID, candidates[2].Transaction.ID)
	assert.GreaterOrEqual(t, candidates[0].Score, candidates[1].Score)
	assert.GreaterOrEqual(t, candidates[1].Score, candidates[2].Score)
}

func TestMatcher_Rank_TieBreaksOnDateDistance(t *testing.T) {
	companyID := uuid.New()
	docDate := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	doc := processedDocument(companyID, 1500000, "KZT", docDate, "TOO Postavshik")

	// Text weight zeroed so both candidates score identically except for date
	cfg := defaultMatchingConfig()
	cfg.TextWeight = 0
	matcher := NewMatcher(newTestLogger(), cfg)

	farther := unmatchedTransaction(companyID, -1500000, "KZT", docDate.AddDate(0, 0, 2), "a")
	closer := unmatchedTransaction(companyID, -1500000, "KZT", docDate.AddDate(0, 0, -1), "b")

	candidates := matcher.Rank(doc, []*banktxn.Transaction{farther, closer})

	require.Len(t, candidates, 2)
	assert.Equal(t, closer.ID, candidates[0].Transaction.ID)
	assert.Equal(t, 1, candidates[0].DateDistance)
	assert.Equal(t, 2, candidates[1].DateDistance)
}

func TestAmountProximity(t *testing.T) {
	assert.Equal(t, 1.0, amountProximity(1500000, 1500000))
	assert.InDelta(t, 0.8, amountProximity(100, 80), 0.001)
	assert.Equal(t, 0.0, amountProximity(0, 100))
	assert.Less(t, amountProximity(1500000, 300000), 0.5)
}

func TestDateDistanceDays(t *testing.T) {
	a := time.Date(2024, 3, 10, 23, 50, 0, 0, time.UTC)
	b := time.Date(2024, 3, 11, 0, 10, 0, 0, time.UTC)
	// Time-of-day is ignored, only calendar days count
	assert.Equal(t, 1, dateDistanceDays(a, b))
	assert.Equal(t, 1, dateDistanceDays(b, a))
	assert.Equal(t, 0, dateDistanceDays(a, a))
}

func TestTextSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, textSimilarity("TOO Postavshik", "Oplata TOO POSTAVSHIK schet 17"))
	assert.InDelta(t, 0.5, textSimilarity("TOO Unknown", "payment to TOO"), 0.001)
	assert.Equal(t, 0.0, textSimilarity("", "anything"))
	assert.Equal(t, 0.0, textSimilarity("anything", ""))
	assert.Equal(t, 0.0, textSimilarity("alpha", "beta gamma"))
}
