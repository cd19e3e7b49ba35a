package banktxn

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrZeroAmount      = errors.New("transaction amount cannot be zero")
	ErrInvalidCurrency = errors.New("currency must be a 3-letter code")
	ErrEmptyDate       = errors.New("transaction date is required")
)

// Transaction represents one line of an imported bank statement. Created in
// bulk by the importer, mutated exactly once when a document claims it,
// otherwise immutable.
type Transaction struct {
	ID                uuid.UUID  `json:"id"`
	CompanyID         uuid.UUID  `json:"company_id"`
	ImportedBy        uuid.UUID  `json:"imported_by"`
	TransactionDate   time.Time  `json:"transaction_date"`
	Description       string     `json:"description"`
	Amount            int64      `json:"amount"` // Signed, minor units; negative is outflow
	Currency          string     `json:"currency"`
	IsMatched         bool       `json:"is_matched"`
	MatchedDocumentID *uuid.UUID `json:"matched_document_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NewTransaction creates an unmatched transaction from a validated statement row
func NewTransaction(companyID, importedBy uuid.UUID, date time.Time, description string, amount int64, currency string) (*Transaction, error) {
	if date.IsZero() {
		return nil, ErrEmptyDate
	}
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}

	now := time.Now()
	return &Transaction{
		ID:              uuid.New(),
		CompanyID:       companyID,
		ImportedBy:      importedBy,
		TransactionDate: date,
		Description:     description,
		Amount:          amount,
		Currency:        currency,
		IsMatched:       false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// AbsAmount returns the unsigned amount in minor units
func (t *Transaction) AbsAmount() int64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}
