package entry

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sana-bookkeeping/internal/domain/shared"
)

// Common errors
var (
	ErrSameAccounts  = errors.New("debit and credit accounts must differ")
	ErrInvalidAmount = errors.New("entry amount must be positive")
	ErrEmptyAccount  = errors.New("debit and credit accounts are required")
	ErrNoSource      = errors.New("entry requires a source document or transaction")

	// ErrInvalidTransition is returned when confirm or reject is attempted on
	// an entry that is no longer in suggested status. The entry is unchanged.
	ErrInvalidTransition = errors.New("entry is not in suggested status")
)

// ErrUnresolvableAccounts signals that synthesis cannot select a debit and
// credit pair for the given inputs, typically a document-only entry whose
// category does not imply a cash-flow direction. No entry is created.
type ErrUnresolvableAccounts struct {
	Category shared.DocumentCategory
}

func (e ErrUnresolvableAccounts) Error() string {
	return "cannot resolve accounts for category: " + string(e.Category)
}

// Is implements the errors.Is interface for ErrUnresolvableAccounts
func (e ErrUnresolvableAccounts) Is(target error) bool {
	_, ok := target.(ErrUnresolvableAccounts)
	return ok
}

// Status is the review lifecycle state of an entry. suggested is initial;
// confirmed and rejected are terminal.
type Status string

const (
	StatusSuggested Status = "suggested"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
)

// Entry is a proposed or confirmed double-entry bookkeeping record. Direction
// is encoded by the debit/credit pair, never by amount sign: Amount is always
// positive. Entries are never deleted (audit trail).
type Entry struct {
	ID            uuid.UUID  `json:"id"`
	CompanyID     uuid.UUID  `json:"company_id"`
	TransactionID *uuid.UUID `json:"transaction_id,omitempty"`
	DocumentID    *uuid.UUID `json:"document_id,omitempty"`
	DebitAccount  string     `json:"debit_account"`
	CreditAccount string     `json:"credit_account"`
	Amount        int64      `json:"amount"` // Positive, minor units
	Currency      string     `json:"currency"`
	Description   string     `json:"description,omitempty"`
	Status        Status     `json:"status"`
	ConfirmedBy   *uuid.UUID `json:"confirmed_by,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewEntry creates a suggested entry, enforcing the double-entry invariants
func NewEntry(companyID uuid.UUID, transactionID, documentID *uuid.UUID, debit, credit string, amount int64, currency, description string) (*Entry, error) {
	if debit == "" || credit == "" {
		return nil, ErrEmptyAccount
	}
	if debit == credit {
		return nil, ErrSameAccounts
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if transactionID == nil && documentID == nil {
		return nil, ErrNoSource
	}

	now := time.Now()
	return &Entry{
		ID:            uuid.New(),
		CompanyID:     companyID,
		TransactionID: transactionID,
		DocumentID:    documentID,
		DebitAccount:  debit,
		CreditAccount: credit,
		Amount:        amount,
		Currency:      currency,
		Description:   description,
		Status:        StatusSuggested,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Confirm transitions the entry from suggested to confirmed, recording the
// acting user and the confirmation time. Any other starting status returns
// ErrInvalidTransition and leaves the entry untouched.
func (e *Entry) Confirm(userID uuid.UUID, at time.Time) error {
	if e.Status != StatusSuggested {
		return ErrInvalidTransition
	}
	e.Status = StatusConfirmed
	e.ConfirmedBy = &userID
	e.ConfirmedAt = &at
	e.UpdatedAt = at
	return nil
}

// Reject transitions the entry from suggested to rejected. Confirmation
// metadata stays unset for rejected entries.
func (e *Entry) Reject(at time.Time) error {
	if e.Status != StatusSuggested {
		return ErrInvalidTransition
	}
	e.Status = StatusRejected
	e.UpdatedAt = at
	return nil
}
