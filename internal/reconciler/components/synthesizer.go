package components

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/sana-bookkeeping/internal/domain/banktxn"
	"github.com/sana-bookkeeping/internal/domain/document"
	"github.com/sana-bookkeeping/internal/domain/entry"
	"github.com/sana-bookkeeping/internal/domain/shared"
)

// directionImpliedByCategory is used when no transaction is available to
// read the direction from the amount sign. Invoices and receipts held by a
// small business are overwhelmingly money going out; the other categories
// stay ambiguous.
var directionImpliedByCategory = map[shared.DocumentCategory]shared.Direction{
	shared.CategoryInvoice: shared.DirectionOutflow,
	shared.CategoryReceipt: shared.DirectionOutflow,
}

// Synthesizer produces suggested double-entry records from a matched
// (document, transaction) pair or from a document alone
type Synthesizer struct {
	accounts *AccountMapper
	logger   *slog.Logger
}

func NewSynthesizer(logger *slog.Logger, accounts *AccountMapper) *Synthesizer {
	return &Synthesizer{accounts: accounts, logger: logger}
}

// Synthesize builds a suggested entry. At least one of doc/txn must be
// present. Direction comes from the transaction's amount sign when a
// transaction is available, otherwise from the document category; if neither
// implies a direction, ErrUnresolvableAccounts is returned.
//
// The entry amount is always the absolute value; direction lives in which
// account is debited versus credited.
func (s *Synthesizer) Synthesize(doc *document.Document, txn *banktxn.Transaction) (*entry.Entry, error) {
	if doc == nil && txn == nil {
		return nil, entry.ErrNoSource
	}

	category := shared.CategoryOther
	if doc != nil && doc.Extracted != nil {
		category = doc.Extracted.Category
	}

	var direction shared.Direction
	switch {
	case txn != nil:
		direction = shared.DirectionOfAmount(txn.Amount)
	default:
		implied, ok := directionImpliedByCategory[category]
		if !ok {
			return nil, entry.ErrUnresolvableAccounts{Category: category}
		}
		direction = implied
	}

	pair, ok := s.accounts.Resolve(category, direction)
	if !ok {
		return nil, entry.ErrUnresolvableAccounts{Category: category}
	}

	var (
		companyID     uuid.UUID
		transactionID *uuid.UUID
		documentID    *uuid.UUID
		amount        int64
		currency      string
		description   string
	)

	if txn != nil {
		companyID = txn.CompanyID
		id := txn.ID
		transactionID = &id
		amount = txn.AbsAmount()
		currency = txn.Currency
		description = txn.Description
	}
	if doc != nil {
		companyID = doc.CompanyID
		id := doc.ID
		documentID = &id
		if doc.Extracted != nil {
			if txn == nil {
				amount = doc.Extracted.Amount
				currency = doc.Extracted.Currency
			}
			if doc.Extracted.Counterparty != "" {
				description = doc.Extracted.Counterparty
			}
		}
	}

	e, err := entry.NewEntry(companyID, transactionID, documentID, pair.Debit, pair.Credit, amount, currency, description)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Synthesized entry",
		"entry_id", e.ID.String(),
		"category", string(category),
		"direction", string(direction),
		"debit", pair.Debit,
		"credit", pair.Credit,
	)

	return e, nil
}
