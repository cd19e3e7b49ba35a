package company

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyName           = errors.New("company name cannot be empty")
	ErrInvalidTaxRegime    = errors.New("tax regime must be USN or OSN")
	ErrInvalidBaseCurrency = errors.New("base currency must be a 3-letter code")
)

// TaxRegime is the simplified (USN) or general (OSN) taxation regime
type TaxRegime string

const (
	TaxRegimeSimplified TaxRegime = "USN"
	TaxRegimeGeneral    TaxRegime = "OSN"
)

// Company is the tenant partition: every document, bank transaction and entry
// belongs to exactly one company
type Company struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	BinIIN    string    `json:"bin_iin"`
	TaxRegime TaxRegime `json:"tax_regime"`
	Currency  string    `json:"currency"` // Base currency, ISO 4217
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCompany creates a company with the given registration details
func NewCompany(name, binIIN string, regime TaxRegime, currency string) (*Company, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if regime != TaxRegimeSimplified && regime != TaxRegimeGeneral {
		return nil, ErrInvalidTaxRegime
	}
	if len(currency) != 3 {
		return nil, ErrInvalidBaseCurrency
	}

	now := time.Now()
	return &Company{
		ID:        uuid.New(),
		Name:      name,
		BinIIN:    binIIN,
		TaxRegime: regime,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
