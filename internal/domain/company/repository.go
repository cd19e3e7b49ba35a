package company

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines company persistence operations
type Repository interface {
	Create(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*Company, error)
}

// ErrCompanyNotFound indicates missing company
type ErrCompanyNotFound struct {
	CompanyID uuid.UUID
}

func (e ErrCompanyNotFound) Error() string {
	return "company not found: " + e.CompanyID.String()
}

// Is implements the errors.Is interface for ErrCompanyNotFound
func (e ErrCompanyNotFound) Is(target error) bool {
	t, ok := target.(ErrCompanyNotFound)
	if !ok {
		return false
	}
	if t.CompanyID == uuid.Nil {
		return true
	}
	return e.CompanyID == t.CompanyID
}
