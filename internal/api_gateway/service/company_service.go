package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sana-bookkeeping/internal/domain/company"
)

// CompanyServiceImpl implements the CompanyService interface
type CompanyServiceImpl struct {
	companyRepo company.Repository
}

// NewCompanyService creates a new company service
func NewCompanyService(companyRepo company.Repository) CompanyService {
	return &CompanyServiceImpl{
		companyRepo: companyRepo,
	}
}

// CreateCompany registers a new company after domain validation
func (s *CompanyServiceImpl) CreateCompany(ctx context.Context, name, binIIN string, regime company.TaxRegime, currency string) (*company.Company, error) {
	c, err := company.NewCompany(name, binIIN, regime, currency)
	if err != nil {
		return nil, err
	}

	if err := s.companyRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// GetCompanyByID retrieves a company by its ID, returns ErrCompanyNotFound if missing
func (s *CompanyServiceImpl) GetCompanyByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	return s.companyRepo.GetByID(ctx, id)
}
