package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sana-bookkeeping/internal/domain/company"
)

func TestCompanyService_CreateCompany(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		companyRepo := new(MockCompanyRepository)
		service := NewCompanyService(companyRepo)

		companyRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *company.Company) bool {
			return c.Name == "TOO Romashka" && c.TaxRegime == company.TaxRegimeSimplified
		})).Return(nil)

		comp, err := service.CreateCompany(context.Background(), "TOO Romashka", "123456789012", company.TaxRegimeSimplified, "KZT")

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, comp.ID)
		assert.Equal(t, "KZT", comp.Currency)
		companyRepo.AssertExpectations(t)
	})

	t.Run("InvalidTaxRegime", func(t *testing.T) {
		companyRepo := new(MockCompanyRepository)
		service := NewCompanyService(companyRepo)

		comp, err := service.CreateCompany(context.Background(), "TOO Romashka", "123456789012", "ENVD", "KZT")

		assert.Nil(t, comp)
		assert.ErrorIs(t, err, company.ErrInvalidTaxRegime)
		companyRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("PersistenceFailure", func(t *testing.T) {
		companyRepo := new(MockCompanyRepository)
		service := NewCompanyService(companyRepo)

		dbErr := errors.New("connection reset")
		companyRepo.On("Create", mock.Anything, mock.Anything).Return(dbErr)

		comp, err := service.CreateCompany(context.Background(), "TOO Romashka", "123456789012", company.TaxRegimeGeneral, "KZT")

		assert.Nil(t, comp)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestCompanyService_GetCompanyByID(t *testing.T) {
	companyRepo := new(MockCompanyRepository)
	service := NewCompanyService(companyRepo)

	companyID := uuid.New()
	companyRepo.On("GetByID", mock.Anything, companyID).
		Return(nil, company.ErrCompanyNotFound{CompanyID: companyID})

	comp, err := service.GetCompanyByID(context.Background(), companyID)

	assert.Nil(t, comp)
	assert.ErrorIs(t, err, company.ErrCompanyNotFound{})
}
