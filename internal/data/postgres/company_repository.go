// Package postgres provides PostgreSQL implementations of the domain
// repositories. It handles all database operations while maintaining
// transaction safety and proper error handling for the bookkeeping system.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sana-bookkeeping/internal/domain/company"
	"github.com/sana-bookkeeping/internal/platform/persistence"
)

// CompanyRepository implements the company.Repository interface for PostgreSQL
type CompanyRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewCompanyRepository creates a new PostgreSQL company repository
func NewCompanyRepository(logger *slog.Logger, db *persistence.PostgresDB) company.Repository {
	return &CompanyRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Create stores a new company in the database
func (r *CompanyRepository) Create(ctx context.Context, c *company.Company) error {
	query := `
		INSERT INTO companies (id, name, bin_iin, tax_regime, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.querier.Exec(ctx, query,
		c.ID,
		c.Name,
		c.BinIIN,
		c.TaxRegime,
		c.Currency,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create company", "error", err)
		return fmt.Errorf("failed to create company: %w", err)
	}

	return nil
}

// GetByID retrieves a company by its ID
func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	query := `
		SELECT id, name, bin_iin, tax_regime, currency, created_at, updated_at
		FROM companies
		WHERE id = $1
	`

	var c company.Company
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.BinIIN,
		&c.TaxRegime,
		&c.Currency,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrCompanyNotFound{CompanyID: id}
		}
		r.logger.Error("Failed to get company", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	return &c, nil
}
