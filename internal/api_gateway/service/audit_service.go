package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sana-bookkeeping/internal/domain/audit"
)

// AuditServiceImpl implements the AuditService interface
type AuditServiceImpl struct {
	store audit.Store
}

// NewAuditService creates a new audit service
func NewAuditService(store audit.Store) AuditService {
	return &AuditServiceImpl{store: store}
}

// ListAuditTrail returns a page of the company's audit records, newest first
func (s *AuditServiceImpl) ListAuditTrail(ctx context.Context, companyID uuid.UUID, page, perPage int) ([]*audit.Record, int64, error) {
	offset := (page - 1) * perPage

	records, err := s.store.ListByCompany(ctx, companyID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.store.CountByCompany(ctx, companyID)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
