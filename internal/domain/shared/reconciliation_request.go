package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for reconciliation requests
var (
	ErrMissingDocumentID = errors.New("document ID is required")
	ErrMissingCompanyID  = errors.New("company ID is required")
)

// ReconciliationRequest is the message published by the API gateway when a
// document has been uploaded and should be run through the reconciliation
// pipeline. It is consumed by the reconciler service.
type ReconciliationRequest struct {
	DocumentID    uuid.UUID `json:"document_id"`
	CompanyID     uuid.UUID `json:"company_id"`
	RequestedBy   uuid.UUID `json:"requested_by"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Validate checks that the request identifies a document and a company
func (r *ReconciliationRequest) Validate() error {
	if r.DocumentID == uuid.Nil {
		return ErrMissingDocumentID
	}
	if r.CompanyID == uuid.Nil {
		return ErrMissingCompanyID
	}
	return nil
}
