package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Action identifies the state change an audit record describes
type Action string

const (
	ActionDocumentUploaded  Action = "document.uploaded"
	ActionDocumentExtracted Action = "document.extracted"
	ActionExtractionFailed  Action = "document.extraction_failed"
	ActionBatchImported     Action = "transactions.imported"
	ActionTransactionClaim  Action = "transaction.claimed"
	ActionEntrySuggested    Action = "entry.suggested"
	ActionEntryConfirmed    Action = "entry.confirmed"
	ActionEntryRejected     Action = "entry.rejected"
)

// Record is one append-only audit trail event. Records are staged in the
// Postgres outbox in the same transaction as the mutation they describe and
// drained into the Mongo audit store by the trail poller.
type Record struct {
	ID            uuid.UUID       `json:"id" bson:"record_id"`
	CompanyID     uuid.UUID       `json:"company_id" bson:"company_id"`
	UserID        uuid.UUID       `json:"user_id" bson:"user_id"`
	Action        Action          `json:"action" bson:"action"`
	EntityType    string          `json:"entity_type" bson:"entity_type"`
	EntityID      uuid.UUID       `json:"entity_id" bson:"entity_id"`
	Detail        json.RawMessage `json:"detail,omitempty" bson:"detail,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
}

// NewRecord creates an audit record for the given state change. detail may be
// nil; anything else must marshal to JSON.
func NewRecord(companyID, userID uuid.UUID, action Action, entityType string, entityID uuid.UUID, detail interface{}, correlationID string) (*Record, error) {
	var raw json.RawMessage
	if detail != nil {
		b, err := json.Marshal(detail)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &Record{
		ID:            uuid.New(),
		CompanyID:     companyID,
		UserID:        userID,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        raw,
		CorrelationID: correlationID,
		CreatedAt:     time.Now(),
	}, nil
}
