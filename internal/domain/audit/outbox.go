package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus defines audit outbox publishing states
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusPublished OutboxStatus = "PUBLISHED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// OutboxMessage stages an audit record for reliable delivery to the audit
// store. It is written in the same Postgres transaction as the mutation the
// record describes.
type OutboxMessage struct {
	ID            int64           `json:"id"`
	RecordID      uuid.UUID       `json:"record_id"`
	CompanyID     uuid.UUID       `json:"company_id"`
	Payload       json.RawMessage `json:"payload"`
	Status        OutboxStatus    `json:"status"`
	Attempts      int             `json:"attempts"`
	CreatedAt     time.Time       `json:"created_at"`
	LastAttemptAt *time.Time      `json:"last_attempt_at,omitempty"`
}

// NewOutboxMessage wraps an audit record into a pending outbox message
func NewOutboxMessage(record *Record) (*OutboxMessage, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}

	return &OutboxMessage{
		RecordID:  record.ID,
		CompanyID: record.CompanyID,
		Payload:   payload,
		Status:    OutboxStatusPending,
		Attempts:  0,
		CreatedAt: time.Now(),
	}, nil
}

// Record extracts the audit record from the payload
func (m *OutboxMessage) Record() (*Record, error) {
	var rec Record
	if err := json.Unmarshal(m.Payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *OutboxMessage) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *OutboxMessage) MarkAsPublished() {
	m.Status = OutboxStatusPublished
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *OutboxMessage) MarkAsFailed() {
	m.Status = OutboxStatusFailed
	now := time.Now()
	m.LastAttemptAt = &now
}
