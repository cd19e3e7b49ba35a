package audit

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store is the append-only audit trail (Mongo-backed)
type Store interface {
	Append(ctx context.Context, record *Record) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*Record, error)
	CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
}

// OutboxRepository manages staged audit messages in Postgres
type OutboxRepository interface {
	Create(ctx context.Context, message *OutboxMessage) error
	GetPending(ctx context.Context, limit int) ([]*OutboxMessage, error)
	UpdateStatus(ctx context.Context, id int64, status OutboxStatus) error
	IncrementAttempts(ctx context.Context, id int64) error
	WithTx(tx pgx.Tx) OutboxRepository
}

// ErrMessageNotFound indicates missing audit outbox message
type ErrMessageNotFound struct {
	ID int64
}

func (e ErrMessageNotFound) Error() string {
	return "audit outbox message not found: " + strconv.FormatInt(e.ID, 10)
}
