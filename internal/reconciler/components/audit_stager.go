package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sana-bookkeeping/internal/domain/audit"
)

// AuditStager stages audit records in the Postgres outbox inside the same
// transaction as the mutation they describe. The trail poller later drains
// them into the audit store.
type AuditStager struct {
	outboxRepo audit.OutboxRepository
	logger     *slog.Logger
}

func NewAuditStager(logger *slog.Logger, outboxRepo audit.OutboxRepository) *AuditStager {
	return &AuditStager{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// Stage writes one audit record into the outbox using the supplied database
// transaction, so the record commits or rolls back with the mutation.
func (s *AuditStager) Stage(ctx context.Context, tx pgx.Tx, companyID, userID uuid.UUID, action audit.Action, entityType string, entityID uuid.UUID, detail interface{}, correlationID string) error {
	record, err := audit.NewRecord(companyID, userID, action, entityType, entityID, detail, correlationID)
	if err != nil {
		return fmt.Errorf("failed to build audit record for %s: %w", action, err)
	}

	message, err := audit.NewOutboxMessage(record)
	if err != nil {
		return fmt.Errorf("failed to build audit outbox message for %s: %w", action, err)
	}

	if err := s.outboxRepo.WithTx(tx).Create(ctx, message); err != nil {
		return fmt.Errorf("failed to stage audit record for %s: %w", action, err)
	}

	s.logger.Debug("Staged audit record",
		"action", string(action),
		"entity_type", entityType,
		"entity_id", entityID.String(),
		"outbox_id", message.ID,
	)

	return nil
}
