package audit_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sana-bookkeeping/internal/domain/audit"
)

// RecordPublisher delivers staged outbox messages to the audit store
type RecordPublisher interface {
	PublishRecord(ctx context.Context, message *audit.OutboxMessage) error
}

// RecordPublisherImpl implements RecordPublisher
type RecordPublisherImpl struct {
	outboxRepo audit.OutboxRepository
	store      audit.Store
	logger     *slog.Logger
}

// NewRecordPublisher creates a new publisher
func NewRecordPublisher(
	outboxRepo audit.OutboxRepository,
	store audit.Store,
	logger *slog.Logger,
) RecordPublisher {
	return &RecordPublisherImpl{
		outboxRepo: outboxRepo,
		store:      store,
		logger:     logger,
	}
}

// PublishRecord appends the staged record to the audit store and marks the
// outbox message published. Append is idempotent on record ID, so a crash
// between the two writes only causes a harmless replay.
func (p *RecordPublisherImpl) PublishRecord(ctx context.Context, message *audit.OutboxMessage) error {
	record, err := message.Record()
	if err != nil {
		p.logger.Error("Failed to unmarshal audit record from outbox payload",
			"outbox_id", message.ID, "record_id", message.RecordID, "error", err,
		)
		// A corrupt payload never becomes deliverable
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, audit.OutboxStatusFailed); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	// Add correlation ID to logger
	logger := p.logger
	if record.CorrelationID != "" {
		logger = p.logger.With("correlation_id", record.CorrelationID)
	}

	logger.Debug("Attempting to append audit record", "outbox_id", message.ID, "record_id", record.ID.String())

	if err := p.store.Append(ctx, record); err != nil {
		logger.Error("Failed to append audit record to store", "record_id", record.ID.String(), "error", err)
		return fmt.Errorf("failed to append audit record %s: %w", record.ID.String(), err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, audit.OutboxStatusPublished); err != nil {
		logger.Error("Failed to update outbox message status to PUBLISHED",
			"outbox_id", message.ID, "record_id", record.ID.String(), "error", err,
		)
		return fmt.Errorf("audit write for %s OK, but failed to mark outbox %d as PUBLISHED: %w", record.ID.String(), message.ID, err)
	}

	logger.Info("Audit record published", "outbox_id", message.ID, "record_id", record.ID.String(), "action", string(record.Action))
	return nil
}
