package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sana-bookkeeping/internal/domain/shared"
	"github.com/sana-bookkeeping/internal/platform/messaging/producers"
	"github.com/sana-bookkeeping/internal/reconciler/service"
)

// DocumentEventHandler handles incoming reconciliation request messages from Kafka
type DocumentEventHandler struct {
	reconcileService service.ReconcileService
	producer         producers.DeadLetterPublisher
	logger           *slog.Logger
}

// NewDocumentEventHandler creates a new handler
func NewDocumentEventHandler(
	logger *slog.Logger,
	reconcileService service.ReconcileService,
	producer producers.DeadLetterPublisher,
) *DocumentEventHandler {
	return &DocumentEventHandler{
		reconcileService: reconcileService,
		producer:         producer,
		logger:           logger,
	}
}

// HandleMessage processes Kafka messages
func (h *DocumentEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.ReconciliationRequest
	if err := json.Unmarshal(value, &request); err != nil {
		return h.divertToDLQ(ctx, key, value, "Failed to unmarshal reconciliation request from Kafka message", err)
	}

	if err := request.Validate(); err != nil {
		return h.divertToDLQ(ctx, key, value, "Reconciliation request failed validation", err)
	}

	// Add correlation ID to logger
	logger := h.logger
	if request.CorrelationID != "" {
		logger = h.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Received reconciliation request",
		"document_id", request.DocumentID.String(),
		"company_id", request.CompanyID.String(),
	)

	if err := h.reconcileService.ProcessDocument(ctx, &request); err != nil {
		logger.Error("Failed to reconcile document",
			"document_id", request.DocumentID.String(),
			"company_id", request.CompanyID.String(),
			"error", err,
		)
		return fmt.Errorf("reconciling document %s failed: %w", request.DocumentID.String(), err)
	}

	logger.Info("Successfully reconciled document", "document_id", request.DocumentID.String())
	return nil // Success, commit offset
}

// divertToDLQ parks an unprocessable message on the dead letter topic so the
// partition can move on. If the DLQ publish itself fails the original error is
// returned and Kafka redelivers.
func (h *DocumentEventHandler) divertToDLQ(ctx context.Context, key []byte, value []byte, msg string, cause error) error {
	h.logger.Error(msg,
		"error", cause,
		"message_key", string(key),
	)

	if h.producer != nil {
		dlqReason := fmt.Sprintf("%s: %s", msg, cause.Error())
		if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
			h.logger.Error("Failed to publish message to DLQ",
				"dlq_error", dlqErr,
				"original_error", cause,
				"message_key", string(key),
			)
		} else {
			h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
			// Message handled, commit offset
			return nil
		}
	}
	// Allow Kafka retries
	return fmt.Errorf("%s: %w", msg, cause)
}
