package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/sana-bookkeeping/internal/config"
	"github.com/sana-bookkeeping/internal/domain/audit"
	"github.com/sana-bookkeeping/internal/domain/banktxn"
	"github.com/sana-bookkeeping/internal/domain/document"
	"github.com/sana-bookkeeping/internal/domain/entry"
	"github.com/sana-bookkeeping/internal/domain/shared"
	"github.com/sana-bookkeeping/internal/extraction"
)

// ReconcileServiceImpl drives the pipeline for one document: claim the
// document, extract fields, persist them, try to match a bank transaction
// and synthesize a suggested entry. Each stage's failure is isolated: an
// extraction failure leaves the document in error and retryable; a match or
// synthesis failure leaves the document done without an entry.
type ReconcileServiceImpl struct {
	pgDB        TxRunner
	docRepo     document.Repository
	txnRepo     banktxn.Repository
	entryRepo   entry.Repository
	extractor   extraction.Extractor
	matcher     Matcher
	synthesizer Synthesizer
	auditor     AuditStager
	policy      *config.MatchingConfig
	logger      *slog.Logger
}

func NewReconcileService(
	pgDB TxRunner,
	docRepo document.Repository,
	txnRepo banktxn.Repository,
	entryRepo entry.Repository,
	extractor extraction.Extractor,
	matcher Matcher,
	synthesizer Synthesizer,
	auditor AuditStager,
	policy *config.MatchingConfig,
	logger *slog.Logger,
) ReconcileService {
	return &ReconcileServiceImpl{
		pgDB:        pgDB,
		docRepo:     docRepo,
		txnRepo:     txnRepo,
		entryRepo:   entryRepo,
		extractor:   extractor,
		matcher:     matcher,
		synthesizer: synthesizer,
		auditor:     auditor,
		policy:      policy,
		logger:      logger,
	}
}

// ProcessDocument runs the reconciliation pipeline for the requested
// document. A nil return acknowledges the message; errors are returned only
// for transient infrastructure failures where a redelivery can succeed.
func (s *ReconcileServiceImpl) ProcessDocument(ctx context.Context, request *shared.ReconciliationRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = s.logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Processing reconciliation request",
		"document_id", request.DocumentID.String(),
		"company_id", request.CompanyID.String(),
	)

	doc, err := s.docRepo.GetByID(ctx, request.DocumentID)
	if err != nil {
		if errors.Is(err, document.ErrDocumentNotFound{}) {
			logger.Warn("Document no longer exists, dropping request", "document_id", request.DocumentID.String())
			return nil
		}
		return err
	}

	// The status predicate serializes racing pipeline runs: only one of two
	// concurrent requests for the same document gets past this point.
	claimed, err := s.docRepo.ClaimForProcessing(ctx, doc.ID)
	if err != nil {
		return err
	}
	if !claimed {
		logger.Info("Document already claimed by another pipeline run",
			"document_id", doc.ID.String(),
			"status", string(doc.Status),
		)
		return nil
	}
	doc.Status = document.StatusProcessing

	fields, raw, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		logger.Error("Extraction failed, marking document as failed",
			"document_id", doc.ID.String(),
			"error", err,
		)
		return s.recordExtractionFailure(ctx, request, doc, err)
	}

	doc.ApplyExtraction(fields, raw)

	if err := s.persistExtraction(ctx, request, doc); err != nil {
		logger.Error("Failed to persist extraction", "document_id", doc.ID.String(), "error", err)
		// Best effort: park the document in error so the redelivery can
		// claim it right away instead of waiting out the stale-claim window.
		if markErr := s.docRepo.MarkError(ctx, doc.ID); markErr != nil {
			logger.Error("Failed to mark document after persist failure",
				"document_id", doc.ID.String(),
				"error", markErr,
			)
		}
		return err
	}

	// From here on the document is done; match or synthesis failures
	// degrade to a partial success without an entry.
	if err := s.matchAndSynthesize(ctx, request, doc, logger); err != nil {
		logger.Error("Match/synthesis stage failed, document left without entry",
			"document_id", doc.ID.String(),
			"error", err,
		)
	}

	return nil
}

// recordExtractionFailure moves the document to error and stages the audit
// record in one transaction. The document stays retryable by re-triggering.
func (s *ReconcileServiceImpl) recordExtractionFailure(ctx context.Context, request *shared.ReconciliationRequest, doc *document.Document, cause error) error {
	err := s.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.docRepo.WithTx(tx).MarkError(ctx, doc.ID); err != nil {
			return err
		}
		detail := map[string]string{"error": cause.Error()}
		return s.auditor.Stage(ctx, tx, doc.CompanyID, request.RequestedBy, audit.ActionExtractionFailed, "document", doc.ID, detail, request.CorrelationID)
	})
	if err != nil {
		// The transaction rolled back, leaving the document in processing.
		// Try the status write alone; the stale-claim window covers the
		// case where this fails too.
		if markErr := s.docRepo.MarkError(ctx, doc.ID); markErr != nil {
			s.logger.Error("Failed to mark document after failed failure record",
				"document_id", doc.ID.String(),
				"error", markErr,
			)
		}
		return fmt.Errorf("failed to record extraction failure for document %s: %w", doc.ID.String(), err)
	}
	return nil
}

// persistExtraction commits the extracted fields, the done status and the
// extraction audit record atomically
func (s *ReconcileServiceImpl) persistExtraction(ctx context.Context, request *shared.ReconciliationRequest, doc *document.Document) error {
	err := s.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.docRepo.WithTx(tx).SaveExtraction(ctx, doc); err != nil {
			return err
		}
		return s.auditor.Stage(ctx, tx, doc.CompanyID, request.RequestedBy, audit.ActionDocumentExtracted, "document", doc.ID, doc.Extracted, request.CorrelationID)
	})
	if err != nil {
		return fmt.Errorf("failed to persist extraction for document %s: %w", doc.ID.String(), err)
	}
	return nil
}

// matchAndSynthesize ranks the company's unmatched transactions, claims the
// best candidate and creates the suggested entry. Claim, entry creation and
// audit records share one transaction: either the document gains a fully
// recorded entry or nothing changes.
func (s *ReconcileServiceImpl) matchAndSynthesize(ctx context.Context, request *shared.ReconciliationRequest, doc *document.Document, logger *slog.Logger) error {
	pool, err := s.txnRepo.ListUnmatched(ctx, doc.CompanyID)
	if err != nil {
		return err
	}

	candidates := s.matcher.Rank(doc, pool)

	return s.pgDB.ExecuteTx(ctx, func(tx pgx.Tx) error {
		txnRepoTx := s.txnRepo.WithTx(tx)

		// Work down the ranking: a lost claim means a concurrent run took
		// that transaction, so the next candidate gets its chance.
		var matched *banktxn.Transaction
		for _, candidate := range candidates {
			won, err := txnRepoTx.Claim(ctx, candidate.Transaction.ID, doc.ID)
			if err != nil {
				return err
			}
			if won {
				matched = candidate.Transaction
				logger.Info("Matched bank transaction",
					"document_id", doc.ID.String(),
					"transaction_id", matched.ID.String(),
					"score", candidate.Score,
				)
				break
			}
			logger.Debug("Lost claim race for candidate, trying next",
				"document_id", doc.ID.String(),
				"transaction_id", candidate.Transaction.ID.String(),
			)
		}

		var e *entry.Entry
		if matched != nil {
			e, err = s.synthesizer.Synthesize(doc, matched)
			if err != nil {
				return err
			}
		} else {
			logger.Info("No matching transaction", "document_id", doc.ID.String())
			if !s.policy.SuggestWithoutTransaction {
				return nil
			}
			e, err = s.synthesizer.Synthesize(doc, nil)
			if err != nil {
				if errors.Is(err, entry.ErrUnresolvableAccounts{}) {
					logger.Info("Category does not imply a direction, skipping entry",
						"document_id", doc.ID.String(),
					)
					return nil
				}
				return err
			}
		}

		if err := s.entryRepo.WithTx(tx).Create(ctx, e); err != nil {
			return err
		}

		if matched != nil {
			detail := map[string]string{"document_id": doc.ID.String()}
			if err := s.auditor.Stage(ctx, tx, doc.CompanyID, request.RequestedBy, audit.ActionTransactionClaim, "bank_transaction", matched.ID, detail, request.CorrelationID); err != nil {
				return err
			}
		}

		if err := s.auditor.Stage(ctx, tx, doc.CompanyID, request.RequestedBy, audit.ActionEntrySuggested, "entry", e.ID, e, request.CorrelationID); err != nil {
			return err
		}

		logger.Info("Suggested entry created",
			"document_id", doc.ID.String(),
			"entry_id", e.ID.String(),
			"debit", e.DebitAccount,
			"credit", e.CreditAccount,
			"amount", e.Amount,
		)

		return nil
	})
}
