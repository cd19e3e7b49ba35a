package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sana-bookkeeping/internal/domain/audit"
	"github.com/sana-bookkeeping/internal/domain/company"
	"github.com/sana-bookkeeping/internal/domain/document"
	"github.com/sana-bookkeeping/internal/domain/shared"
	"github.com/sana-bookkeeping/internal/platform/messaging/producers"
	"github.com/sana-bookkeeping/internal/platform/storage"
)

// DocumentServiceImpl implements the DocumentService interface
type DocumentServiceImpl struct {
	txRunner    TxRunner
	companyRepo company.Repository
	docRepo     document.Repository
	outboxRepo  audit.OutboxRepository
	files       storage.Storage
	producer    producers.MessagePublisher
	logger      *slog.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	logger *slog.Logger,
	txRunner TxRunner,
	companyRepo company.Repository,
	docRepo document.Repository,
	outboxRepo audit.OutboxRepository,
	files storage.Storage,
	producer producers.MessagePublisher,
) DocumentService {
	return &DocumentServiceImpl{
		txRunner:    txRunner,
		companyRepo: companyRepo,
		docRepo:     docRepo,
		outboxRepo:  outboxRepo,
		files:       files,
		producer:    producer,
		logger:      logger,
	}
}

// Upload stores the file bytes, persists the document with its audit record
// and publishes a reconciliation request. A failed publish does not fail the
// upload: the document stays in uploaded status and can be re-queued.
func (s *DocumentServiceImpl) Upload(ctx context.Context, companyID, userID uuid.UUID, fileName, mimeType string, data []byte, correlationID string) (*document.Document, error) {
	if _, err := s.companyRepo.GetByID(ctx, companyID); err != nil {
		return nil, err
	}

	// Domain validation (size, media type) before touching storage
	doc, err := document.NewDocument(companyID, userID, fileName, "", mimeType, int64(len(data)))
	if err != nil {
		return nil, err
	}

	ref, err := s.files.Store(ctx, companyID, fileName, data)
	if err != nil {
		s.logger.Error("Failed to store document file", "company_id", companyID.String(), "file_name", fileName, "error", err)
		return nil, err
	}
	doc.FileRef = ref

	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.docRepo.WithTx(tx).Create(ctx, doc); err != nil {
			return err
		}
		detail := map[string]interface{}{"file_name": doc.FileName, "file_size": doc.FileSize, "mime_type": doc.MimeType}
		return stageAudit(ctx, tx, s.outboxRepo, companyID, userID, audit.ActionDocumentUploaded, "document", doc.ID, detail, correlationID)
	})
	if err != nil {
		return nil, err
	}

	request := &shared.ReconciliationRequest{
		DocumentID:    doc.ID,
		CompanyID:     companyID,
		RequestedBy:   userID,
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, doc.ID.String(), request); err != nil {
		s.logger.Error("Failed to publish reconciliation request, document stays uploaded",
			"document_id", doc.ID.String(),
			"error", err,
		)
		return doc, nil
	}

	s.logger.Info("Document uploaded and queued for reconciliation",
		"document_id", doc.ID.String(),
		"company_id", companyID.String(),
		"file_name", doc.FileName,
	)

	return doc, nil
}

// GetDocumentByID retrieves a document by its ID
func (s *DocumentServiceImpl) GetDocumentByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	return s.docRepo.GetByID(ctx, id)
}

// ListDocuments returns a page of the company's documents with the total count
func (s *DocumentServiceImpl) ListDocuments(ctx context.Context, companyID uuid.UUID, page, perPage int) ([]*document.Document, int64, error) {
	offset := (page - 1) * perPage

	docs, err := s.docRepo.ListByCompany(ctx, companyID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.docRepo.CountByCompany(ctx, companyID)
	if err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}
