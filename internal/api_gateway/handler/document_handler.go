package handler

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sana-bookkeeping/internal/api_gateway/middleware"
	"github.com/sana-bookkeeping/internal/api_gateway/service"
	"github.com/sana-bookkeeping/internal/domain/company"
	"github.com/sana-bookkeeping/internal/domain/document"
)

// DocumentHandler handles HTTP requests for document operations
type DocumentHandler struct {
	documentService service.DocumentService
	logger          *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(logger *slog.Logger, documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger,
	}
}

// Upload accepts a multipart document upload and queues it for
// reconciliation. Responds 202: extraction happens asynchronously and the
// client polls GET /documents/:id for the outcome.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "Missing or invalid "+middleware.UserIDHeader+" header")
		return
	}

	companyID, err := uuid.Parse(c.PostForm("company_id"))
	if err != nil {
		RespondBadRequest(c, "Invalid company_id")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondBadRequest(c, "Missing file")
		return
	}
	if fileHeader.Size > document.MaxFileSize {
		RespondBadRequest(c, document.ErrFileTooLarge.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", "error", err)
		RespondInternalError(c)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read uploaded file", "error", err)
		RespondInternalError(c)
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	correlationID := middleware.GetCorrelationID(c)

	doc, err := h.documentService.Upload(c.Request.Context(), companyID, userID, fileHeader.Filename, mimeType, data, correlationID)
	if err != nil {
		switch {
		case errors.Is(err, company.ErrCompanyNotFound{}):
			RespondNotFound(c, "Company not found")
		case errors.Is(err, document.ErrEmptyFileName),
			errors.Is(err, document.ErrFileTooLarge),
			errors.Is(err, document.ErrUnsupportedMimeType):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to upload document", "company_id", companyID.String(), "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondAccepted(c, mapDocumentToResponse(doc))
}

// GetByID returns a document with its current pipeline status
func (h *DocumentHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid document ID")
		return
	}

	doc, err := h.documentService.GetDocumentByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, document.ErrDocumentNotFound{}) {
			RespondNotFound(c, "Document not found")
			return
		}
		h.logger.Error("Failed to get document", "id", id.String(), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapDocumentToResponse(doc))
}

// List returns a page of the company's documents, newest first
func (h *DocumentHandler) List(c *gin.Context) {
	companyID, err := uuid.Parse(c.Query("company_id"))
	if err != nil {
		RespondBadRequest(c, "Invalid company_id")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	docs, total, err := h.documentService.ListDocuments(c.Request.Context(), companyID, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list documents", "company_id", companyID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		responses = append(responses, mapDocumentToResponse(doc))
	}

	RespondWithPaginatedData(c, 200, responses, pagination.Page, pagination.PerPage, int(total))
}

// mapDocumentToResponse maps a document entity to its response DTO
func mapDocumentToResponse(doc *document.Document) DocumentResponse {
	response := DocumentResponse{
		ID:        doc.ID.String(),
		CompanyID: doc.CompanyID.String(),
		FileName:  doc.FileName,
		FileSize:  doc.FileSize,
		MimeType:  doc.MimeType,
		Status:    string(doc.Status),
		CreatedAt: doc.CreatedAt.Format(time.RFC3339),
		UpdatedAt: doc.UpdatedAt.Format(time.RFC3339),
	}

	if doc.Extracted != nil {
		response.Extracted = &ExtractedFieldsResponse{
			Category:     string(doc.Extracted.Category),
			Amount:       doc.Extracted.Amount,
			Currency:     doc.Extracted.Currency,
			Date:         doc.Extracted.Date.Format("2006-01-02"),
			Counterparty: doc.Extracted.Counterparty,
			Confidence:   doc.Extracted.Confidence,
		}
	}

	return response
}
