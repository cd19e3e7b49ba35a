package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sana-bookkeeping/internal/api_gateway/middleware"
	"github.com/sana-bookkeeping/internal/api_gateway/service"
	"github.com/sana-bookkeeping/internal/domain/banktxn"
	"github.com/sana-bookkeeping/internal/domain/company"
	"github.com/sana-bookkeeping/internal/importer"
)

// TransactionHandler handles HTTP requests for bank transaction operations
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// Import accepts a CSV bank statement in the request body and returns the
// per-row import result. Rejected rows come back with line numbers and
// reasons; only a statement with zero parseable rows is an error.
func (h *TransactionHandler) Import(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "Missing or invalid "+middleware.UserIDHeader+" header")
		return
	}

	companyID, err := uuid.Parse(c.Query("company_id"))
	if err != nil {
		RespondBadRequest(c, "Invalid company_id")
		return
	}

	correlationID := middleware.GetCorrelationID(c)

	result, err := h.transactionService.ImportStatement(c.Request.Context(), companyID, userID, c.Request.Body, correlationID)
	if err != nil {
		switch {
		case errors.Is(err, company.ErrCompanyNotFound{}):
			RespondNotFound(c, "Company not found")
		case errors.Is(err, importer.ErrEmptyBatch):
			RespondBadRequest(c, "Statement contains no parseable rows")
		default:
			h.logger.Error("Failed to import statement", "company_id", companyID.String(), "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapImportResultToResponse(result))
}

// List returns a page of the company's bank transactions, newest first
func (h *TransactionHandler) List(c *gin.Context) {
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

	txns, total, err := h.transactionService.ListTransactions(c.Request.Context(), companyID, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list transactions", "company_id", companyID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		responses = append(responses, mapTransactionToResponse(txn))
	}

	RespondWithPaginatedData(c, 200, responses, pagination.Page, pagination.PerPage, int(total))
}

// mapImportResultToResponse maps an import result to its response DTO
func mapImportResultToResponse(result *importer.Result) ImportResultResponse {
	rejected := make([]RejectedRowResponse, 0, len(result.Rejected))
	for _, row := range result.Rejected {
		rejected = append(rejected, RejectedRowResponse{
			Line:   row.Line,
			Reason: string(row.Reason),
		})
	}
	return ImportResultResponse{
		Accepted: len(result.Accepted),
		Rejected: rejected,
	}
}

// mapTransactionToResponse maps a transaction entity to its response DTO
func mapTransactionToResponse(txn *banktxn.Transaction) TransactionResponse {
	response := TransactionResponse{
		ID:              txn.ID.String(),
		CompanyID:       txn.CompanyID.String(),
		TransactionDate: txn.TransactionDate.Format("2006-01-02"),
		Description:     txn.Description,
		Amount:          txn.Amount,
		Currency:        txn.Currency,
		IsMatched:       txn.IsMatched,
		CreatedAt:       txn.CreatedAt.Format(time.RFC3339),
	}
	if txn.MatchedDocumentID != nil {
		response.MatchedDocumentID = txn.MatchedDocumentID.String()
	}
	return response
}
