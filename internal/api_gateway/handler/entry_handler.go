package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sana-bookkeeping/internal/api_gateway/middleware"
	"github.com/sana-bookkeeping/internal/api_gateway/service"
	"github.com/sana-bookkeeping/internal/domain/entry"
)

// EntryHandler handles HTTP requests for entry review operations
type EntryHandler struct {
	entryService service.EntryService
	logger       *slog.Logger
}

// NewEntryHandler creates a new entry handler
func NewEntryHandler(logger *slog.Logger, entryService service.EntryService) *EntryHandler {
	return &EntryHandler{
		entryService: entryService,
		logger:       logger,
	}
}

// List returns a page of the company's entries, optionally filtered by status
func (h *EntryHandler) List(c *gin.Context) {
	companyID, err := uuid.Parse(c.Query("company_id"))
	if err != nil {
		RespondBadRequest(c, "Invalid company_id")
		return
	}

	status := entry.Status(c.Query("status"))
	switch status {
	case "", entry.StatusSuggested, entry.StatusConfirmed, entry.StatusRejected:
	default:
		RespondBadRequest(c, "Invalid status filter")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	entries, total, err := h.entryService.ListEntries(c.Request.Context(), companyID, status, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list entries", "company_id", companyID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, mapEntryToResponse(e))
	}

	RespondWithPaginatedData(c, 200, responses, pagination.Page, pagination.PerPage, int(total))
}

// Confirm transitions a suggested entry to confirmed
func (h *EntryHandler) Confirm(c *gin.Context) {
	h.review(c, h.entryService.ConfirmEntry)
}

// Reject transitions a suggested entry to rejected
func (h *EntryHandler) Reject(c *gin.Context) {
	h.review(c, h.entryService.RejectEntry)
}

func (h *EntryHandler) review(c *gin.Context, transition func(ctx context.Context, entryID, userID uuid.UUID, correlationID string) (*entry.Entry, error)) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "Missing or invalid "+middleware.UserIDHeader+" header")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid entry ID")
		return
	}

	e, err := transition(c.Request.Context(), entryID, userID, middleware.GetCorrelationID(c))
	if err != nil {
		switch {
		case errors.Is(err, entry.ErrEntryNotFound{}):
			RespondNotFound(c, "Entry not found")
		case errors.Is(err, entry.ErrInvalidTransition):
			RespondConflict(c, "Entry has already been reviewed")
		default:
			h.logger.Error("Failed to review entry", "entry_id", entryID.String(), "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondOK(c, mapEntryToResponse(e))
}

// mapEntryToResponse maps an entry entity to its response DTO
func mapEntryToResponse(e *entry.Entry) EntryResponse {
	response := EntryResponse{
		ID:            e.ID.String(),
		CompanyID:     e.CompanyID.String(),
		DebitAccount:  e.DebitAccount,
		CreditAccount: e.CreditAccount,
		Amount:        e.Amount,
		Currency:      e.Currency,
		Description:   e.Description,
		Status:        string(e.Status),
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     e.UpdatedAt.Format(time.RFC3339),
	}
	if e.TransactionID != nil {
		response.TransactionID = e.TransactionID.String()
	}
	if e.DocumentID != nil {
		response.DocumentID = e.DocumentID.String()
	}
	if e.ConfirmedBy != nil {
		response.ConfirmedBy = e.ConfirmedBy.String()
	}
	if e.ConfirmedAt != nil {
		response.ConfirmedAt = e.ConfirmedAt.Format(time.RFC3339)
	}
	return response
}
