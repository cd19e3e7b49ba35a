package handler

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sana-bookkeeping/internal/api_gateway/service"
	"github.com/sana-bookkeeping/internal/domain/audit"
)

// AuditHandler exposes the company's audit trail
type AuditHandler struct {
	auditService service.AuditService
	logger       *slog.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(logger *slog.Logger, auditService service.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// List returns a page of the company's audit records, newest first
func (h *AuditHandler) List(c *gin.Context) {
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

	records, total, err := h.auditService.ListAuditTrail(c.Request.Context(), companyID, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list audit trail", "company_id", companyID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]AuditRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, mapAuditRecordToResponse(record))
	}

	RespondWithPaginatedData(c, 200, responses, pagination.Page, pagination.PerPage, int(total))
}

// mapAuditRecordToResponse maps an audit record to its response DTO
func mapAuditRecordToResponse(record *audit.Record) AuditRecordResponse {
	response := AuditRecordResponse{
		ID:            record.ID.String(),
		UserID:        record.UserID.String(),
		Action:        string(record.Action),
		EntityType:    record.EntityType,
		EntityID:      record.EntityID.String(),
		CorrelationID: record.CorrelationID,
		CreatedAt:     record.CreatedAt.Format(time.RFC3339),
	}
	if len(record.Detail) > 0 {
		var detail interface{}
		if err := json.Unmarshal(record.Detail, &detail); err == nil {
			response.Detail = detail
		}
	}
	return response
}
