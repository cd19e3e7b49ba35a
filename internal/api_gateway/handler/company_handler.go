package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sana-bookkeeping/internal/api_gateway/service"
	"github.com/sana-bookkeeping/internal/domain/company"
)

// CompanyHandler handles HTTP requests for company operations
type CompanyHandler struct {
	companyService service.CompanyService
	logger         *slog.Logger
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(logger *slog.Logger, companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
		logger:         logger,
	}
}

// Create handles registration of a new company
func (h *CompanyHandler) Create(c *gin.Context) {
	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	comp, err := h.companyService.CreateCompany(c.Request.Context(), req.Name, req.BinIIN, company.TaxRegime(req.TaxRegime), req.Currency)
	if err != nil {
		if errors.Is(err, company.ErrEmptyName) || errors.Is(err, company.ErrInvalidTaxRegime) || errors.Is(err, company.ErrInvalidBaseCurrency) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create company", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapCompanyToResponse(comp))
}

// GetByID retrieves a company by its ID, returning 404 if not found
func (h *CompanyHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid company ID")
		return
	}

	comp, err := h.companyService.GetCompanyByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, company.ErrCompanyNotFound{}) {
			RespondNotFound(c, "Company not found")
			return
		}
		h.logger.Error("Failed to get company", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapCompanyToResponse(comp))
}

// mapCompanyToResponse maps a company entity to its response DTO
func mapCompanyToResponse(comp *company.Company) CompanyResponse {
	return CompanyResponse{
		ID:        comp.ID.String(),
		Name:      comp.Name,
		BinIIN:    comp.BinIIN,
		TaxRegime: string(comp.TaxRegime),
		Currency:  comp.Currency,
		CreatedAt: comp.CreatedAt.Format(time.RFC3339),
		UpdatedAt: comp.UpdatedAt.Format(time.RFC3339),
	}
}
