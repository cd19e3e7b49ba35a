package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sana-bookkeeping/internal/api_gateway/handler"
	"github.com/sana-bookkeeping/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application.
// assistantHandler may be nil when the chat helper is disabled; its route
// is simply not registered.
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	companyHandler *handler.CompanyHandler,
	documentHandler *handler.DocumentHandler,
	transactionHandler *handler.TransactionHandler,
	entryHandler *handler.EntryHandler,
	auditHandler *handler.AuditHandler,
	assistantHandler *handler.AssistantHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Identity())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Company operations
		companies := v1.Group("/companies")
		{
			companies.POST("", companyHandler.Create)
			companies.GET("/:id", companyHandler.GetByID)
		}

		// Document upload and status
		documents := v1.Group("/documents")
		{
			documents.POST("", documentHandler.Upload)
			documents.GET("", documentHandler.List)
			documents.GET("/:id", documentHandler.GetByID)
		}

		// Bank transaction import and listing
		transactions := v1.Group("/transactions")
		{
			transactions.POST("/import", transactionHandler.Import)
			transactions.GET("", transactionHandler.List)
		}

		// Suggested entry review
		entries := v1.Group("/entries")
		{
			entries.GET("", entryHandler.List)
			entries.POST("/:id/confirm", entryHandler.Confirm)
			entries.POST("/:id/reject", entryHandler.Reject)
		}

		// Audit trail
		v1.GET("/audit", auditHandler.List)

		if assistantHandler != nil {
			v1.POST("/assistant/chat", assistantHandler.Chat)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
