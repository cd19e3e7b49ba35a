package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CorrelationIDHeader is the request/response header carrying the correlation ID.
	CorrelationIDHeader = "X-Correlation-ID"
	// CorrelationIDKey is the gin context key the correlation ID is stored under.
	CorrelationIDKey = "correlation_id"
)

// CorrelationID takes the correlation ID from the incoming request, or mints a
// new one when the header is absent, and makes it available to downstream
// handlers and to the caller via the response header.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(CorrelationIDHeader))
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(CorrelationIDKey, id)
		c.Writer.Header().Set(CorrelationIDHeader, id)

		c.Next()
	}
}

// GetCorrelationID returns the correlation ID for the current request, or an
// empty string when none was set.
func GetCorrelationID(c *gin.Context) string {
	if id, ok := c.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}
