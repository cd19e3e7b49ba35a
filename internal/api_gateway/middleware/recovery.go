package middleware

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery converts panics in the handler chain into a 500 response with the
// gateway's error envelope. A panic caused by the client going away mid-write
// is logged and the connection abandoned without writing a response.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			attrs := []any{
				slog.Any("error", r),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
				slog.String(CorrelationIDKey, GetCorrelationID(c)),
			}

			if isClientDisconnect(r) {
				logger.Error("Connection lost during request", attrs...)
				c.Abort()
				return
			}

			attrs = append(attrs, slog.String("stack", string(debug.Stack())))
			logger.Error("Panic recovered", attrs...)

			body := gin.H{
				"error": gin.H{
					"code":    "INTERNAL_SERVER_ERROR",
					"message": "An internal server error occurred",
				},
			}
			if id := GetCorrelationID(c); id != "" {
				body["correlation_id"] = id
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()

		c.Next()
	}
}

func isClientDisconnect(r any) bool {
	err, ok := r.(error)
	if !ok {
		return false
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	return errors.As(opErr.Err, &sysErr)
}
