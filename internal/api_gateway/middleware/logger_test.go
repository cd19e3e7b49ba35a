package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func loggingRouter(buf *bytes.Buffer) *gin.Engine {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	router := gin.New()
	router.Use(CorrelationID(), Identity(), Logger(logger))
	return router
}

func TestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("LogsRequestLine", func(t *testing.T) {
		var buf bytes.Buffer
		router := loggingRouter(&buf)
		router.GET("/documents", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		correlationID := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/documents?page=2", nil)
		req.Header.Set("User-Agent", "sana-tests")
		req.Header.Set(CorrelationIDHeader, correlationID)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		out := buf.String()
		assert.Contains(t, out, `"level":"INFO"`)
		assert.Contains(t, out, `"msg":"HTTP request"`)
		assert.Contains(t, out, `"method":"GET"`)
		assert.Contains(t, out, `"path":"/documents?page=2"`)
		assert.Contains(t, out, `"status":200`)
		assert.Contains(t, out, `"latency":`)
		assert.Contains(t, out, `"client_ip":`)
		assert.Contains(t, out, `"user_agent":"sana-tests"`)
		assert.Contains(t, out, `"correlation_id":"`+correlationID+`"`)
	})

	t.Run("IncludesUserIDWhenIdentified", func(t *testing.T) {
		var buf bytes.Buffer
		router := loggingRouter(&buf)
		router.POST("/entries", func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})

		userID := uuid.New()
		req := httptest.NewRequest(http.MethodPost, "/entries", nil)
		req.Header.Set(UserIDHeader, userID.String())
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		out := buf.String()
		assert.Contains(t, out, `"status":201`)
		assert.Contains(t, out, `"user_id":"`+userID.String()+`"`)
	})

	t.Run("ClientErrorsLogAtWarn", func(t *testing.T) {
		var buf bytes.Buffer
		router := loggingRouter(&buf)
		router.GET("/missing", func(c *gin.Context) {
			c.Status(http.StatusNotFound)
		})

		req := httptest.NewRequest(http.MethodGet, "/missing", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		out := buf.String()
		assert.Contains(t, out, `"level":"WARN"`)
		assert.Contains(t, out, `"status":404`)
	})

	t.Run("ServerErrorsLogAtError", func(t *testing.T) {
		var buf bytes.Buffer
		router := loggingRouter(&buf)
		router.GET("/broken", func(c *gin.Context) {
			c.Status(http.StatusInternalServerError)
		})

		req := httptest.NewRequest(http.MethodGet, "/broken", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Contains(t, buf.String(), `"level":"ERROR"`)
	})
}
