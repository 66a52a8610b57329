package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/careloop/visitcare-api/pkg/errors"
)

func errorTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	return r
}

func TestErrorHandlerMapsAppErrorStatus(t *testing.T) {
	r := errorTestRouter()
	r.GET("/boom", func(c *gin.Context) {
		c.Error(apperrors.NotFound("visit", nil))
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(HeaderXRequestID, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "visit not found")
	assert.Contains(t, w.Body.String(), `"request_id":"req-123"`)
}

func TestErrorHandlerMapsWrappedAppError(t *testing.T) {
	r := errorTestRouter()
	r.GET("/boom", func(c *gin.Context) {
		c.Error(fmt.Errorf("loading visit: %w", apperrors.BadRequest("invalid visit ID", nil)))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorHandlerDefaultsToInternal(t *testing.T) {
	r := errorTestRouter()
	r.GET("/boom", func(c *gin.Context) {
		c.Error(fmt.Errorf("backend unavailable"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestErrorHandlerSkipsWrittenResponses(t *testing.T) {
	r := errorTestRouter()
	r.GET("/partial", func(c *gin.Context) {
		c.JSON(http.StatusMultiStatus, gin.H{"status": "partial"})
		c.Error(fmt.Errorf("one member failed"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/partial", nil))

	assert.Equal(t, http.StatusMultiStatus, w.Code)
	assert.Contains(t, w.Body.String(), "partial")
	assert.NotContains(t, w.Body.String(), "one member failed")
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	r := errorTestRouter()
	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))
}
