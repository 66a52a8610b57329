package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorResponse is the JSON body for any failed request.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler renders errors that handlers record with c.Error. The last
// recorded error wins; when it (or anything it wraps) carries a StatusCode
// the response uses that status, otherwise 500. Handlers that already wrote
// a response, such as partial-batch 207s, are left alone.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		requestID := c.GetString(ContextRequestID)
		last := c.Errors.Last()

		status := http.StatusInternalServerError
		var coded interface{ StatusCode() int }
		if errors.As(last.Err, &coded) {
			status = coded.StatusCode()
		}

		log.Error().
			Err(last.Err).
			Int("status", status).
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")

		c.JSON(status, ErrorResponse{
			Code:      status,
			Message:   last.Error(),
			RequestID: requestID,
		})
	}
}
