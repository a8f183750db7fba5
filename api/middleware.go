package api

import (
	"net/http"
	"runtime/debug"
	"time"

	"pdf_watermark/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestLogger assigns a request id, stores it on the request context and
// writes one access log line per request
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(RequestIDHeader, reqID)
		c.Request = c.Request.WithContext(logger.WithRequest(c.Request.Context(), reqID))

		c.Next()

		status := c.Writer.Status()
		ev := logger.C(c.Request.Context()).Info()
		if status >= http.StatusInternalServerError {
			ev = logger.C(c.Request.Context()).Error()
		} else if status >= http.StatusBadRequest {
			ev = logger.C(c.Request.Context()).Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

// Recovery turns a panic into a JSON 500 and logs the stack
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if v := recover(); v != nil {
				logger.C(c.Request.Context()).Error().
					Interface("panic", v).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":      "internal server error",
					"code":       "unknown",
					"request_id": logger.RequestID(c.Request.Context()),
				})
			}
		}()
		c.Next()
	}
}
