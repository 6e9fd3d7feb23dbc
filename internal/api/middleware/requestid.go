package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/MarkShawn2020/lovcode/backend/internal/shared/id"
)

const requestIDHeader = "X-Request-ID"

// RequestID propagates an inbound request id or mints a fresh one, making
// log lines and responses correlatable.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = id.NewRequestID().String()
		}

		c.Set("request_id", reqID)
		c.Writer.Header().Set(requestIDHeader, reqID)
		c.Next()
	}
}
