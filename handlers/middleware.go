package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader names the header carrying the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// RequestID tags every response with a correlation ID, echoing one supplied
// by the client or generating a fresh UUID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
