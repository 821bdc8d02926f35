package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oksasatya/go-auth-lifecycle/pkg/response"
)

// RequestID puts a request id into the Gin context (key: "request_id") and
// the response headers. A well formed incoming X-Request-ID is kept.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(response.RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(response.RequestIDHeader, id)
		c.Next()
	}
}
