package middleware

import (
	"admin-console-go/internal/constants"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is echoed back so client and server logs correlate.
const RequestIDHeader = constants.HeaderRequestID

// ContextRequestID is the gin context key holding the request id.
const ContextRequestID = "request_id"

const maxRequestIDLen = 128

// RequestID accepts the caller's X-Request-ID, or assigns a UUID when it is
// missing or implausibly long.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}
		c.Set(ContextRequestID, rid)
		c.Header(RequestIDHeader, rid)
		c.Next()
	}
}

// RequestIDFrom returns the id assigned by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}
