package middleware

import (
	"net/http"
	"strings"

	apierrors "admin-console-go/internal/errors"

	"github.com/gin-gonic/gin"
)

// ContextAccessToken is the gin context key holding the accepted token.
const ContextAccessToken = "access_token"

// BearerAuth admits requests whose bearer token passes validate and rejects
// the rest with a 401 in the API's error shape.
func BearerAuth(validate func(token string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		switch {
		case token == "":
			respondUnauthorized(c, "Authorization token not provided")
			return
		case validate != nil && !validate(token):
			respondUnauthorized(c, "Unauthorized")
			return
		}
		c.Set(ContextAccessToken, token)
		c.Next()
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.New(http.StatusUnauthorized, message))
}
