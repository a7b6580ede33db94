package middleware

import (
	"time"

	"admin-console-go/internal/logging"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequestLogger logs HTTP requests
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		rid := RequestIDFrom(c)
		extras := log.Fields{
			"status":     c.Writer.Status(),
			"latency_ms": logging.DurationMS(time.Since(start)),
			"user_agent": c.Request.UserAgent(),
			"client_ip":  c.ClientIP(),
		}
		if tok := c.GetString(ContextAccessToken); tok != "" {
			extras["token"] = logging.MaskToken(tok)
		}
		if len(c.Errors) > 0 {
			extras["errors"] = c.Errors.String()
		}
		logging.WithCall(method, path, rid, extras).Info("http_request")
	}
}
