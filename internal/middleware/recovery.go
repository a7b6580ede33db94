package middleware

import (
	"net/http"
	"runtime/debug"

	apierrors "admin-console-go/internal/errors"
	"admin-console-go/internal/logging"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Recovery turns a handler panic into a 500 in the API's error shape.
func Recovery() gin.HandlerFunc {
	return RecoveryWithWriter(nil)
}

// RecoveryWithWriter also hands the recovered value to onPanic.
func RecoveryWithWriter(onPanic gin.RecoveryFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logging.WithCall(c.Request.Method, c.Request.URL.Path, RequestIDFrom(c), log.Fields{
				"panic": r,
				"stack": string(debug.Stack()),
			}).Error("handler panicked")

			if onPanic != nil {
				onPanic(c, r)
			}
			if !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					apierrors.New(http.StatusInternalServerError, apierrors.MessageUnexpected))
				return
			}
			c.Abort()
		}()
		c.Next()
	}
}
