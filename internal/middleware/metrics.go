package middleware

import (
	"time"

	"admin-console-go/internal/logging"
	"admin-console-go/internal/monitoring"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records per-route counters and latency. Unknown routes share the
// "unmatched" label so random paths cannot blow up cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		monitoring.HTTPInFlight.Inc()
		defer func() {
			monitoring.HTTPInFlight.Dec()
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request.Method
			monitoring.HTTPRequestsTotal.WithLabelValues(method, route, logging.StatusClass(c.Writer.Status())).Inc()
			monitoring.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		}()
		c.Next()
	}
}

// MetricsHandler serves the default registry.
var MetricsHandler = gin.WrapH(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
	ErrorHandling: promhttp.ContinueOnError,
}))
