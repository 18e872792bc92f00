package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/sciome/bmdexpress-web/internal/metrics"
)

// MetricsMiddleware records request counts and latencies by route
// template, so ids in paths do not create new series.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		done := m.RequestStarted()
		c.Next()
		done(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
