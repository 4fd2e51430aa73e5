package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sakthi0701/SIH2025-sub000/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics records method, route, status and latency for every request. Requests that
// match no route share one label so unknown paths cannot grow the series set.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
