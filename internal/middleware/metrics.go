package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/examplanner-api/internal/service"
)

// Probe and scrape endpoints would dominate request counters.
var unmeteredPaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/metrics": true,
}

// Metrics records request counts and latency per route template. Requests
// that match no route share the "unmatched" label.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || unmeteredPaths[c.Request.URL.Path] {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
