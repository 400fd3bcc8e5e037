package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sia-project/sia-api/internal/service"
)

// Metrics observes method/route/status/duration for every request. The
// observability endpoints themselves are skipped so scrapes do not inflate
// the series.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		switch route {
		case "/metrics", "/health", "/ready":
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		metricsSvc.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
