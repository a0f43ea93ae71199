package middleware

import (
	"strconv"
	"time"

	"ai-chef-service/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 記錄每個請求的 prometheus 指標；未匹配路由歸為 "unmatched"
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
