package middleware

import (
	"strconv"
	"time"

	"glow_store/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware 采集 HTTP 请求指标
func MetricsMiddleware() gin.HandlerFunc {
	collector := metrics.GetGlobalCollector()
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			// 未匹配到路由（404），避免高基数标签
			endpoint = "unmatched"
		}
		collector.RecordHTTPRequest(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start).Seconds(),
		)
	}
}
