package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TraceHeader 链路ID的透传请求头
	TraceHeader = "X-Trace-ID"
	// TraceKey gin context 里存链路ID的键
	TraceKey = "traceID"
)

// TraceMiddleware 透传上游带来的链路ID，没有就生成一个，并写回响应头
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		c.Set(TraceKey, traceID)
		c.Header(TraceHeader, traceID)

		c.Next()
	}
}
