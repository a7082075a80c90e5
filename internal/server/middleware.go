package server

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Meesho/BharatMLStack/inferline/pkg/logger"
	"github.com/Meesho/BharatMLStack/inferline/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// telemetryMiddleware records per-route latency and logs non-2xx responses.
func telemetryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		responseTime := time.Since(startTime)

		statusCode := c.Writer.Status()
		tags := []string{
			"path:" + c.FullPath(),
			"status:" + strconv.Itoa(statusCode),
		}
		metrics.Timing("inferline.http.latency", responseTime, tags)

		if statusCode >= 400 {
			logger.Warn(fmt.Sprintf("%s %s | %d | %s",
				c.Request.Method, c.FullPath(), statusCode, responseTime))
		}
	}
}
