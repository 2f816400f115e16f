package middleware

import (
	"time"

	"ragstack-deploy/services"

	"github.com/gin-gonic/gin"
)

/**
 * HTTP请求统计中间件
 * @description
 * - 统计观察API收到的请求数量
 * - 记录请求处理时间
 * - 区分成功和失败的请求
 */
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 记录请求开始时间
		start := time.Now()

		// 处理请求
		c.Next()

		// 计算请求处理时间
		duration := time.Since(start).Seconds()

		// 构造路径标识
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}

		services.IncrementRequestCount(path)
		services.RecordRequestDuration(path, duration)

		// 错误请求（状态码 >= 400）单独计数
		if c.Writer.Status() >= 400 {
			services.IncrementErrorCount(path)
		}
	}
}
