/**
 * 请求日志中间件
 * @author: sun977
 * @date: 2025.11.25
 * @description: 记录HTTP请求的访问日志：方法、路径、状态码、耗时、客户端IP
 */
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"scandock/internal/config"
	"scandock/internal/pkg/logger"
)

// LoggingMiddleware 请求日志中间件
type LoggingMiddleware struct {
	config *config.LoggingConfig
}

// NewLoggingMiddleware 创建请求日志中间件
func NewLoggingMiddleware(cfg *config.LoggingConfig) *LoggingMiddleware {
	if cfg == nil {
		cfg = &config.LoggingConfig{
			Enabled: true,
			SkipPaths: []string{
				"/health",
				"/ping",
			},
		}
	}

	return &LoggingMiddleware{
		config: cfg,
	}
}

// Handler 请求日志处理器
func (m *LoggingMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.config.Enabled || m.shouldSkip(c.Request.URL.Path) {
			c.Next()
			return
		}

		startTime := time.Now()

		c.Next()

		latency := time.Since(startTime)
		entry := logger.WithFields(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
		})

		if len(c.Errors) > 0 {
			entry.Warnf("HTTP request completed with errors: %s", c.Errors.String())
			return
		}
		entry.Info("HTTP request completed")
	}
}

// shouldSkip 判断路径是否跳过访问日志
func (m *LoggingMiddleware) shouldSkip(path string) bool {
	for _, p := range m.config.SkipPaths {
		if p == path {
			return true
		}
	}
	return false
}
