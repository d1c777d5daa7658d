/**
 * CORS中间件
 * @author: sun977
 * @date: 2025.11.25
 * @description: 跨域请求处理中间件，局域网内的前端页面直接调用扫描接口时需要
 */
package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"scandock/internal/config"
)

// CORSMiddleware CORS中间件
type CORSMiddleware struct {
	config *config.CORSConfig
}

// NewCORSMiddleware 创建CORS中间件
func NewCORSMiddleware(cfg *config.CORSConfig) *CORSMiddleware {
	if cfg == nil {
		cfg = &config.CORSConfig{
			Enabled:      true,
			AllowOrigins: []string{"*"},
			AllowMethods: []string{
				http.MethodGet,
				http.MethodPost,
				http.MethodOptions,
			},
			AllowHeaders: []string{
				"Origin",
				"Content-Length",
				"Content-Type",
				"X-Requested-With",
			},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}
	}

	return &CORSMiddleware{
		config: cfg,
	}
}

// Handler CORS处理器
func (m *CORSMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.config.Enabled {
			c.Next()
			return
		}

		origin := c.Request.Header.Get("Origin")

		c.Header("Access-Control-Allow-Origin", m.resolveOrigin(origin))
		c.Header("Access-Control-Allow-Methods", strings.Join(m.config.AllowMethods, ", "))
		c.Header("Access-Control-Allow-Headers", strings.Join(m.config.AllowHeaders, ", "))
		if m.config.AllowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		if m.config.MaxAge > 0 {
			c.Header("Access-Control-Max-Age", fmt.Sprintf("%d", int(m.config.MaxAge.Seconds())))
		}

		// 预检请求直接返回
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// resolveOrigin 匹配允许的源
func (m *CORSMiddleware) resolveOrigin(origin string) string {
	for _, allowed := range m.config.AllowOrigins {
		if allowed == "*" {
			return "*"
		}
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	if len(m.config.AllowOrigins) > 0 {
		return m.config.AllowOrigins[0]
	}
	return "*"
}
