/**
 * 路由注册
 * @author: sun977
 * @date: 2025.11.25
 * @description: 统一管理所有HTTP路由与全局中间件
 * @func:
 *  1. 健康检查路由: /health /ping /version
 *  2. API路由组: <prefix>/<version>/ 下的扫描仪、扫描任务、系统信息接口
 */
package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"scandock/internal/app/server/middleware"
	"scandock/internal/config"
	"scandock/internal/handler"
	"scandock/internal/pkg/version"
)

// RouterConfig 路由配置
type RouterConfig struct {
	// 是否启用调试模式
	Debug bool `json:"debug"`

	// API版本
	APIVersion string `json:"api_version"`

	// 路由前缀
	Prefix string `json:"prefix"`

	// 中间件配置
	Middleware *config.MiddlewareConfig `json:"middleware"`
}

// Router 路由器
type Router struct {
	engine *gin.Engine
	config *RouterConfig

	// 中间件
	corsMiddleware    *middleware.CORSMiddleware
	loggingMiddleware *middleware.LoggingMiddleware

	// 处理器
	scannerHandler *handler.ScannerHandler
	scanHandler    *handler.ScanHandler
	systemHandler  *handler.SystemHandler
}

// NewRouter 创建新的路由器
func NewRouter(
	cfg *RouterConfig,
	scannerHandler *handler.ScannerHandler,
	scanHandler *handler.ScanHandler,
	systemHandler *handler.SystemHandler,
) *Router {
	if cfg == nil {
		cfg = &RouterConfig{
			Debug:      false,
			APIVersion: "v1",
			Prefix:     "/api",
		}
	}

	// 设置Gin模式
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	router := &Router{
		engine:         engine,
		config:         cfg,
		scannerHandler: scannerHandler,
		scanHandler:    scanHandler,
		systemHandler:  systemHandler,
	}

	// 初始化中间件
	router.initMiddleware()

	// 注册路由
	router.registerRoutes()

	return router
}

// Engine 获取底层Gin引擎
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// initMiddleware 初始化中间件
func (r *Router) initMiddleware() {
	var corsCfg *config.CORSConfig
	var logCfg *config.LoggingConfig
	if r.config.Middleware != nil {
		corsCfg = r.config.Middleware.CORS
		logCfg = r.config.Middleware.Logging
	}

	r.corsMiddleware = middleware.NewCORSMiddleware(corsCfg)
	r.loggingMiddleware = middleware.NewLoggingMiddleware(logCfg)
}

// registerRoutes 注册路由
func (r *Router) registerRoutes() {
	// 注册全局中间件
	r.registerGlobalMiddleware()

	// 注册健康检查路由
	r.registerHealthRoutes()

	// 注册API路由组
	apiGroup := r.engine.Group(r.config.Prefix + "/" + r.config.APIVersion)

	// 扫描仪管理路由
	r.registerScannerRoutes(apiGroup)

	// 扫描任务路由
	r.registerScanRoutes(apiGroup)

	// 系统信息路由
	r.registerSystemRoutes(apiGroup)
}

// registerGlobalMiddleware 注册全局中间件
func (r *Router) registerGlobalMiddleware() {
	// 恢复中间件
	r.engine.Use(gin.Recovery())

	// CORS中间件
	r.engine.Use(r.corsMiddleware.Handler())

	// 日志中间件
	r.engine.Use(r.loggingMiddleware.Handler())
}

// registerHealthRoutes 注册健康检查路由
func (r *Router) registerHealthRoutes() {
	r.engine.GET("/health", r.handleHealth)
	r.engine.GET("/ping", r.handlePing)
	r.engine.GET("/version", r.handleVersion)
}

// registerScannerRoutes 注册扫描仪管理路由
func (r *Router) registerScannerRoutes(group *gin.RouterGroup) {
	scannerGroup := group.Group("/scanners")

	scannerGroup.GET("", r.scannerHandler.ListScanners)
	scannerGroup.POST("/refresh", r.scannerHandler.RefreshScanners)
}

// registerScanRoutes 注册扫描任务路由
func (r *Router) registerScanRoutes(group *gin.RouterGroup) {
	// 任务提交与状态查询
	scanGroup := group.Group("/scan")
	scanGroup.POST("", r.scanHandler.SubmitScan)
	scanGroup.POST("/network", r.scanHandler.SubmitNetworkScan)
	scanGroup.GET("/status/:id", r.scanHandler.GetScanStatus)
	scanGroup.GET("/jobs", r.scanHandler.ListScanJobs)

	// 扫描件访问
	scansGroup := group.Group("/scans")
	scansGroup.GET("", r.scanHandler.ListScanFiles)
	scansGroup.GET("/:filename/download", r.scanHandler.DownloadScanFile)
}

// registerSystemRoutes 注册系统信息路由
func (r *Router) registerSystemRoutes(group *gin.RouterGroup) {
	systemGroup := group.Group("/system")

	systemGroup.GET("/info", r.systemHandler.GetSystemInfo)
}

// 健康检查处理器
func (r *Router) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"service":   "scandock",
	})
}

// Ping处理器
func (r *Router) handlePing(c *gin.Context) {
	c.JSON(200, gin.H{
		"message":   "pong",
		"timestamp": time.Now().Unix(),
	})
}

// 版本处理器
func (r *Router) handleVersion(c *gin.Context) {
	c.JSON(200, gin.H{
		"version":     version.Version,
		"api_version": version.APIVersion,
		"build_time":  version.BuildTime,
		"git_commit":  version.GitCommit,
	})
}
