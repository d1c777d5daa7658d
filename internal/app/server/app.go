/**
 * ScanDock应用程序核心逻辑
 * @author: sun977
 * @date: 2025.11.25
 * @description: 应用核心逻辑，负责初始化各组件并管理生命周期
 * @architecture: 将应用装配从main函数中分离，组件按 backend -> registry -> service -> handler -> router 顺序装配
 */

package server

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"scandock/internal/app/server/router"
	"scandock/internal/backend"
	"scandock/internal/config"
	"scandock/internal/escl"
	"scandock/internal/handler"
	"scandock/internal/pkg/logger"
	"scandock/internal/registry"
	"scandock/internal/service/scan"
)

// App ScanDock应用程序结构体
type App struct {
	router     *router.Router
	httpServer *http.Server
	config     *config.Config
	logger     *logger.LoggerManager

	backend     backend.Backend
	registry    *registry.Registry
	scanService scan.ScanJobService

	configWatcher *config.ConfigWatcher
}

// NewApp 创建新的应用程序实例
func NewApp() (*App, error) {
	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 初始化日志管理器
	loggerManager, err := logger.InitLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	logger.Info("ScanDock application initializing...")

	// 选择扫描后端（本地驱动不可用时回退到纯网络模式，不中断启动）
	scanBackend := backend.Select(cfg.Scanner)

	// 设备注册表
	deviceRegistry := registry.New(scanBackend)

	// eSCL协议客户端
	esclClient := escl.NewClient(cfg.Escl)

	// 扫描任务服务
	scanService := scan.NewScanJobService(scanBackend, esclClient, deviceRegistry, cfg.Scanner)

	// 处理器
	scannerHandler := handler.NewScannerHandler(deviceRegistry)
	scanHandler := handler.NewScanHandler(scanService, cfg.Scanner)
	systemHandler := handler.NewSystemHandler(scanBackend, deviceRegistry)

	// 路由器
	r := router.NewRouter(&router.RouterConfig{
		Debug:      cfg.Server.Mode == "debug",
		APIVersion: cfg.Server.APIVersion,
		Prefix:     cfg.Server.Prefix,
		Middleware: cfg.Middleware,
	}, scannerHandler, scanHandler, systemHandler)

	// HTTP服务器
	httpServer := &http.Server{
		Addr:           fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return &App{
		router:      r,
		httpServer:  httpServer,
		config:      cfg,
		logger:      loggerManager,
		backend:     scanBackend,
		registry:    deviceRegistry,
		scanService: scanService,
	}, nil
}

// GetRouter 获取路由器实例
func (a *App) GetRouter() *router.Router {
	return a.router
}

// GetConfig 获取配置实例
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetHTTPServer 获取HTTP服务器实例
func (a *App) GetHTTPServer() *http.Server {
	return a.httpServer
}

// Start 启动应用程序
func (a *App) Start() error {
	logger.Info("Starting ScanDock server...")

	// 启动HTTP服务器
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start HTTP server: ", err)
		}
	}()

	logger.Infof("ScanDock started successfully on %s:%d", a.config.Server.Host, a.config.Server.Port)

	// 启动时后台探测一次扫描仪，接口侧先返回detecting状态
	if a.config.Scanner.RefreshOnBoot {
		a.registry.RefreshAsync(context.Background())
	}

	// 启动配置热重载（仅日志级别生效，其余改动需重启）
	a.startConfigWatcher()

	return nil
}

// Stop 停止应用程序
func (a *App) Stop(ctx context.Context) error {
	logger.Info("Stopping ScanDock server...")

	if a.configWatcher != nil {
		if err := a.configWatcher.Stop(); err != nil {
			logger.Warnf("Failed to stop config watcher: %v", err)
		}
	}

	// 停止HTTP服务器
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	logger.Info("ScanDock server stopped")
	return nil
}

// startConfigWatcher 启动配置文件监听
// 监听失败不影响主流程，只丢告警日志
func (a *App) startConfigWatcher() {
	configPath := os.Getenv("SCANDOCK_CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs"
	}

	watcher, err := config.NewConfigWatcher(configPath)
	if err != nil {
		logger.Warnf("Config watcher unavailable: %v", err)
		return
	}

	watcher.OnChange(func(oldConfig, newConfig *config.Config) error {
		if oldConfig != nil && oldConfig.Log.Level != newConfig.Log.Level {
			if err := a.logger.SetLevel(newConfig.Log.Level); err != nil {
				return fmt.Errorf("failed to apply log level %s: %w", newConfig.Log.Level, err)
			}
			logger.Infof("Log level changed: %s -> %s", oldConfig.Log.Level, newConfig.Log.Level)
		}
		return nil
	})

	if err := watcher.Start(); err != nil {
		logger.Warnf("Failed to start config watcher: %v", err)
		return
	}
	a.configWatcher = watcher
}
