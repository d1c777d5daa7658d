/**
 * 配置文件监听器
 * @author: sun977
 * @date: 2025.11.20
 * @description: 基于fsnotify的配置热重载，配置文件变化时重新加载并通知回调
 */
package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigChangeCallback 配置变更回调函数
// 回调返回错误时仅记录，不回滚已生效的新配置
type ConfigChangeCallback func(oldConfig, newConfig *Config) error

// ConfigWatcher 配置文件监听器
//
// 工作原理：
// 1. 使用 fsnotify 监听配置文件变化
// 2. 文件发生变化时经过防抖延迟后重新加载配置
// 3. 通过回调函数通知配置变更
type ConfigWatcher struct {
	configPath  string
	config      *Config
	loader      *ConfigLoader
	watcher     *fsnotify.Watcher
	callbacks   []ConfigChangeCallback
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	reloadDelay time.Duration
	lastReload  time.Time
}

// NewConfigWatcher 创建配置监听器
func NewConfigWatcher(configPath string) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &ConfigWatcher{
		configPath:  configPath,
		loader:      NewConfigLoader(filepath.Dir(configPath), "SCANDOCK"),
		watcher:     watcher,
		callbacks:   make([]ConfigChangeCallback, 0),
		ctx:         ctx,
		cancel:      cancel,
		reloadDelay: 1 * time.Second, // 防抖延迟
	}, nil
}

// OnChange 注册配置变更回调
func (cw *ConfigWatcher) OnChange(cb ConfigChangeCallback) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, cb)
}

// Start 启动配置监听
func (cw *ConfigWatcher) Start() error {
	// 初始加载配置
	config, err := cw.loader.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load initial config: %w", err)
	}

	cw.mu.Lock()
	cw.config = config
	cw.mu.Unlock()

	// 添加配置文件到监听列表
	configFile := cw.loader.GetConfigPath()
	if configFile == "" {
		// 没有配置文件可监听（纯默认值运行），不算错误
		return nil
	}
	if err := cw.watcher.Add(configFile); err != nil {
		return fmt.Errorf("failed to watch config file %s: %w", configFile, err)
	}

	go cw.watchLoop()
	return nil
}

// Stop 停止配置监听
func (cw *ConfigWatcher) Stop() error {
	cw.cancel()
	return cw.watcher.Close()
}

// GetConfig 获取当前配置
func (cw *ConfigWatcher) GetConfig() *Config {
	cw.mu.RLock()
	defer cw.mu.RUnlock()
	return cw.config
}

// watchLoop 监听循环
func (cw *ConfigWatcher) watchLoop() {
	for {
		select {
		case <-cw.ctx.Done():
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				cw.handleChange()
			}
		case _, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			// 监听错误不中断服务，等待下一个事件
		}
	}
}

// handleChange 处理配置文件变化
func (cw *ConfigWatcher) handleChange() {
	cw.mu.Lock()
	if time.Since(cw.lastReload) < cw.reloadDelay {
		cw.mu.Unlock()
		return
	}
	cw.lastReload = time.Now()
	oldConfig := cw.config
	cw.mu.Unlock()

	newConfig, err := cw.loader.LoadConfig()
	if err != nil {
		// 重载失败保留旧配置
		return
	}

	cw.mu.Lock()
	cw.config = newConfig
	callbacks := make([]ConfigChangeCallback, len(cw.callbacks))
	copy(callbacks, cw.callbacks)
	cw.mu.Unlock()

	for _, cb := range callbacks {
		_ = cb(oldConfig, newConfig)
	}
}
