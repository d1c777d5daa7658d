/**
 * 扫描后端选择器
 * @author: sun977
 * @date: 2025.11.17
 * @description: 进程启动时一次性决定本地扫描后端，驱动初始化失败静默降级为纯网络模式
 * @func:
 *  1. 配置强制纯网络模式时直接返回networkOnly后端
 *  2. 否则探测SANE驱动，探测失败记录警告后降级，绝不让进程启动失败
 */
package backend

import (
	"scandock/internal/config"
	"scandock/internal/pkg/logger"
)

// Select 根据运行环境选择本地扫描后端
// 进程生命周期内只调用一次，结果被缓存，不做运行中重选
func Select(cfg *config.ScannerConfig) Backend {
	if cfg.NetworkOnly {
		logger.Info("Scanner backend: network-only mode forced by config")
		return NewNetworkOnlyBackend()
	}

	b, err := NewSaneBackend(cfg)
	if err != nil {
		// 驱动初始化失败是降级信号，不是启动失败
		logger.Warnf("Local scanner backend unavailable, falling back to network-only mode: %v", err)
		return NewDegradedBackend(err)
	}

	logger.Infof("Scanner backend selected: %s", b.Name())
	return b
}
