/**
 * 纯网络模式后端
 * @author: sun977
 * @date: 2025.11.17
 * @description: 本地驱动不可用或被禁用时的降级后端，枚举为空，采集被拒绝
 */
package backend

import (
	"context"
	"fmt"

	"scandock/internal/model"
)

// networkOnlyBackend 无本地驱动能力的占位后端
// 部署在无硬件环境（容器、无头服务器）时使用，调用方只能走eSCL网络扫描
type networkOnlyBackend struct {
	// initErr 非nil表示是驱动初始化失败后的降级产物
	// 此时枚举要上报探测失败，而不是伪装成"没有设备"
	initErr error
}

// NewNetworkOnlyBackend 创建纯网络模式后端（配置主动选择）
func NewNetworkOnlyBackend() Backend {
	return &networkOnlyBackend{}
}

// NewDegradedBackend 创建驱动初始化失败后的降级后端
// 与主动选择的纯网络模式不同，枚举会带出初始化失败的原因
func NewDegradedBackend(cause error) Backend {
	return &networkOnlyBackend{initErr: cause}
}

// Name 返回后端标识
func (b *networkOnlyBackend) Name() string {
	return "network-only"
}

// Enumerate 纯网络模式下本地枚举恒为空
// 主动选择时空集合不是错误；降级产物要让注册表把探测状态记为error
func (b *networkOnlyBackend) Enumerate(ctx context.Context) ([]RawDevice, error) {
	if b.initErr != nil {
		return nil, b.initErr
	}
	return []RawDevice{}, nil
}

// Acquire 纯网络模式下拒绝本地采集
func (b *networkOnlyBackend) Acquire(ctx context.Context, deviceID string, destPath string) (string, error) {
	return "", fmt.Errorf("%w: local acquire refused in network-only mode", model.ErrBackendUnavailable)
}
