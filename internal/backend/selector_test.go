package backend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scandock/internal/config"
	"scandock/internal/model"
)

// TestSelect_NetworkOnlyForced 配置强制纯网络模式时不探测本地驱动
func TestSelect_NetworkOnlyForced(t *testing.T) {
	b := Select(&config.ScannerConfig{NetworkOnly: true})
	assert.Equal(t, "network-only", b.Name())
}

// TestSelect_FallbackWhenDriverMissing 驱动不可用时降级而不是失败
func TestSelect_FallbackWhenDriverMissing(t *testing.T) {
	b := Select(&config.ScannerConfig{
		SanePath:     "scanimage-binary-that-does-not-exist",
		ProbeTimeout: time.Second,
	})

	// Select永不返回nil，最差也是纯网络模式
	require.NotNil(t, b)
	assert.Equal(t, "network-only", b.Name())

	// 降级产物的枚举带出初始化失败原因，让探测状态能记为error
	_, err := b.Enumerate(context.Background())
	assert.ErrorIs(t, err, model.ErrBackendUnavailable)
}

// TestNetworkOnlyBackend 纯网络后端：枚举为空，本地采集被拒绝
func TestNetworkOnlyBackend(t *testing.T) {
	b := NewNetworkOnlyBackend()

	devices, err := b.Enumerate(context.Background())
	require.NoError(t, err)
	assert.Len(t, devices, 0)

	_, err = b.Acquire(context.Background(), "any", "/tmp/out.png")
	assert.ErrorIs(t, err, model.ErrBackendUnavailable)
}
