/**
 * 扫描仪设备注册表
 * @author: sun977
 * @date: 2025.11.19
 * @description: 持有当前设备集合，刷新整体替换（原子交换），读取永不等待进行中的刷新
 * @func:
 *  1. Refresh: 枚举 -> 分类 -> 构建完整替换集合 -> 持锁瞬间交换
 *  2. 刷新失败保留上一次集合，探测状态记为error，绝不向上抛崩进程
 *  3. Snapshot: 返回设备集合副本，调用方持有的是值，不指向注册表内部
 */
package registry

import (
	"context"
	"sync"
	"time"

	"scandock/internal/backend"
	"scandock/internal/model"
	"scandock/internal/pkg/logger"
)

// Registry 扫描仪设备注册表
type Registry struct {
	backend backend.Backend

	// mu 保护下面三个字段；写侧只在交换瞬间持写锁
	mu            sync.RWMutex
	devices       []model.Device
	status        model.DetectionStatus
	lastDetection *time.Time

	// refreshMu 保证同一时刻只有一个刷新在执行
	refreshMu sync.Mutex
}

// New 创建设备注册表
func New(b backend.Backend) *Registry {
	return &Registry{
		backend: b,
		devices: []model.Device{},
		status:  model.DetectionDetecting,
	}
}

// Snapshot 返回当前设备集合的快照
// 刷新进行中的读取会看到完整的旧集合或完整的新集合，不会看到混合状态
func (r *Registry) Snapshot() model.DeviceList {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]model.Device, len(r.devices))
	copy(devices, r.devices)

	return model.DeviceList{
		Devices:         devices,
		DetectionStatus: r.status,
		LastDetection:   r.lastDetection,
		TotalCount:      len(devices),
	}
}

// Get 按索引取设备
// 索引越界（含过期索引）返回 ErrInvalidDevice
func (r *Registry) Get(id int) (model.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id < 0 || id >= len(r.devices) {
		return model.Device{}, model.ErrInvalidDevice
	}
	return r.devices[id], nil
}

// MarkUsed 记录设备最近一次扫描完成时间
// 索引已过期时静默忽略，时间戳只是展示信息
func (r *Registry) MarkUsed(id int) {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if id >= 0 && id < len(r.devices) {
		r.devices[id].LastUsedAt = &now
	}
}

// Refresh 同步刷新设备集合
// 枚举可能耗时数秒（尤其是网络发现），期间不阻塞任何读取
func (r *Registry) Refresh(ctx context.Context) {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	r.mu.Lock()
	r.status = model.DetectionDetecting
	r.mu.Unlock()

	logger.Info("Scanner detection started")

	raws, err := r.backend.Enumerate(ctx)
	if err != nil {
		// 枚举失败：保留上一次集合，只更新探测状态
		logger.Errorf("Scanner detection failed: %v", err)
		now := time.Now()
		r.mu.Lock()
		r.status = model.DetectionError
		r.lastDetection = &now
		r.mu.Unlock()
		return
	}

	// 在锁外构建完整替换集合
	devices := make([]model.Device, 0, len(raws))
	for i, raw := range raws {
		kind, conn := Classify(raw)
		devices = append(devices, model.Device{
			ID:           i,
			Name:         DisplayName(raw),
			DeviceID:     raw.DeviceID,
			Manufacturer: raw.Vendor,
			Model:        raw.Model,
			Kind:         kind,
			Connection:   conn,
		})
	}

	now := time.Now()

	// 原子交换：写锁只覆盖赋值瞬间
	r.mu.Lock()
	r.devices = devices
	r.status = model.DetectionCompleted
	r.lastDetection = &now
	r.mu.Unlock()

	logger.Infof("Scanner detection completed: %d device(s) found", len(devices))
	for _, d := range devices {
		logger.WithFields(map[string]interface{}{
			"id":         d.ID,
			"device_id":  d.DeviceID,
			"kind":       string(d.Kind),
			"connection": d.Connection,
		}).Debugf("Detected scanner: %s", d.Name)
	}
}

// RefreshAsync 后台刷新，立即返回
func (r *Registry) RefreshAsync(ctx context.Context) {
	go r.Refresh(ctx)
}
