/**
 * 扫描后端抽象
 * @author: sun977
 * @date: 2025.11.17
 * @description: 本地扫描驱动的能力抽象，任务服务只通过该接口与具体驱动交互
 * @func:
 *  1. Backend: 设备枚举 + 图像采集的最小能力集
 *  2. RawDevice: 驱动层返回的原始设备条目，分类交给registry处理
 */
package backend

import "context"

// RawDevice 驱动层枚举出的原始设备条目
// 字段内容依赖具体驱动，识别和分类是registry的职责
type RawDevice struct {
	DeviceID string // 驱动设备标识（如 "airscan:e0:HP DeskJet" / "hpaio:/usb/..."）
	Vendor   string // 厂商字符串
	Model    string // 型号字符串
	Type     string // 驱动报告的设备类型描述
}

// Backend 本地扫描驱动的能力抽象
// 实现必须可以被多个goroutine并发调用
type Backend interface {
	// Name 返回后端标识，用于日志和诊断
	Name() string

	// Enumerate 枚举当前可见的扫描设备
	// 驱动层不可用时返回包装了 model.ErrBackendUnavailable 的错误
	Enumerate(ctx context.Context) ([]RawDevice, error)

	// Acquire 从指定设备采集一页图像并写入destPath，返回实际写入的路径
	// 成功时destPath处恰好有一个完整的图像文件；
	// 任何失败都不会在destPath处留下部分写入的文件
	Acquire(ctx context.Context, deviceID string, destPath string) (string, error)
}
