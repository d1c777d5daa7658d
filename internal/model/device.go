/**
 * 扫描仪设备模型
 * @author: sun977
 * @date: 2025.11.14
 * @description: 扫描仪设备及探测状态的数据模型
 * @func:
 *  1. Device: 一次枚举周期内的单台扫描仪设备（值类型，刷新后整体替换）
 *  2. DeviceKind: 设备连接类型分类
 *  3. DetectionStatus: 设备探测状态机
 */
package model

import "time"

// DeviceKind 设备连接类型
type DeviceKind string

const (
	DeviceKindUSB     DeviceKind = "usb_direct" // USB或直连设备
	DeviceKindNetwork DeviceKind = "network"    // 网络设备 (eSCL/AirScan等)
	DeviceKindUnknown DeviceKind = "unknown"    // 无法识别的连接类型
)

// DetectionStatus 设备探测状态
type DetectionStatus string

const (
	DetectionDetecting DetectionStatus = "detecting" // 探测进行中
	DetectionCompleted DetectionStatus = "completed" // 探测完成
	DetectionError     DetectionStatus = "error"     // 探测失败（保留上一次设备集合）
)

// Device 一台可用的扫描仪设备
// 每次刷新都会重建整个设备集合，ID 仅在单个枚举周期内稳定
type Device struct {
	ID           int        `json:"id"`                     // 枚举周期内的设备索引
	Name         string     `json:"name"`                   // 展示名称（已去除技术后缀）
	DeviceID     string     `json:"device_id"`              // 后端返回的设备标识字符串
	Manufacturer string     `json:"manufacturer,omitempty"` // 厂商
	Model        string     `json:"model,omitempty"`        // 型号
	Kind         DeviceKind `json:"kind"`                   // 连接类型分类（尽力而为的启发式结果）
	Connection   string     `json:"connection"`             // 连接描述信息，仅用于诊断展示
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"` // 最近一次扫描完成时间
}

// DeviceList 设备列表响应数据
type DeviceList struct {
	Devices         []Device        `json:"devices"`
	DetectionStatus DetectionStatus `json:"detection_status"`
	LastDetection   *time.Time      `json:"last_detection,omitempty"`
	TotalCount      int             `json:"total_count"`
}
