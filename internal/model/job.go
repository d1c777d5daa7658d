/**
 * 扫描任务模型
 * @author: sun977
 * @date: 2025.11.14
 * @description: 异步扫描任务及其生命周期状态的数据模型
 * @func:
 *  1. JobState: 任务状态机 Pending -> Running -> {Completed | Failed}
 *  2. ScanJob: 单个扫描任务记录（由任务服务独占持有，对外只发快照副本）
 */
package model

import "time"

// JobState 扫描任务状态
// 状态单调推进，到达终态后不再变化
type JobState string

const (
	JobPending   JobState = "pending"   // 已创建，执行单元尚未启动
	JobRunning   JobState = "running"   // 扫描进行中
	JobCompleted JobState = "completed" // 扫描成功，ResultPath 有效
	JobFailed    JobState = "failed"    // 扫描失败，ErrorDetail 有效
)

// Terminal 判断是否处于终态
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// ScanMode 扫描来源类型
type ScanMode string

const (
	ScanModeLocal   ScanMode = "local"   // 本地驱动设备扫描
	ScanModeNetwork ScanMode = "network" // eSCL网络扫描
)

// ScanJob 单个扫描任务记录
// 任务表中的记录只由该任务自己的执行goroutine修改，查询方拿到的是值副本
type ScanJob struct {
	ID          string    `json:"job_id"`                 // 全局唯一任务ID，创建时生成，不可变
	Mode        ScanMode  `json:"mode"`                   // 本地扫描或网络扫描
	State       JobState  `json:"state"`                  // 当前状态
	Progress    int       `json:"progress"`               // 0-100，Running期间单调不减
	DeviceName  string    `json:"device_name,omitempty"`  // 本地扫描的设备名称
	DeviceIndex int       `json:"device_index"`           // 本地扫描的设备索引（网络扫描为-1）
	Endpoint    string    `json:"endpoint,omitempty"`     // 网络扫描的eSCL端点
	Format      string    `json:"format"`                 // 输出图片格式
	ResultPath  string    `json:"result_path,omitempty"`  // 仅Completed时有效
	ErrorDetail string    `json:"error_detail,omitempty"` // 仅Failed时有效
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
