/**
 * 扫描任务服务接口
 * @author: sun977
 * @date: 2025.11.21
 * @description: 异步扫描任务编排：提交立即返回任务ID，结果通过轮询任务状态获取
 * @func:
 *  1. SubmitLocalScan: 本地设备扫描（经过后端选择器选出的驱动）
 *  2. SubmitNetworkScan: eSCL网络扫描（端点由调用方提供，不做预校验）
 *  3. GetJob / ListJobs: 任务状态查询，返回的都是快照副本
 */
package scan

import (
	"context"

	"scandock/internal/model"
)

// ScanJobService 扫描任务服务接口
type ScanJobService interface {
	// SubmitLocalScan 提交本地设备扫描任务
	// deviceID 对照当前设备注册表快照校验，越界返回 ErrInvalidDevice；
	// 校验通过后立即返回任务ID，扫描在独立的执行goroutine中进行
	SubmitLocalScan(ctx context.Context, deviceID int, format string) (string, error)

	// SubmitNetworkScan 提交eSCL网络扫描任务
	// 端点不做预校验，协议序列的成败通过任务状态暴露
	SubmitNetworkScan(ctx context.Context, endpoint string, format string) (string, error)

	// GetJob 查询任务状态快照
	// 未知任务ID返回 ErrJobNotFound
	GetJob(jobID string) (model.ScanJob, error)

	// ListJobs 返回全部任务的快照，按创建时间倒序
	ListJobs() []model.ScanJob
}
