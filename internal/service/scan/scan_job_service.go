/**
 * 扫描任务服务实现
 * @author: sun977
 * @date: 2025.11.21
 * @description: 任务表的唯一持有者。每个任务一个执行goroutine，只改自己的记录；
 *               状态查询方任意多个，读到的永远是持锁发布的副本
 * @func:
 *  1. 任务状态机: pending -> running -> {completed | failed}，单调推进
 *  2. 进度里程碑: 启动25 -> 传输前50 -> 成功100（粗粒度反馈，不是精确进度）
 *  3. 执行失败记入任务记录，绝不同步抛给提交方，也不自动重试
 */
package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"scandock/internal/backend"
	"scandock/internal/config"
	"scandock/internal/escl"
	"scandock/internal/model"
	"scandock/internal/pkg/logger"
	"scandock/internal/registry"
)

// 进度里程碑
const (
	progressStarted  = 25  // 执行goroutine已启动
	progressTransfer = 50  // 即将进入阻塞的图像传输
	progressDone     = 100 // 扫描完成
)

// localFormats 本地扫描支持的输出格式
var localFormats = map[string]bool{"png": true, "jpg": true, "jpeg": true, "tif": true, "tiff": true}

// networkFormats eSCL网络扫描支持的输出格式
var networkFormats = map[string]bool{"png": true, "jpg": true, "jpeg": true, "pdf": true}

// scanJobService 扫描任务服务实现
type scanJobService struct {
	backend  backend.Backend
	escl     escl.Client
	registry *registry.Registry
	cfg      *config.ScannerConfig

	// mu 保护任务表；每条记录只由自己的执行goroutine修改，修改动作持锁发布
	mu   sync.RWMutex
	jobs map[string]*model.ScanJob
}

// NewScanJobService 创建扫描任务服务实例
func NewScanJobService(
	b backend.Backend,
	esclClient escl.Client,
	reg *registry.Registry,
	cfg *config.ScannerConfig,
) ScanJobService {
	return &scanJobService{
		backend:  b,
		escl:     esclClient,
		registry: reg,
		cfg:      cfg,
		jobs:     make(map[string]*model.ScanJob),
	}
}

// SubmitLocalScan 提交本地设备扫描任务
func (s *scanJobService) SubmitLocalScan(ctx context.Context, deviceID int, format string) (string, error) {
	format, err := s.normalizeFormat(format, localFormats)
	if err != nil {
		return "", err
	}

	// 对照当前注册表快照校验设备索引
	dev, err := s.registry.Get(deviceID)
	if err != nil {
		return "", err
	}

	job := s.createJob(model.ScanJob{
		Mode:        model.ScanModeLocal,
		DeviceIndex: deviceID,
		DeviceName:  dev.Name,
		Format:      format,
	})

	destPath := filepath.Join(s.cfg.OutputDir, localScanFilename(dev.Name, format, job.ID))

	logger.WithFields(map[string]interface{}{
		"job_id": job.ID,
		"device": dev.Name,
		"format": format,
	}).Info("Local scan job submitted")

	// 执行单元独立于请求生命周期，不继承提交请求的ctx
	go s.runJob(job.ID, destPath, func(runCtx context.Context) (string, error) {
		path, acquireErr := s.backend.Acquire(runCtx, dev.DeviceID, destPath)
		if acquireErr == nil {
			s.registry.MarkUsed(deviceID)
		}
		return path, acquireErr
	})

	return job.ID, nil
}

// SubmitNetworkScan 提交eSCL网络扫描任务
func (s *scanJobService) SubmitNetworkScan(ctx context.Context, endpoint string, format string) (string, error) {
	if strings.TrimSpace(endpoint) == "" {
		return "", fmt.Errorf("escl endpoint is required")
	}

	format, err := s.normalizeFormat(format, networkFormats)
	if err != nil {
		return "", err
	}

	job := s.createJob(model.ScanJob{
		Mode:        model.ScanModeNetwork,
		DeviceIndex: -1,
		Endpoint:    endpoint,
		Format:      format,
	})

	destPath := filepath.Join(s.cfg.OutputDir, networkScanFilename(format, job.ID))

	logger.WithFields(map[string]interface{}{
		"job_id":   job.ID,
		"endpoint": endpoint,
		"format":   format,
	}).Info("Network scan job submitted")

	go s.runJob(job.ID, destPath, func(runCtx context.Context) (string, error) {
		return s.escl.Scan(runCtx, endpoint, format, destPath)
	})

	return job.ID, nil
}

// GetJob 查询任务状态快照
func (s *scanJobService) GetJob(jobID string) (model.ScanJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return model.ScanJob{}, model.ErrJobNotFound
	}
	return *job, nil
}

// ListJobs 返回全部任务快照，按创建时间倒序
func (s *scanJobService) ListJobs() []model.ScanJob {
	s.mu.RLock()
	list := make([]model.ScanJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		list = append(list, *j)
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

// createJob 创建任务记录并登记到任务表
func (s *scanJobService) createJob(template model.ScanJob) model.ScanJob {
	now := time.Now()
	template.ID = uuid.NewString()
	template.State = model.JobPending
	template.Progress = 0
	template.CreatedAt = now
	template.UpdatedAt = now

	s.mu.Lock()
	s.jobs[template.ID] = &template
	s.mu.Unlock()

	return template
}

// runJob 任务执行单元
// 每个任务恰好一个执行goroutine；任务间除各自的记录外不共享可变状态
func (s *scanJobService) runJob(jobID string, destPath string, transfer func(ctx context.Context) (string, error)) {
	// Pending是瞬态：执行单元做任何工作之前先推进到Running
	s.update(jobID, func(j *model.ScanJob) {
		j.State = model.JobRunning
		j.Progress = progressStarted
	})

	// 即将进入阻塞的传输阶段
	s.update(jobID, func(j *model.ScanJob) {
		j.Progress = progressTransfer
	})

	resultPath, err := transfer(context.Background())
	if err != nil {
		logger.WithField("job_id", jobID).Errorf("Scan job failed: %v", err)
		s.update(jobID, func(j *model.ScanJob) {
			j.State = model.JobFailed
			j.ErrorDetail = err.Error()
		})
		return
	}

	logger.WithFields(map[string]interface{}{
		"job_id": jobID,
		"result": resultPath,
	}).Info("Scan job completed")

	s.update(jobID, func(j *model.ScanJob) {
		j.State = model.JobCompleted
		j.Progress = progressDone
		j.ResultPath = resultPath
	})
}

// update 持锁修改并发布任务记录
// 终态后不再接受任何修改，保证状态单调
func (s *scanJobService) update(jobID string, mutate func(j *model.ScanJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok || job.State.Terminal() {
		return
	}
	mutate(job)
	job.UpdatedAt = time.Now()
}

// normalizeFormat 规范化输出格式
func (s *scanJobService) normalizeFormat(format string, allowed map[string]bool) (string, error) {
	format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	if format == "" {
		format = s.cfg.DefaultFormat
	}
	if !allowed[format] {
		return "", fmt.Errorf("unsupported scan format: %s", format)
	}
	return format, nil
}

// localScanFilename 本地扫描输出文件名
// scan_<设备名>_<时间戳>_<任务ID>.<格式>
func localScanFilename(deviceName, format, jobID string) string {
	return fmt.Sprintf("scan_%s_%s_%s.%s",
		sanitizeName(deviceName), time.Now().Format("20060102_150405"), jobID, format)
}

// networkScanFilename 网络扫描输出文件名
func networkScanFilename(format, jobID string) string {
	return fmt.Sprintf("network_scan_%s_%s.%s",
		time.Now().Format("20060102_150405"), jobID, format)
}

// sanitizeName 清理设备名中不适合进文件名的字符并截断
func sanitizeName(name string) string {
	name = strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_").Replace(name)
	if len(name) > 20 {
		name = name[:20]
	}
	if name == "" {
		name = "scanner"
	}
	return name
}
