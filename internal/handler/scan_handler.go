/**
 * 扫描任务处理器
 * @author: sun977
 * @date: 2025.11.24
 * @description: 扫描任务提交、状态查询与结果文件访问的HTTP接口
 * @func:
 *  1. SubmitScan / SubmitNetworkScan: 提交后立即返回job_id，不等待扫描完成
 *  2. GetScanStatus: 按任务ID查询状态快照
 *  3. ListScanFiles / DownloadScanFile: 输出目录中已完成扫描件的列举与下载
 */
package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"scandock/internal/config"
	"scandock/internal/model"
	"scandock/internal/model/base"
	"scandock/internal/pkg/logger"
	"scandock/internal/service/scan"
)

// ScanRequest 本地扫描请求
type ScanRequest struct {
	ScannerID *int   `json:"scanner_id" binding:"required"`
	Format    string `json:"format"`
}

// NetworkScanRequest eSCL网络扫描请求
type NetworkScanRequest struct {
	EsclURL string `json:"escl_url" binding:"required"`
	Format  string `json:"format"`
}

// ScanFileInfo 已保存扫描件信息
type ScanFileInfo struct {
	Filename   string `json:"filename"`
	SizeBytes  int64  `json:"size_bytes"`
	ModifiedAt string `json:"modified_at"`
}

// ScanHandler 扫描任务处理器
type ScanHandler struct {
	service scan.ScanJobService
	cfg     *config.ScannerConfig
}

// NewScanHandler 创建 ScanHandler
func NewScanHandler(service scan.ScanJobService, cfg *config.ScannerConfig) *ScanHandler {
	return &ScanHandler{
		service: service,
		cfg:     cfg,
	}
}

// SubmitScan 提交本地设备扫描任务
func (h *ScanHandler) SubmitScan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, base.APIResponse{
			Code:    http.StatusBadRequest,
			Status:  "error",
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	jobID, err := h.service.SubmitLocalScan(c.Request.Context(), *req.ScannerID, req.Format)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrInvalidDevice) {
			status = http.StatusNotFound
		}
		c.JSON(status, base.APIResponse{
			Code:    status,
			Status:  "error",
			Message: "Failed to submit scan job",
			Error:   err.Error(),
		})
		return
	}

	logger.WithFields(map[string]interface{}{
		"path":      c.Request.URL.String(),
		"operation": "submit_scan",
		"option":    "ScanJobService.SubmitLocalScan",
		"func_name": "handler.scan.SubmitScan",
	}).Info("Scan job accepted")

	c.JSON(http.StatusOK, base.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Scan job submitted successfully",
		Data:    gin.H{"job_id": jobID},
	})
}

// SubmitNetworkScan 提交eSCL网络扫描任务
func (h *ScanHandler) SubmitNetworkScan(c *gin.Context) {
	var req NetworkScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, base.APIResponse{
			Code:    http.StatusBadRequest,
			Status:  "error",
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return
	}

	jobID, err := h.service.SubmitNetworkScan(c.Request.Context(), req.EsclURL, req.Format)
	if err != nil {
		c.JSON(http.StatusBadRequest, base.APIResponse{
			Code:    http.StatusBadRequest,
			Status:  "error",
			Message: "Failed to submit network scan job",
			Error:   err.Error(),
		})
		return
	}

	logger.WithFields(map[string]interface{}{
		"path":      c.Request.URL.String(),
		"operation": "submit_network_scan",
		"option":    "ScanJobService.SubmitNetworkScan",
		"func_name": "handler.scan.SubmitNetworkScan",
	}).Info("Network scan job accepted")

	c.JSON(http.StatusOK, base.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Network scan job submitted successfully",
		Data:    gin.H{"job_id": jobID},
	})
}

// GetScanStatus 查询扫描任务状态
func (h *ScanHandler) GetScanStatus(c *gin.Context) {
	jobID := c.Param("id")

	job, err := h.service.GetJob(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, base.APIResponse{
			Code:    http.StatusNotFound,
			Status:  "error",
			Message: "Scan job not found",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, base.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Scan job status retrieved successfully",
		Data:    job,
	})
}

// ListScanJobs 获取全部扫描任务（按创建时间倒序）
func (h *ScanHandler) ListScanJobs(c *gin.Context) {
	jobs := h.service.ListJobs()

	c.JSON(http.StatusOK, base.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Scan jobs retrieved successfully",
		Data: gin.H{
			"jobs":  jobs,
			"total": len(jobs),
		},
	})
}

// ListScanFiles 列举输出目录中的扫描件
func (h *ScanHandler) ListScanFiles(c *gin.Context) {
	entries, err := os.ReadDir(h.cfg.OutputDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, base.APIResponse{
			Code:    http.StatusInternalServerError,
			Status:  "error",
			Message: "Failed to read scan output directory",
			Error:   err.Error(),
		})
		return
	}

	files := make([]ScanFileInfo, 0, len(entries))
	for _, e := range entries {
		// 跳过子目录和未完成的临时文件
		if e.IsDir() || strings.HasSuffix(e.Name(), ".part") {
			continue
		}
		info, infoErr := e.Info()
		if infoErr != nil {
			continue
		}
		files = append(files, ScanFileInfo{
			Filename:   e.Name(),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime().Format("2006-01-02 15:04:05"),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].ModifiedAt > files[j].ModifiedAt
	})

	c.JSON(http.StatusOK, base.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Scan files retrieved successfully",
		Data: gin.H{
			"files": files,
			"total": len(files),
		},
	})
}

// DownloadScanFile 下载指定扫描件
func (h *ScanHandler) DownloadScanFile(c *gin.Context) {
	filename := c.Param("filename")

	// 只允许输出目录内的基础文件名，拒绝路径穿越
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		c.JSON(http.StatusBadRequest, base.APIResponse{
			Code:    http.StatusBadRequest,
			Status:  "error",
			Message: "Invalid file name",
		})
		return
	}

	fullPath := filepath.Join(h.cfg.OutputDir, filename)
	if _, err := os.Stat(fullPath); err != nil {
		c.JSON(http.StatusNotFound, base.APIResponse{
			Code:    http.StatusNotFound,
			Status:  "error",
			Message: "Scan file not found",
			Error:   err.Error(),
		})
		return
	}

	logger.WithFields(map[string]interface{}{
		"path":      c.Request.URL.String(),
		"operation": "download_scan_file",
		"option":    "file:" + filename,
		"func_name": "handler.scan.DownloadScanFile",
	}).Info("Scan file download")

	c.FileAttachment(fullPath, filename)
}
