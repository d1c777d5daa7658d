/**
 * 系统信息处理器
 * @author: sun977
 * @date: 2025.11.24
 * @description: 运行环境诊断信息接口，用于排查扫描后端不可用问题
 */
package handler

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"scandock/internal/backend"
	"scandock/internal/model/base"
	"scandock/internal/registry"
)

// SystemHandler 系统信息处理器
type SystemHandler struct {
	backend  backend.Backend
	registry *registry.Registry
}

// NewSystemHandler 创建 SystemHandler
func NewSystemHandler(b backend.Backend, reg *registry.Registry) *SystemHandler {
	return &SystemHandler{
		backend:  b,
		registry: reg,
	}
}

// GetSystemInfo 获取主机与扫描后端诊断信息
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := gin.H{
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"go_version":   runtime.Version(),
		"backend_mode": h.backend.Name(),
	}

	// 主机信息拿不到不影响接口，能取到多少给多少
	if hostInfo, err := host.Info(); err == nil {
		info["hostname"] = hostInfo.Hostname
		info["platform"] = hostInfo.Platform
		info["platform_version"] = hostInfo.PlatformVersion
		info["kernel_version"] = hostInfo.KernelVersion
		info["uptime_seconds"] = hostInfo.Uptime
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info["memory_total"] = vm.Total
		info["memory_used_percent"] = vm.UsedPercent
	}

	list := h.registry.Snapshot()
	info["scanner_count"] = list.TotalCount
	info["detection_status"] = string(list.DetectionStatus)

	c.JSON(http.StatusOK, base.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "System info retrieved successfully",
		Data:    info,
	})
}
