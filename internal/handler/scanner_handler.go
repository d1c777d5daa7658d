/**
 * 扫描仪管理处理器
 * @author: sun977
 * @date: 2025.11.24
 * @description: 扫描仪列表查询与刷新的HTTP接口
 * @func:
 *  1. ListScanners: 返回当前注册表快照（不触发枚举）
 *  2. RefreshScanners: 触发异步刷新，立即返回，不等待枚举完成
 */
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"scandock/internal/model/base"
	"scandock/internal/pkg/logger"
	"scandock/internal/registry"
)

// ScannerHandler 扫描仪处理器
type ScannerHandler struct {
	registry *registry.Registry
}

// NewScannerHandler 创建 ScannerHandler
func NewScannerHandler(reg *registry.Registry) *ScannerHandler {
	return &ScannerHandler{
		registry: reg,
	}
}

// ListScanners 获取扫描仪列表
// 只读当前快照，设备枚举可能还在后台进行（detection_status=detecting）
func (h *ScannerHandler) ListScanners(c *gin.Context) {
	list := h.registry.Snapshot()

	c.JSON(http.StatusOK, base.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Scanner list retrieved successfully",
		Data:    list,
	})
}

// RefreshScanners 触发扫描仪重新检测
// 刷新在后台执行，接口立即返回；刷新期间旧列表继续可读
func (h *ScannerHandler) RefreshScanners(c *gin.Context) {
	// 刷新寿命独立于本次请求，不能继承请求ctx
	h.registry.RefreshAsync(context.Background())

	logger.WithFields(map[string]interface{}{
		"path":      c.Request.URL.String(),
		"operation": "refresh_scanners",
		"option":    "Registry.RefreshAsync",
		"func_name": "handler.scanner.RefreshScanners",
	}).Info("Scanner refresh triggered")

	c.JSON(http.StatusOK, base.APIResponse{
		Code:    http.StatusOK,
		Status:  "success",
		Message: "Scanner detection started",
	})
}
