/**
 * 扫描错误分类
 * @author: sun977
 * @date: 2025.11.14
 * @description: 扫描子系统的统一错误分类，供后端、eSCL客户端和任务服务使用
 */
package model

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable 本地驱动层不可用（非致命，降级为纯网络模式）
	ErrBackendUnavailable = errors.New("scanner backend unavailable")

	// ErrDeviceNotFound 后端找不到指定设备
	ErrDeviceNotFound = errors.New("scanner device not found")

	// ErrInvalidDevice 调用方引用了越界或过期的设备索引
	ErrInvalidDevice = errors.New("invalid scanner index")

	// ErrDeviceBusy 设备被占用
	ErrDeviceBusy = errors.New("scanner device busy")

	// ErrTransferFailed 本地采集过程中图像传输失败
	ErrTransferFailed = errors.New("image transfer failed")

	// ErrProtocolViolation eSCL响应不符合协议（成功状态码但缺少预期头部）
	ErrProtocolViolation = errors.New("escl protocol violation")

	// ErrJobNotFound 查询了不存在的任务ID
	ErrJobNotFound = errors.New("scan job not found")
)

// NetworkScanError eSCL序列中任何HTTP层面的失败
// 包装底层原因，保持错误链可用 errors.Is/As 检查
type NetworkScanError struct {
	Step  string // 失败的协议步骤 (submit/retrieve)
	Cause error
}

func (e *NetworkScanError) Error() string {
	return fmt.Sprintf("escl network scan failed at %s: %v", e.Step, e.Cause)
}

func (e *NetworkScanError) Unwrap() error {
	return e.Cause
}
