/**
 * SANE本地扫描后端
 * @author: sun977
 * @date: 2025.11.17
 * @description: 通过scanimage命令行驱动本地SANE扫描层，进程不直接链接驱动库
 * @func:
 *  1. 设备枚举: scanimage -f 按固定格式列出设备
 *  2. 图像采集: scanimage -d 输出写入临时文件，成功后原子重命名
 */
package backend

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"scandock/internal/config"
	"scandock/internal/model"
	"scandock/internal/pkg/logger"
)

// enumerateFormat scanimage -f 的输出模板，每行一台设备
const enumerateFormat = "%d|%v|%m|%t\n"

// saneBackend 基于scanimage CLI的本地扫描后端
type saneBackend struct {
	binPath     string
	resolution  int
	colorMode   string
	scanTimeout time.Duration
}

// NewSaneBackend 创建SANE后端并探测驱动层可用性
// 探测失败返回包装了 ErrBackendUnavailable 的错误，由选择器决定降级
func NewSaneBackend(cfg *config.ScannerConfig) (Backend, error) {
	binPath := cfg.SanePath
	if binPath == "" {
		binPath = "scanimage"
	}

	resolved, err := exec.LookPath(binPath)
	if err != nil {
		return nil, fmt.Errorf("%w: scanimage not found in PATH: %v", model.ErrBackendUnavailable, err)
	}

	// 有界探测：驱动初始化挂起不能拖垮进程启动
	probeCtx, cancel := context.WithTimeout(context.Background(), cfg.ProbeTimeout)
	defer cancel()

	if err := exec.CommandContext(probeCtx, resolved, "--version").Run(); err != nil {
		return nil, fmt.Errorf("%w: scanimage probe failed: %v", model.ErrBackendUnavailable, err)
	}

	return &saneBackend{
		binPath:     resolved,
		resolution:  cfg.Resolution,
		colorMode:   cfg.ColorMode,
		scanTimeout: cfg.ScanTimeout,
	}, nil
}

// Name 返回后端标识
func (b *saneBackend) Name() string {
	return "sane"
}

// Enumerate 枚举SANE可见的扫描设备
// 网络发现可能耗时数秒，调用方负责通过ctx约束
func (b *saneBackend) Enumerate(ctx context.Context) ([]RawDevice, error) {
	cmd := exec.CommandContext(ctx, b.binPath, "-f", enumerateFormat)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// scanimage 在没有设备时也可能以非零退出，此时stdout为空但不是驱动故障
		if stdout.Len() == 0 && stderr.Len() > 0 {
			return nil, fmt.Errorf("%w: scanimage enumeration failed: %s", model.ErrBackendUnavailable, firstLine(stderr.String()))
		}
	}

	return parseDeviceList(stdout.String()), nil
}

// parseDeviceList 解析scanimage -f的输出
func parseDeviceList(out string) []RawDevice {
	devices := make([]RawDevice, 0)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 4)
		dev := RawDevice{DeviceID: parts[0]}
		if len(parts) > 1 {
			dev.Vendor = parts[1]
		}
		if len(parts) > 2 {
			dev.Model = parts[2]
		}
		if len(parts) > 3 {
			dev.Type = parts[3]
		}
		if dev.DeviceID == "" {
			continue
		}
		devices = append(devices, dev)
	}
	return devices
}

// Acquire 从指定设备采集一页图像
func (b *saneBackend) Acquire(ctx context.Context, deviceID string, destPath string) (string, error) {
	format, err := outputFormat(destPath)
	if err != nil {
		return "", err
	}

	if b.scanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.scanTimeout)
		defer cancel()
	}

	// 先写同目录临时文件，成功后原子重命名到destPath
	tmpPath := destPath + ".part"
	tmpFile, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", model.ErrTransferFailed, err)
	}

	cmd := exec.CommandContext(ctx, b.binPath,
		"-d", deviceID,
		"--format="+format,
		"--resolution", fmt.Sprintf("%d", b.resolution),
		"--mode", b.colorMode,
	)
	cmd.Stdout = tmpFile

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	closeErr := tmpFile.Close()

	if runErr != nil || closeErr != nil {
		os.Remove(tmpPath)
		if runErr == nil {
			runErr = closeErr
		}
		return "", classifyScanError(runErr, stderr.String())
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: rename scan output: %v", model.ErrTransferFailed, err)
	}

	logger.WithFields(map[string]interface{}{
		"device": deviceID,
		"output": destPath,
		"format": format,
	}).Debug("sane acquire completed")

	return destPath, nil
}

// outputFormat 根据目标文件扩展名决定scanimage输出格式
func outputFormat(destPath string) (string, error) {
	switch strings.ToLower(filepath.Ext(destPath)) {
	case ".png":
		return "png", nil
	case ".jpg", ".jpeg":
		return "jpeg", nil
	case ".tif", ".tiff":
		return "tiff", nil
	default:
		return "", fmt.Errorf("%w: unsupported output format %q", model.ErrTransferFailed, filepath.Ext(destPath))
	}
}

// classifyScanError 把scanimage的失败归类到统一错误分类
// 依赖stderr文本匹配，属于尽力而为的归类
func classifyScanError(err error, stderr string) error {
	msg := strings.ToLower(stderr)
	switch {
	case strings.Contains(msg, "busy"):
		return fmt.Errorf("%w: %s", model.ErrDeviceBusy, firstLine(stderr))
	case strings.Contains(msg, "invalid argument"),
		strings.Contains(msg, "no such device"),
		strings.Contains(msg, "failed to open"):
		return fmt.Errorf("%w: %s", model.ErrDeviceNotFound, firstLine(stderr))
	default:
		if stderr != "" {
			return fmt.Errorf("%w: %s", model.ErrTransferFailed, firstLine(stderr))
		}
		return fmt.Errorf("%w: %v", model.ErrTransferFailed, err)
	}
}

// firstLine 取多行输出的第一行，避免日志里塞进整段stderr
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
