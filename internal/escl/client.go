/**
 * eSCL网络扫描客户端
 * @author: sun977
 * @date: 2025.11.18
 * @description: 面向eSCL/AirScan设备的扫描协议客户端（HP/Canon/Epson/Brother等）
 * @func: 固定协议序列：
 *  1. 端点规范化（补全 /eSCL 路径段）
 *  2. POST ScanSettings 到 <endpoint>/ScanJobs，从Location头取任务资源URL
 *  3. GET <jobURL>/NextDocument 流式下载图像到目标路径
 */
package escl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"scandock/internal/config"
	"scandock/internal/model"
	"scandock/internal/pkg/logger"
	"scandock/internal/pkg/version"
)

// esclPathSuffix eSCL端点的固定路径段
const esclPathSuffix = "/eSCL"

// Client eSCL扫描客户端接口
// 实现必须无状态且可被多个goroutine并发使用，每次调用创建一个新的远端任务
type Client interface {
	// Scan 对远端设备执行一次完整扫描，图像写入destPath
	Scan(ctx context.Context, endpoint string, format string, destPath string) (string, error)
}

// client eSCL扫描客户端实现
type client struct {
	// 任务提交是控制面调用，用短超时；图像传输体积不定，用长超时
	submitClient   *http.Client
	transferClient *http.Client
	cfg            *config.EsclConfig
	userAgent      string
}

// NewClient 创建eSCL客户端实例
func NewClient(cfg *config.EsclConfig) Client {
	submitTimeout := cfg.SubmitTimeout
	if submitTimeout <= 0 {
		submitTimeout = 10 * time.Second
	}
	transferTimeout := cfg.TransferTimeout
	if transferTimeout <= 0 {
		transferTimeout = 30 * time.Second
	}

	return &client{
		submitClient:   &http.Client{Timeout: submitTimeout},
		transferClient: &http.Client{Timeout: transferTimeout},
		cfg:            cfg,
		userAgent:      version.GetUserAgent(),
	}
}

// NormalizeEndpoint 规范化eSCL端点URL
// 确保以固定的 /eSCL 路径段结尾，已带后缀时不重复追加
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(endpoint, "/")
	if !strings.HasSuffix(endpoint, esclPathSuffix) {
		endpoint += esclPathSuffix
	}
	return endpoint
}

// Scan 执行完整的eSCL扫描序列
func (c *client) Scan(ctx context.Context, endpoint string, format string, destPath string) (string, error) {
	endpoint = NormalizeEndpoint(endpoint)

	jobURL, err := c.submitJob(ctx, endpoint, format)
	if err != nil {
		return "", err
	}

	logger.WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"job_url":  jobURL,
	}).Debug("escl job created")

	if err := c.retrieveDocument(ctx, jobURL, destPath); err != nil {
		// 不尝试清理远端任务资源，eSCL设备会自行回收被放弃的任务
		return "", err
	}

	return destPath, nil
}

// submitJob 提交扫描任务，返回任务资源URL
func (c *client) submitJob(ctx context.Context, endpoint string, format string) (string, error) {
	settings, err := BuildScanSettings(c.cfg, format)
	if err != nil {
		return "", &model.NetworkScanError{Step: "submit", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/ScanJobs", bytes.NewReader(settings))
	if err != nil {
		return "", &model.NetworkScanError{Step: "submit", Cause: err}
	}
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.submitClient.Do(req)
	if err != nil {
		return "", &model.NetworkScanError{Step: "submit", Cause: err}
	}
	defer resp.Body.Close()
	// 响应体无用但要读完，保证连接可复用
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &model.NetworkScanError{
			Step:  "submit",
			Cause: fmt.Errorf("unexpected status %s from %s", resp.Status, endpoint+"/ScanJobs"),
		}
	}

	location := resp.Header.Get("Location")
	if location == "" {
		// 成功状态码但缺少任务资源地址，协议层面的硬错误
		return "", fmt.Errorf("%w: ScanJobs response missing Location header", model.ErrProtocolViolation)
	}

	return resolveJobURL(endpoint, location), nil
}

// resolveJobURL 把Location头解析为绝对的任务资源URL
// 部分设备返回相对路径，按提交端点解析
func resolveJobURL(endpoint string, location string) string {
	loc, err := url.Parse(location)
	if err != nil {
		return location
	}
	if loc.IsAbs() {
		return location
	}
	base, err := url.Parse(endpoint + "/ScanJobs")
	if err != nil {
		return location
	}
	return base.ResolveReference(loc).String()
}

// retrieveDocument 下载扫描图像并流式写入目标路径
func (c *client) retrieveDocument(ctx context.Context, jobURL string, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jobURL+"/NextDocument", nil)
	if err != nil {
		return &model.NetworkScanError{Step: "retrieve", Cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.transferClient.Do(req)
	if err != nil {
		return &model.NetworkScanError{Step: "retrieve", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &model.NetworkScanError{
			Step:  "retrieve",
			Cause: fmt.Errorf("unexpected status %s from %s", resp.Status, jobURL+"/NextDocument"),
		}
	}

	// 增量写临时文件，成功后原子重命名，失败不留部分文件
	tmpPath := destPath + ".part"
	out, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return &model.NetworkScanError{Step: "retrieve", Cause: err}
	}

	_, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()

	if copyErr != nil || closeErr != nil {
		os.Remove(tmpPath)
		if copyErr == nil {
			copyErr = closeErr
		}
		return &model.NetworkScanError{Step: "retrieve", Cause: copyErr}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return &model.NetworkScanError{Step: "retrieve", Cause: err}
	}

	return nil
}
