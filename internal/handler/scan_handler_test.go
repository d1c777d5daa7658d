package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scandock/internal/config"
	"scandock/internal/model"
	"scandock/internal/model/base"
)

// stubScanService 测试用任务服务
type stubScanService struct {
	submitLocalErr   error
	submitNetworkErr error
	jobs             map[string]model.ScanJob
}

func (s *stubScanService) SubmitLocalScan(ctx context.Context, deviceID int, format string) (string, error) {
	if s.submitLocalErr != nil {
		return "", s.submitLocalErr
	}
	return "job-local-1", nil
}

func (s *stubScanService) SubmitNetworkScan(ctx context.Context, endpoint string, format string) (string, error) {
	if s.submitNetworkErr != nil {
		return "", s.submitNetworkErr
	}
	return "job-net-1", nil
}

func (s *stubScanService) GetJob(jobID string) (model.ScanJob, error) {
	job, ok := s.jobs[jobID]
	if !ok {
		return model.ScanJob{}, model.ErrJobNotFound
	}
	return job, nil
}

func (s *stubScanService) ListJobs() []model.ScanJob {
	list := make([]model.ScanJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		list = append(list, j)
	}
	return list
}

func newTestRouter(svc *stubScanService, outputDir string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewScanHandler(svc, &config.ScannerConfig{OutputDir: outputDir})

	r := gin.New()
	r.POST("/api/v1/scan", h.SubmitScan)
	r.POST("/api/v1/scan/network", h.SubmitNetworkScan)
	r.GET("/api/v1/scan/status/:id", h.GetScanStatus)
	r.GET("/api/v1/scans", h.ListScanFiles)
	r.GET("/api/v1/scans/:filename/download", h.DownloadScanFile)
	return r
}

func doRequest(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestSubmitScan_ReturnsJobID 提交成功返回job_id
func TestSubmitScan_ReturnsJobID(t *testing.T) {
	r := newTestRouter(&stubScanService{}, t.TempDir())

	w := doRequest(r, http.MethodPost, "/api/v1/scan", map[string]interface{}{
		"scanner_id": 0,
		"format":     "png",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp base.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "job-local-1", data["job_id"])
}

// TestSubmitScan_MissingScannerID 缺少scanner_id返回400
// scanner_id=0 是合法值，binding必须用指针区分缺省和零值
func TestSubmitScan_MissingScannerID(t *testing.T) {
	r := newTestRouter(&stubScanService{}, t.TempDir())

	w := doRequest(r, http.MethodPost, "/api/v1/scan", map[string]interface{}{
		"format": "png",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestSubmitScan_InvalidDevice 越界设备索引映射为404
func TestSubmitScan_InvalidDevice(t *testing.T) {
	r := newTestRouter(&stubScanService{submitLocalErr: model.ErrInvalidDevice}, t.TempDir())

	w := doRequest(r, http.MethodPost, "/api/v1/scan", map[string]interface{}{
		"scanner_id": 9,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestSubmitNetworkScan 网络扫描提交
func TestSubmitNetworkScan(t *testing.T) {
	r := newTestRouter(&stubScanService{}, t.TempDir())

	w := doRequest(r, http.MethodPost, "/api/v1/scan/network", map[string]interface{}{
		"escl_url": "http://192.168.1.50:8080",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// 缺少escl_url
	w = doRequest(r, http.MethodPost, "/api/v1/scan/network", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestGetScanStatus 状态查询：存在返回快照，不存在返回404
func TestGetScanStatus(t *testing.T) {
	svc := &stubScanService{jobs: map[string]model.ScanJob{
		"j1": {ID: "j1", State: model.JobRunning, Progress: 50, CreatedAt: time.Now()},
	}}
	r := newTestRouter(svc, t.TempDir())

	w := doRequest(r, http.MethodGet, "/api/v1/scan/status/j1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp base.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "running", data["state"])
	assert.Equal(t, float64(50), data["progress"])

	w = doRequest(r, http.MethodGet, "/api/v1/scan/status/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestListScanFiles 文件列举跳过临时文件和子目录
func TestListScanFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan_a.png"), []byte("img"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan_b.png.part"), []byte("partial"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	r := newTestRouter(&stubScanService{}, dir)

	w := doRequest(r, http.MethodGet, "/api/v1/scans", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp base.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
}

// TestDownloadScanFile 下载与路径穿越防护
func TestDownloadScanFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan_a.png"), []byte("img"), 0644))

	r := newTestRouter(&stubScanService{}, dir)

	w := doRequest(r, http.MethodGet, "/api/v1/scans/scan_a.png/download", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "img", w.Body.String())

	// 不存在的文件
	w = doRequest(r, http.MethodGet, "/api/v1/scans/nope.png/download", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 路径穿越
	w = doRequest(r, http.MethodGet, "/api/v1/scans/../download", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
