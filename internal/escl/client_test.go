package escl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scandock/internal/config"
	"scandock/internal/model"
)

func testEsclConfig() *config.EsclConfig {
	return &config.EsclConfig{
		SubmitTimeout:   5 * time.Second,
		TransferTimeout: 5 * time.Second,
		Resolution:      300,
		PageWidth:       2480,
		PageHeight:      3508,
		ColorMode:       "RGB24",
	}
}

// TestNormalizeEndpoint 端点规范化：补全 /eSCL 且不重复追加
func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://192.168.1.50:8080", "http://192.168.1.50:8080/eSCL"},
		{"http://192.168.1.50:8080/", "http://192.168.1.50:8080/eSCL"},
		{"http://192.168.1.50:8080/eSCL", "http://192.168.1.50:8080/eSCL"},
		{"http://192.168.1.50:8080/eSCL/", "http://192.168.1.50:8080/eSCL"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEndpoint(tt.in))
	}
}

// TestClient_ScanSequence 完整协议序列：提交 -> Location -> NextDocument -> 落盘
func TestClient_ScanSequence(t *testing.T) {
	imageBytes := []byte("fake-jpeg-payload")

	mux := http.NewServeMux()
	var submittedContentType string
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/eSCL/ScanJobs", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		submittedContentType = r.Header.Get("Content-Type")
		w.Header().Set("Location", srv.URL+"/eSCL/ScanJobs/101")
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/eSCL/ScanJobs/101/NextDocument", func(w http.ResponseWriter, r *http.Request) {
		w.Write(imageBytes)
	})

	destPath := filepath.Join(t.TempDir(), "out.jpg")
	c := NewClient(testEsclConfig())

	// 端点不带 /eSCL 后缀，客户端应自行补全
	resultPath, err := c.Scan(context.Background(), srv.URL, "jpg", destPath)
	require.NoError(t, err)
	assert.Equal(t, destPath, resultPath)
	assert.Equal(t, "application/xml", submittedContentType)

	data, err := os.ReadFile(destPath)
	require.NoError(t, err)
	assert.Equal(t, imageBytes, data)

	// 临时文件不能残留
	_, err = os.Stat(destPath + ".part")
	assert.True(t, os.IsNotExist(err))
}

// TestClient_RelativeLocation 设备返回相对Location时按提交端点解析
func TestClient_RelativeLocation(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/eSCL/ScanJobs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/eSCL/ScanJobs/7")
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/eSCL/ScanJobs/7/NextDocument", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("img"))
	})

	destPath := filepath.Join(t.TempDir(), "out.png")
	c := NewClient(testEsclConfig())

	_, err := c.Scan(context.Background(), srv.URL+"/eSCL", "png", destPath)
	require.NoError(t, err)
}

// TestClient_MissingLocation 成功状态码但缺少Location头是协议违规
func TestClient_MissingLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(testEsclConfig())
	_, err := c.Scan(context.Background(), srv.URL, "jpg", filepath.Join(t.TempDir(), "out.jpg"))

	assert.ErrorIs(t, err, model.ErrProtocolViolation)
}

// TestClient_SubmitRejected 提交被拒绝归类为submit阶段的网络扫描错误
func TestClient_SubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(testEsclConfig())
	_, err := c.Scan(context.Background(), srv.URL, "jpg", filepath.Join(t.TempDir(), "out.jpg"))
	require.Error(t, err)

	var nse *model.NetworkScanError
	require.True(t, errors.As(err, &nse))
	assert.Equal(t, "submit", nse.Step)
}

// TestClient_RetrieveFailed 传输阶段失败归类为retrieve，目标文件不落盘
func TestClient_RetrieveFailed(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/eSCL/ScanJobs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", srv.URL+"/eSCL/ScanJobs/3")
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/eSCL/ScanJobs/3/NextDocument", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	destPath := filepath.Join(t.TempDir(), "out.jpg")
	c := NewClient(testEsclConfig())

	_, err := c.Scan(context.Background(), srv.URL, "jpg", destPath)
	require.Error(t, err)

	var nse *model.NetworkScanError
	require.True(t, errors.As(err, &nse))
	assert.Equal(t, "retrieve", nse.Step)

	_, statErr := os.Stat(destPath)
	assert.True(t, os.IsNotExist(statErr))
}

// TestClient_DistinctJobs 两次扫描各自创建独立的远端任务
func TestClient_DistinctJobs(t *testing.T) {
	jobCounter := 0
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/eSCL/ScanJobs", func(w http.ResponseWriter, r *http.Request) {
		jobCounter++
		w.Header().Set("Location", srv.URL+"/eSCL/ScanJobs/j")
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/eSCL/ScanJobs/j/NextDocument", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("img"))
	})

	dir := t.TempDir()
	c := NewClient(testEsclConfig())

	_, err := c.Scan(context.Background(), srv.URL, "jpg", filepath.Join(dir, "a.jpg"))
	require.NoError(t, err)
	_, err = c.Scan(context.Background(), srv.URL, "jpg", filepath.Join(dir, "b.jpg"))
	require.NoError(t, err)

	assert.Equal(t, 2, jobCounter)
}
