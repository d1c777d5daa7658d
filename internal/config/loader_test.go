package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfig_Defaults 无配置文件时使用默认值启动
func TestLoadConfig_Defaults(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "scans")
	t.Setenv("SCANDOCK_SCANNER_OUTPUT_DIR", outputDir)

	loader := NewConfigLoader(t.TempDir(), "SCANDOCK")
	cfg, err := loader.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "ScanDock", cfg.App.Name)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "png", cfg.Scanner.DefaultFormat)
	assert.Equal(t, 300, cfg.Scanner.Resolution)
	assert.Equal(t, 10*time.Second, cfg.Escl.SubmitTimeout)
	assert.Equal(t, 30*time.Second, cfg.Escl.TransferTimeout)
	assert.Equal(t, 2480, cfg.Escl.PageWidth)
	assert.Equal(t, 3508, cfg.Escl.PageHeight)
	assert.Equal(t, "RGB24", cfg.Escl.ColorMode)
	assert.True(t, cfg.Scanner.RefreshOnBoot)

	// 输出目录被预创建
	info, statErr := os.Stat(outputDir)
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
}

// TestLoadConfig_EnvOverride 环境变量覆盖默认值
func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("SCANDOCK_SERVER_PORT", "9100")
	t.Setenv("SCANDOCK_SCANNER_NETWORK_ONLY", "true")
	t.Setenv("SCANDOCK_SCANNER_OUTPUT_DIR", filepath.Join(t.TempDir(), "scans"))
	t.Setenv("SCANDOCK_LOG_LEVEL", "debug")

	loader := NewConfigLoader(t.TempDir(), "SCANDOCK")
	cfg, err := loader.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.True(t, cfg.Scanner.NetworkOnly)
	assert.Equal(t, "debug", cfg.Log.Level)
}

// TestLoadConfig_FromFile 配置文件优先于默认值
func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	outputDir := filepath.Join(dir, "out")
	content := `
server:
  port: 9200
scanner:
  output_dir: ` + outputDir + `
  default_format: jpg
escl:
  page_width: 2550
  page_height: 3300
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	loader := NewConfigLoader(dir, "SCANDOCK")
	cfg, err := loader.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "jpg", cfg.Scanner.DefaultFormat)
	assert.Equal(t, 2550, cfg.Escl.PageWidth)
	// 文件未覆盖的字段保持默认值
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

// TestLoadConfig_InvalidPort 非法端口直接拒绝
func TestLoadConfig_InvalidPort(t *testing.T) {
	t.Setenv("SCANDOCK_SERVER_PORT", "70000")
	t.Setenv("SCANDOCK_SCANNER_OUTPUT_DIR", filepath.Join(t.TempDir(), "scans"))

	loader := NewConfigLoader(t.TempDir(), "SCANDOCK")
	_, err := loader.LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}

// TestConfigDump 配置可序列化为YAML用于诊断输出
func TestConfigDump(t *testing.T) {
	t.Setenv("SCANDOCK_SCANNER_OUTPUT_DIR", filepath.Join(t.TempDir(), "scans"))

	loader := NewConfigLoader(t.TempDir(), "SCANDOCK")
	cfg, err := loader.LoadConfig()
	require.NoError(t, err)

	out, err := cfg.Dump()
	require.NoError(t, err)
	assert.Contains(t, out, "server:")
	assert.Contains(t, out, "scanner:")
}
