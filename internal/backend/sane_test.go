package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scandock/internal/model"
)

// TestParseDeviceList scanimage -f 输出解析
func TestParseDeviceList(t *testing.T) {
	out := "airscan:e0:HP DeskJet|HP|DeskJet 2700|network scanner\n" +
		"hpaio:/usb/Deskjet?serial=CN1|Hewlett-Packard|Deskjet 4640|all-in-one\n" +
		"\n" +
		"epson2:001:004\n"

	devices := parseDeviceList(out)
	require.Len(t, devices, 3)

	assert.Equal(t, "airscan:e0:HP DeskJet", devices[0].DeviceID)
	assert.Equal(t, "HP", devices[0].Vendor)
	assert.Equal(t, "DeskJet 2700", devices[0].Model)
	assert.Equal(t, "network scanner", devices[0].Type)

	// 字段不全的行保留已有字段
	assert.Equal(t, "epson2:001:004", devices[2].DeviceID)
	assert.Empty(t, devices[2].Vendor)
}

// TestParseDeviceList_Empty 空输出返回空集合而不是nil错误
func TestParseDeviceList_Empty(t *testing.T) {
	devices := parseDeviceList("")
	assert.NotNil(t, devices)
	assert.Len(t, devices, 0)
}

// TestOutputFormat 扩展名到scanimage输出格式的映射
func TestOutputFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"/tmp/a.png", "png", false},
		{"/tmp/a.jpg", "jpeg", false},
		{"/tmp/a.JPEG", "jpeg", false},
		{"/tmp/a.tif", "tiff", false},
		{"/tmp/a.tiff", "tiff", false},
		{"/tmp/a.bmp", "", true},
		{"/tmp/a", "", true},
	}

	for _, tt := range tests {
		got, err := outputFormat(tt.path)
		if tt.wantErr {
			assert.ErrorIs(t, err, model.ErrTransferFailed, "path=%s", tt.path)
			continue
		}
		require.NoError(t, err, "path=%s", tt.path)
		assert.Equal(t, tt.want, got)
	}
}

// TestClassifyScanError stderr文本到错误分类的映射
func TestClassifyScanError(t *testing.T) {
	raw := errors.New("exit status 1")

	tests := []struct {
		name   string
		stderr string
		want   error
	}{
		{"设备占用", "scanimage: sane_start: Device busy", model.ErrDeviceBusy},
		{"设备不存在", "scanimage: open of device foo failed: Invalid argument", model.ErrDeviceNotFound},
		{"打开失败", "failed to open device epson2:001:004", model.ErrDeviceNotFound},
		{"其他错误归为传输失败", "scanimage: sane_read: Error during device I/O", model.ErrTransferFailed},
		{"无stderr时也归为传输失败", "", model.ErrTransferFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyScanError(raw, tt.stderr)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// TestFirstLine 多行stderr只取第一行
func TestFirstLine(t *testing.T) {
	assert.Equal(t, "line one", firstLine("line one\nline two\nline three"))
	assert.Equal(t, "single", firstLine("  single  "))
	assert.Equal(t, "", firstLine(""))
}
