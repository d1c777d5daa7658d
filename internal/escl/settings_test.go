package escl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scandock/internal/config"
)

// TestBuildScanSettings 扫描设置文档包含命名空间和配置的扫描参数
func TestBuildScanSettings(t *testing.T) {
	cfg := &config.EsclConfig{
		Resolution: 300,
		PageWidth:  2480,
		PageHeight: 3508,
		ColorMode:  "RGB24",
	}

	body, err := BuildScanSettings(cfg, "png")
	require.NoError(t, err)

	doc := string(body)
	assert.Contains(t, doc, `<?xml`)
	assert.Contains(t, doc, `xmlns:scan="http://schemas.hp.com/imaging/escl/2011/05/03"`)
	assert.Contains(t, doc, `xmlns:pwg="http://www.pwg.org/schemas/2010/12/sm"`)
	assert.Contains(t, doc, "<scan:DocumentFormatExt>image/png</scan:DocumentFormatExt>")
	assert.Contains(t, doc, "<scan:XResolution>300</scan:XResolution>")
	assert.Contains(t, doc, "<pwg:Width>2480</pwg:Width>")
	assert.Contains(t, doc, "<pwg:Height>3508</pwg:Height>")
	assert.Contains(t, doc, "<scan:ColorMode>RGB24</scan:ColorMode>")
}

// TestFormatToMIME 未知格式统一回退到jpeg
func TestFormatToMIME(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"png", "image/png"},
		{"pdf", "application/pdf"},
		{"jpg", "image/jpeg"},
		{"jpeg", "image/jpeg"},
		{".png", "image/png"},
		{"bmp", "image/jpeg"},
		{"", "image/jpeg"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatToMIME(tt.format), "format=%q", tt.format)
	}
}
