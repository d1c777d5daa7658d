package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scandock/internal/backend"
	"scandock/internal/model"
)

// TestClassify_Priority 验证分类优先级：网络标记 > 直连标记 > 厂商token
func TestClassify_Priority(t *testing.T) {
	tests := []struct {
		name     string
		raw      backend.RawDevice
		wantKind model.DeviceKind
		wantConn string
	}{
		{
			name:     "airscan设备走网络分类",
			raw:      backend.RawDevice{DeviceID: "airscan:e0:HP DeskJet"},
			wantKind: model.DeviceKindNetwork,
			wantConn: "WiFi/Network",
		},
		{
			name:     "escl标记走网络分类",
			raw:      backend.RawDevice{DeviceID: "escl:http://192.168.1.50:8080"},
			wantKind: model.DeviceKindNetwork,
			wantConn: "WiFi/Network",
		},
		{
			// 同时含网络标记和usb标记时网络标记优先
			name:     "网络标记优先于直连标记",
			raw:      backend.RawDevice{DeviceID: "net:usb:HP"},
			wantKind: model.DeviceKindNetwork,
			wantConn: "WiFi/Network",
		},
		{
			name:     "hpaio走直连分类",
			raw:      backend.RawDevice{DeviceID: "hpaio:/usb/Deskjet?serial=CN1"},
			wantKind: model.DeviceKindUSB,
			wantConn: "USB or Direct Connection",
		},
		{
			// 仅厂商名能识别时归为USB线缆连接
			name:     "厂商token兜底为USB",
			raw:      backend.RawDevice{DeviceID: "epson2:001:004"},
			wantKind: model.DeviceKindUSB,
			wantConn: "USB Cable",
		},
		{
			name:     "全部不中为Unknown",
			raw:      backend.RawDevice{DeviceID: "genesys:libusb:001:009"},
			wantKind: model.DeviceKindUnknown,
			wantConn: "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, conn := Classify(tt.raw)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantConn, conn)
		})
	}
}

// TestClassify_NetworkIP 网络设备带 ip= 信息时连接描述包含地址
func TestClassify_NetworkIP(t *testing.T) {
	raw := backend.RawDevice{
		DeviceID: "airscan:e0:Canon TS3400",
		Type:     "network scanner ip=192.168.1.50",
	}

	kind, conn := Classify(raw)
	assert.Equal(t, model.DeviceKindNetwork, kind)
	assert.Equal(t, "Network (192.168.1.50)", conn)
}

// TestDisplayName 展示名称生成规则
func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		raw  backend.RawDevice
		want string
	}{
		{
			name: "厂商+型号",
			raw:  backend.RawDevice{DeviceID: "airscan:e0:x", Vendor: "HP", Model: "DeskJet 2700"},
			want: "HP DeskJet 2700",
		},
		{
			name: "仅型号",
			raw:  backend.RawDevice{DeviceID: "x", Model: "ScanJet Pro"},
			want: "ScanJet Pro",
		},
		{
			name: "从设备ID末段提取",
			raw:  backend.RawDevice{DeviceID: "airscan:e0:HP OfficeJet"},
			want: "HP OfficeJet",
		},
		{
			// 去掉形如 [A95CBB] 的技术后缀
			name: "去掉括号后缀",
			raw:  backend.RawDevice{DeviceID: "x", Model: "HP Deskjet 4640 series [A95CBB]"},
			want: "HP Deskjet 4640 series",
		},
		{
			name: "无任何信息时回退设备ID",
			raw:  backend.RawDevice{DeviceID: "genesys"},
			want: "genesys",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayName(tt.raw))
		})
	}
}
