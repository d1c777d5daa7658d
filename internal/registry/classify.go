/**
 * 扫描仪类型分类
 * @author: sun977
 * @date: 2025.11.19
 * @description: 根据驱动返回的标识字符串对设备连接类型做启发式分类
 * @func: 匹配优先级：网络标记 > 直连标记 > 厂商token，全部不中为Unknown
 */
package registry

import (
	"strings"

	"scandock/internal/backend"
	"scandock/internal/model"
)

// 分类用的标识token，全部小写匹配
// 启发式规则，只保证优先级顺序，不保证分类绝对正确
var (
	networkMarkers = []string{"airscan", "escl", "network", "net", "wifi", "ip="}
	directMarkers  = []string{"hpaio", "usb", "direct", "local"}
	vendorTokens   = []string{"hp", "canon", "epson", "brother", "samsung"}
)

// Classify 对单个原始设备条目做连接类型分类
// 返回类型和面向用户的连接描述
func Classify(raw backend.RawDevice) (model.DeviceKind, string) {
	deviceLower := strings.ToLower(raw.DeviceID)

	if containsAny(deviceLower, networkMarkers) {
		conn := "WiFi/Network"
		if ip := extractIP(raw.Type); ip != "" {
			conn = "Network (" + ip + ")"
		}
		return model.DeviceKindNetwork, conn
	}

	if containsAny(deviceLower, directMarkers) {
		return model.DeviceKindUSB, "USB or Direct Connection"
	}

	if containsAny(deviceLower, vendorTokens) {
		return model.DeviceKindUSB, "USB Cable"
	}

	return model.DeviceKindUnknown, "Unknown"
}

// DisplayName 生成展示名称
// 优先 厂商+型号，其次取设备ID冒号后的末段，最后去掉形如 "[A95CBB]" 的技术后缀
func DisplayName(raw backend.RawDevice) string {
	var name string
	switch {
	case raw.Vendor != "" && raw.Model != "":
		name = raw.Vendor + " " + raw.Model
	case raw.Model != "":
		name = raw.Model
	case strings.Contains(raw.DeviceID, ":"):
		parts := strings.Split(raw.DeviceID, ":")
		name = parts[len(parts)-1]
	default:
		name = raw.DeviceID
	}

	// 去掉类似 "HP Deskjet 4640 series [A95CBB]" 的括号后缀
	if i := strings.Index(name, "["); i >= 0 && strings.Contains(name[i:], "]") {
		name = strings.TrimSpace(name[:i])
	}

	return name
}

// containsAny 判断字符串是否包含任一token
func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// extractIP 从连接信息中提取 "ip=x.x.x.x" 形式的地址
func extractIP(info string) string {
	i := strings.Index(strings.ToLower(info), "ip=")
	if i < 0 {
		return ""
	}
	rest := info[i+len("ip="):]
	if j := strings.IndexAny(rest, "&; "); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
