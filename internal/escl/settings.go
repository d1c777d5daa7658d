/**
 * eSCL扫描设置文档
 * @author: sun977
 * @date: 2025.11.18
 * @description: eSCL ScanSettings XML文档构造，schema由eSCL规范固定
 */
package escl

import (
	"encoding/xml"
	"fmt"
	"strings"

	"scandock/internal/config"
)

const (
	scanNamespace = "http://schemas.hp.com/imaging/escl/2011/05/03"
	pwgNamespace  = "http://www.pwg.org/schemas/2010/12/sm"
)

// ScanSettings eSCL扫描设置文档
// 元素顺序与设备固件预期一致，不要调整字段顺序
type ScanSettings struct {
	XMLName   xml.Name `xml:"scan:ScanSettings"`
	XmlnsScan string   `xml:"xmlns:scan,attr"`
	XmlnsPwg  string   `xml:"xmlns:pwg,attr"`

	Version           string          `xml:"pwg:Version"`
	Intent            string          `xml:"scan:Intent"`
	InputSource       string          `xml:"scan:InputSource"`
	ScanRegions       ScanRegions     `xml:"pwg:ScanRegions"`
	InputAttributes   InputAttributes `xml:"pwg:InputAttributes"`
	DocumentFormatExt string          `xml:"scan:DocumentFormatExt"`
	XResolution       int             `xml:"scan:XResolution"`
	YResolution       int             `xml:"scan:YResolution"`
	ColorMode         string          `xml:"scan:ColorMode"`
}

// ScanRegions 扫描区域集合
type ScanRegions struct {
	Region ScanRegion `xml:"pwg:ScanRegion"`
}

// ScanRegion 单个扫描区域，单位为1/100英寸（与300dpi页面尺寸匹配）
type ScanRegion struct {
	Height  int `xml:"pwg:Height"`
	Width   int `xml:"pwg:Width"`
	XOffset int `xml:"pwg:XOffset"`
	YOffset int `xml:"pwg:YOffset"`
}

// InputAttributes 输入属性
type InputAttributes struct {
	MinimumSize MinimumSize `xml:"pwg:MinimumSize"`
}

// MinimumSize 最小页面尺寸
type MinimumSize struct {
	Width  int `xml:"pwg:Width"`
	Height int `xml:"pwg:Height"`
}

// BuildScanSettings 按配置构造一份格式良好的扫描设置文档
// 调用方不能注入自定义XML，文档结构每次调用都完整重建
func BuildScanSettings(cfg *config.EsclConfig, format string) ([]byte, error) {
	settings := ScanSettings{
		XmlnsScan:   scanNamespace,
		XmlnsPwg:    pwgNamespace,
		Version:     "2.0",
		Intent:      "Document",
		InputSource: "Platen",
		ScanRegions: ScanRegions{
			Region: ScanRegion{
				Height:  cfg.PageHeight,
				Width:   cfg.PageWidth,
				XOffset: 0,
				YOffset: 0,
			},
		},
		InputAttributes: InputAttributes{
			MinimumSize: MinimumSize{
				Width:  cfg.PageWidth,
				Height: cfg.PageHeight,
			},
		},
		DocumentFormatExt: formatToMIME(format),
		XResolution:       cfg.Resolution,
		YResolution:       cfg.Resolution,
		ColorMode:         cfg.ColorMode,
	}

	body, err := xml.MarshalIndent(settings, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scan settings: %w", err)
	}

	return append([]byte(xml.Header), body...), nil
}

// formatToMIME 输出格式到eSCL文档格式MIME类型的映射
func formatToMIME(format string) string {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "png":
		return "image/png"
	case "pdf":
		return "application/pdf"
	default:
		// jpg/jpeg以及未知格式统一走jpeg，这是eSCL设备支持最广的格式
		return "image/jpeg"
	}
}
