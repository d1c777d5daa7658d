/**
 * ScanDock配置管理
 * @author: sun977
 * @date: 2025.11.14
 * @description: 服务端配置结构定义，负责配置的结构化表示和默认值
 */
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config ScanDock配置
type Config struct {
	// 应用配置
	App *AppConfig `yaml:"app" mapstructure:"app"`

	// 服务器配置
	Server *ServerConfig `yaml:"server" mapstructure:"server"`

	// 日志配置
	Log *LogConfig `yaml:"log" mapstructure:"log"`

	// 扫描仪配置
	Scanner *ScannerConfig `yaml:"scanner" mapstructure:"scanner"`

	// eSCL协议配置
	Escl *EsclConfig `yaml:"escl" mapstructure:"escl"`

	// 中间件配置
	Middleware *MiddlewareConfig `yaml:"middleware" mapstructure:"middleware"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`               // 应用名称
	Environment string `yaml:"environment" mapstructure:"environment"` // 运行环境
	Debug       bool   `yaml:"debug" mapstructure:"debug"`             // 调试模式
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host           string        `yaml:"host" mapstructure:"host"`                         // 监听地址
	Port           int           `yaml:"port" mapstructure:"port"`                         // 监听端口
	Mode           string        `yaml:"mode" mapstructure:"mode"`                         // 运行模式 (debug/release/test)
	APIVersion     string        `yaml:"api_version" mapstructure:"api_version"`           // API版本
	Prefix         string        `yaml:"prefix" mapstructure:"prefix"`                     // 路由前缀
	ReadTimeout    time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`         // 读取超时时间
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`       // 写入超时时间
	IdleTimeout    time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`         // 空闲超时时间
	MaxHeaderBytes int           `yaml:"max_header_bytes" mapstructure:"max_header_bytes"` // 最大头部字节数
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`             // 日志级别 (debug/info/warn/error)
	Format     string `yaml:"format" mapstructure:"format"`           // 日志格式 (json/text)
	Output     string `yaml:"output" mapstructure:"output"`           // 日志输出 (stdout/stderr/file)
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`     // 日志文件路径
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // 单个日志文件最大尺寸(MB)
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // 保留的旧日志文件数
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // 日志文件保留天数
	Compress   bool   `yaml:"compress" mapstructure:"compress"`       // 是否压缩旧日志
	Caller     bool   `yaml:"caller" mapstructure:"caller"`           // 是否记录调用位置
}

// ScannerConfig 扫描仪配置
type ScannerConfig struct {
	OutputDir     string        `yaml:"output_dir" mapstructure:"output_dir"`         // 扫描图片输出目录
	DefaultFormat string        `yaml:"default_format" mapstructure:"default_format"` // 默认输出格式 (png/jpg/jpeg)
	Resolution    int           `yaml:"resolution" mapstructure:"resolution"`         // 扫描分辨率 DPI
	ColorMode     string        `yaml:"color_mode" mapstructure:"color_mode"`         // 色彩模式
	NetworkOnly   bool          `yaml:"network_only" mapstructure:"network_only"`     // 强制纯网络模式（跳过本地驱动）
	SanePath      string        `yaml:"sane_path" mapstructure:"sane_path"`           // scanimage可执行文件路径
	ProbeTimeout  time.Duration `yaml:"probe_timeout" mapstructure:"probe_timeout"`   // 本地驱动初始化探测超时
	ScanTimeout   time.Duration `yaml:"scan_timeout" mapstructure:"scan_timeout"`     // 单次本地扫描超时
	RefreshOnBoot bool          `yaml:"refresh_on_boot" mapstructure:"refresh_on_boot"` // 启动时后台刷新设备列表
}

// EsclConfig eSCL协议配置
type EsclConfig struct {
	SubmitTimeout   time.Duration `yaml:"submit_timeout" mapstructure:"submit_timeout"`     // 任务提交超时（控制面）
	TransferTimeout time.Duration `yaml:"transfer_timeout" mapstructure:"transfer_timeout"` // 图像传输超时（数据面）
	Resolution      int           `yaml:"resolution" mapstructure:"resolution"`             // X/Y分辨率 DPI
	PageWidth       int           `yaml:"page_width" mapstructure:"page_width"`             // 扫描区域宽度（1/100英寸@300dpi单位）
	PageHeight      int           `yaml:"page_height" mapstructure:"page_height"`           // 扫描区域高度（1/100英寸@300dpi单位）
	ColorMode       string        `yaml:"color_mode" mapstructure:"color_mode"`             // 色彩模式
}

// MiddlewareConfig 中间件配置
type MiddlewareConfig struct {
	CORS    *CORSConfig    `yaml:"cors" mapstructure:"cors"`       // CORS中间件配置
	Logging *LoggingConfig `yaml:"logging" mapstructure:"logging"` // 请求日志中间件配置
}

// CORSConfig CORS中间件配置
type CORSConfig struct {
	Enabled          bool          `yaml:"enabled" mapstructure:"enabled"`                     // 是否启用CORS
	AllowOrigins     []string      `yaml:"allow_origins" mapstructure:"allow_origins"`         // 允许的源
	AllowMethods     []string      `yaml:"allow_methods" mapstructure:"allow_methods"`         // 允许的方法
	AllowHeaders     []string      `yaml:"allow_headers" mapstructure:"allow_headers"`         // 允许的头部
	AllowCredentials bool          `yaml:"allow_credentials" mapstructure:"allow_credentials"` // 是否允许凭证
	MaxAge           time.Duration `yaml:"max_age" mapstructure:"max_age"`                     // 预检请求缓存时间
}

// LoggingConfig 请求日志中间件配置
type LoggingConfig struct {
	Enabled   bool     `yaml:"enabled" mapstructure:"enabled"`       // 是否启用请求日志
	SkipPaths []string `yaml:"skip_paths" mapstructure:"skip_paths"` // 不记录日志的路径
}

// Dump 将当前配置序列化为YAML，用于调试输出
func (c *Config) Dump() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// LoadConfig 使用默认搜索路径加载配置
// 配置文件不存在时回退到纯默认值，环境变量仍然生效
func LoadConfig() (*Config, error) {
	configPath := os.Getenv("SCANDOCK_CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs"
	}

	// 先加载.env文件链，让viper的环境变量绑定能看到其中的值
	envManager := NewEnvManager("SCANDOCK")
	environment := os.Getenv("SCANDOCK_ENV")
	if err := envManager.LoadEnvFiles(".", environment); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}

	loader := NewConfigLoader(configPath, "SCANDOCK")
	return loader.LoadConfig()
}
