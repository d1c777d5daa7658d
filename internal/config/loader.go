/**
 * 配置加载器
 * @author: sun977
 * @date: 2025.11.14
 * @description: 基于viper的配置加载，支持YAML文件、环境变量覆盖和默认值
 */
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigLoader 配置加载器
type ConfigLoader struct {
	configPath string
	envPrefix  string
	viper      *viper.Viper
}

// NewConfigLoader 创建配置加载器
func NewConfigLoader(configPath, envPrefix string) *ConfigLoader {
	if envPrefix == "" {
		envPrefix = "SCANDOCK"
	}

	return &ConfigLoader{
		configPath: configPath,
		envPrefix:  envPrefix,
		viper:      viper.New(),
	}
}

// LoadConfig 加载配置
func (cl *ConfigLoader) LoadConfig() (*Config, error) {
	// 设置配置文件类型
	cl.viper.SetConfigType("yaml")

	// 设置环境变量前缀
	cl.viper.SetEnvPrefix(cl.envPrefix)
	cl.viper.AutomaticEnv()
	cl.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 绑定环境变量
	cl.bindEnvVars()

	// 设置默认值
	cl.setDefaults()

	// 加载配置文件（缺失时继续使用默认值+环境变量）
	if err := cl.loadConfigFile(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// 解析配置
	var config Config
	if err := cl.viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 验证配置
	if err := cl.validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// loadConfigFile 加载配置文件
func (cl *ConfigLoader) loadConfigFile() error {
	// 设置配置文件搜索路径
	cl.viper.AddConfigPath(cl.configPath)
	cl.viper.AddConfigPath("./configs")
	cl.viper.AddConfigPath(".")

	// 尝试加载环境特定的配置文件
	env := cl.getEnvironment()
	cl.viper.SetConfigName(fmt.Sprintf("config.%s", env))

	if err := cl.viper.ReadInConfig(); err != nil {
		// 环境特定配置文件不存在时，回退到默认配置文件
		cl.viper.SetConfigName("config")
		if err := cl.viper.ReadInConfig(); err != nil {
			return err
		}
	}

	return nil
}

// getEnvironment 获取运行环境
func (cl *ConfigLoader) getEnvironment() string {
	env := os.Getenv("SCANDOCK_ENV")
	if env == "" {
		env = os.Getenv("GO_ENV")
	}
	if env == "" {
		env = "development"
	}
	return env
}

// bindEnvVars 绑定环境变量
func (cl *ConfigLoader) bindEnvVars() {
	// App配置
	cl.viper.BindEnv("app.name", "SCANDOCK_APP_NAME")
	cl.viper.BindEnv("app.environment", "SCANDOCK_APP_ENVIRONMENT")
	cl.viper.BindEnv("app.debug", "SCANDOCK_APP_DEBUG")

	// Server配置
	cl.viper.BindEnv("server.host", "SCANDOCK_SERVER_HOST")
	cl.viper.BindEnv("server.port", "SCANDOCK_SERVER_PORT")
	cl.viper.BindEnv("server.mode", "SCANDOCK_SERVER_MODE")

	// Scanner配置
	cl.viper.BindEnv("scanner.output_dir", "SCANDOCK_SCANNER_OUTPUT_DIR")
	cl.viper.BindEnv("scanner.network_only", "SCANDOCK_SCANNER_NETWORK_ONLY")
	cl.viper.BindEnv("scanner.sane_path", "SCANDOCK_SCANNER_SANE_PATH")

	// 日志配置
	cl.viper.BindEnv("log.level", "SCANDOCK_LOG_LEVEL")
	cl.viper.BindEnv("log.file_path", "SCANDOCK_LOG_FILE_PATH")
}

// setDefaults 设置默认值
func (cl *ConfigLoader) setDefaults() {
	// App默认值
	cl.viper.SetDefault("app.name", "ScanDock")
	cl.viper.SetDefault("app.environment", "development")
	cl.viper.SetDefault("app.debug", false)

	// Server默认值
	cl.viper.SetDefault("server.host", "0.0.0.0")
	cl.viper.SetDefault("server.port", 8090)
	cl.viper.SetDefault("server.mode", "release")
	cl.viper.SetDefault("server.api_version", "v1")
	cl.viper.SetDefault("server.prefix", "/api")
	cl.viper.SetDefault("server.read_timeout", "30s")
	cl.viper.SetDefault("server.write_timeout", "60s")
	cl.viper.SetDefault("server.idle_timeout", "60s")
	cl.viper.SetDefault("server.max_header_bytes", 1048576)

	// Scanner默认值
	cl.viper.SetDefault("scanner.output_dir", "./scans")
	cl.viper.SetDefault("scanner.default_format", "png")
	cl.viper.SetDefault("scanner.resolution", 300)
	cl.viper.SetDefault("scanner.color_mode", "Color")
	cl.viper.SetDefault("scanner.network_only", false)
	cl.viper.SetDefault("scanner.sane_path", "scanimage")
	cl.viper.SetDefault("scanner.probe_timeout", "5s")
	cl.viper.SetDefault("scanner.scan_timeout", "2m")
	cl.viper.SetDefault("scanner.refresh_on_boot", true)

	// eSCL默认值
	// 扫描区域默认为A4：2480x3508 对应 300dpi 下 8.27x11.69 英寸
	cl.viper.SetDefault("escl.submit_timeout", "10s")
	cl.viper.SetDefault("escl.transfer_timeout", "30s")
	cl.viper.SetDefault("escl.resolution", 300)
	cl.viper.SetDefault("escl.page_width", 2480)
	cl.viper.SetDefault("escl.page_height", 3508)
	cl.viper.SetDefault("escl.color_mode", "RGB24")

	// 中间件默认值
	cl.viper.SetDefault("middleware.cors.enabled", true)
	cl.viper.SetDefault("middleware.cors.allow_origins", []string{"*"})
	cl.viper.SetDefault("middleware.cors.max_age", "12h")
	cl.viper.SetDefault("middleware.logging.enabled", true)
	cl.viper.SetDefault("middleware.logging.skip_paths", []string{"/health", "/ping"})

	// 日志默认值
	cl.viper.SetDefault("log.level", "info")
	cl.viper.SetDefault("log.format", "text")
	cl.viper.SetDefault("log.output", "stdout")
	cl.viper.SetDefault("log.file_path", "./logs/scandock.log")
	cl.viper.SetDefault("log.max_size", 100)
	cl.viper.SetDefault("log.max_backups", 3)
	cl.viper.SetDefault("log.max_age", 28)
	cl.viper.SetDefault("log.compress", true)
	cl.viper.SetDefault("log.caller", false)
}

// validateConfig 验证配置
func (cl *ConfigLoader) validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Scanner.OutputDir == "" {
		return fmt.Errorf("scanner output dir is required")
	}

	if config.Scanner.Resolution <= 0 {
		return fmt.Errorf("invalid scanner resolution: %d", config.Scanner.Resolution)
	}

	if config.Escl.PageWidth <= 0 || config.Escl.PageHeight <= 0 {
		return fmt.Errorf("invalid escl scan region: %dx%d", config.Escl.PageWidth, config.Escl.PageHeight)
	}

	// 预创建输出目录
	if err := os.MkdirAll(config.Scanner.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", config.Scanner.OutputDir, err)
	}

	return nil
}

// GetConfigPath 获取实际使用的配置文件路径
func (cl *ConfigLoader) GetConfigPath() string {
	return cl.viper.ConfigFileUsed()
}

// LoadConfigFromFile 从指定文件加载配置
func LoadConfigFromFile(configFile string) (*Config, error) {
	configPath := filepath.Dir(configFile)
	loader := NewConfigLoader(configPath, "SCANDOCK")
	return loader.LoadConfig()
}
