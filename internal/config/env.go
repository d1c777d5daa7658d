/**
 * 环境变量管理
 * @author: sun977
 * @date: 2025.11.14
 * @description: 环境变量读取辅助，支持.env文件加载和带前缀的类型化读取
 */
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvManager 环境变量管理器
type EnvManager struct {
	prefix string // 环境变量前缀
}

// NewEnvManager 创建环境变量管理器
func NewEnvManager(prefix string) *EnvManager {
	if prefix == "" {
		prefix = "SCANDOCK"
	}
	return &EnvManager{
		prefix: prefix,
	}
}

// LoadEnvFile 加载.env文件
// 文件不存在不视为错误，进程环境变量优先于文件内容
func (em *EnvManager) LoadEnvFile(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(envFile)
}

// LoadEnvFiles 按环境加载.env文件链
// 加载顺序: .env -> .env.<environment>，godotenv不覆盖已有变量，先加载者优先
func (em *EnvManager) LoadEnvFiles(dir, environment string) error {
	base := filepath.Join(dir, ".env")
	if err := em.LoadEnvFile(base); err != nil {
		return err
	}
	if environment != "" {
		envSpecific := filepath.Join(dir, ".env."+environment)
		if err := em.LoadEnvFile(envSpecific); err != nil {
			return err
		}
	}
	return nil
}

// GetString 获取字符串类型环境变量
func (em *EnvManager) GetString(key, defaultValue string) string {
	value := os.Getenv(em.buildEnvKey(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// GetInt 获取整数类型环境变量
func (em *EnvManager) GetInt(key string, defaultValue int) int {
	value := os.Getenv(em.buildEnvKey(key))
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

// GetBool 获取布尔类型环境变量
func (em *EnvManager) GetBool(key string, defaultValue bool) bool {
	value := os.Getenv(em.buildEnvKey(key))
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

// GetDuration 获取时间间隔类型环境变量
func (em *EnvManager) GetDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(em.buildEnvKey(key))
	if value == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// buildEnvKey 构造带前缀的环境变量名
// 例如 buildEnvKey("scanner.network_only") -> SCANDOCK_SCANNER_NETWORK_ONLY
func (em *EnvManager) buildEnvKey(key string) string {
	key = strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	return em.prefix + "_" + key
}
