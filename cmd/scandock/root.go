/*
 * @author: Sun977
 * @date: 2025.11.26
 * @description: Cobra Root Command 定义
 */

package main

import (
	"fmt"
	"io"
	"os"

	"scandock/internal/config"
	"scandock/internal/pkg/logger"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scandock",
	Short: "ScanDock 文档扫描服务",
	Long: `ScanDock 是一个文档扫描编排服务。
它可以作为HTTP服务对外提供扫描任务接口，也可以作为独立的CLI扫描工具运行。

示例:
  1.启动服务模式
	scandock server
  2.列出可用扫描仪
	scandock scan list
  3.单次本地扫描
	scandock scan local -d 0 -f png
  4.单次eSCL网络扫描
	scandock scan network -u http://192.168.1.50:8080 -f jpg
`,
	// PersistentPreRun: 全局初始化逻辑，确保所有子命令都能使用日志
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initCLILogger(cmd)
	},
}

func Execute() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n[FATAL] ScanDock crashed unexpectedly: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// 全局 Flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径 (默认: ./configs/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "日志级别 (debug, info, warn, error)")

	// 绑定 Viper
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("configs")
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv() // 读取环境变量

	if err := viper.ReadInConfig(); err == nil {
		// fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

// initCLILogger 初始化 CLI 模式下的日志
// 保证 CLI 命令也能输出格式化日志，并受 --log-level 控制
func initCLILogger(cmd *cobra.Command) {
	// 检查 log-level 标志是否被显式设置
	flag := cmd.Flags().Lookup("log-level")
	level := "fatal" // CLI 默认只输出 Fatal，过程信息走 pterm
	if flag != nil && flag.Changed {
		level = flag.Value.String()
	}

	// 配置 pterm
	switch level {
	case "debug":
		pterm.EnableDebugMessages()
	case "info":
		pterm.DisableDebugMessages()
	case "warn", "error", "fatal":
		pterm.DisableDebugMessages()
		pterm.Info = *pterm.Info.WithWriter(io.Discard)
	}

	logConfig := &config.LogConfig{
		Level:  level,
		Format: "text",
		Output: "stdout",
		Caller: false,
	}

	// 初始化日志
	if _, err := logger.InitLogger(logConfig); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
	}
}
