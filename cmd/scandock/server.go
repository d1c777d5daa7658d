/*
 * @author: Sun977
 * @date: 2025.11.26
 * @description: Server 模式子命令 (HTTP 服务)
 */

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scandock/internal/app/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	listenPort int
	outputDir  string
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动 ScanDock 服务模式",
	Long: `以守护进程方式启动 ScanDock，对外提供扫描仪管理和扫描任务HTTP接口。

可以通过命令行参数指定监听端口和输出目录，也可以通过配置文件指定。
命令行参数优先级高于配置文件。

示例:
  scandock server --port 8090 --output ./scans`,
	Run: func(cmd *cobra.Command, args []string) {
		// 绑定 Flags 到 Viper，App 内部直接读取 Viper
		if cmd.Flags().Changed("port") {
			viper.Set("server.port", listenPort)
		}
		if outputDir != "" {
			viper.Set("scanner.output_dir", outputDir)
		}
		runServer()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// 定义 Flags
	serverCmd.Flags().IntVar(&listenPort, "port", 8090, "HTTP监听端口")
	serverCmd.Flags().StringVar(&outputDir, "output", "", "扫描图片输出目录")
}

// runServer 服务模式主循环
func runServer() {
	// 创建应用实例
	app, err := server.NewApp()
	if err != nil {
		log.Fatalf("Failed to create scandock app: %v", err)
	}

	// 启动应用
	if err2 := app.Start(); err2 != nil {
		log.Fatalf("Failed to start scandock app: %v", err2)
	}

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down ScanDock server...")

	// 给服务器5秒钟的时间来完成现有请求
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 停止应用
	if err1 := app.Stop(ctx); err1 != nil {
		log.Fatal("ScanDock forced to shutdown:", err1)
	}

	log.Println("ScanDock exiting")
}
