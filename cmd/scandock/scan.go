/*
 * @author: Sun977
 * @date: 2025.11.26
 * @description: Scan 模式子命令 (Standalone Mode)
 */

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"scandock/internal/backend"
	"scandock/internal/config"
	"scandock/internal/escl"
	"scandock/internal/registry"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	scanDeviceIndex int
	scanFormat      string
	scanOutputDir   string
	scanEsclURL     string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "执行单次扫描任务 (Standalone)",
	Long: `在不启动HTTP服务的情况下执行一次性的扫描任务。
支持本地驱动设备和eSCL网络扫描仪。

示例:
  scandock scan list
  scandock scan local -d 0 -f png
  scandock scan network -u http://192.168.1.50:8080 -f jpg`,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.PersistentFlags().StringVarP(&scanFormat, "format", "f", "", "输出格式 (png/jpg/tiff)")
	scanCmd.PersistentFlags().StringVarP(&scanOutputDir, "output", "o", "", "输出目录 (默认取配置)")

	scanCmd.AddCommand(newScanListCmd())
	scanCmd.AddCommand(newScanLocalCmd())
	scanCmd.AddCommand(newScanNetworkCmd())
}

// newScanListCmd 创建 scan list 命令
func newScanListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "列出可用扫描仪",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, reg, err := setupRegistry()
			if err != nil {
				return err
			}

			spinner, _ := pterm.DefaultSpinner.Start("Detecting scanners...")
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Scanner.ScanTimeout)
			defer cancel()
			reg.Refresh(ctx)
			spinner.Stop()

			list := reg.Snapshot()
			if list.TotalCount == 0 {
				pterm.Warning.Println("No scanners found.")
				return nil
			}

			tableData := pterm.TableData{{"ID", "Name", "Type", "Connection"}}
			for _, d := range list.Devices {
				tableData = append(tableData, []string{
					fmt.Sprintf("%d", d.ID), d.Name, string(d.Kind), d.Connection,
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
		},
	}
}

// newScanLocalCmd 创建 scan local 命令
func newScanLocalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "local",
		Short: "本地驱动设备单次扫描",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, b, reg, err := setupRegistry()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Scanner.ScanTimeout)
			defer cancel()

			reg.Refresh(ctx)
			dev, err := reg.Get(scanDeviceIndex)
			if err != nil {
				return fmt.Errorf("scanner %d not available: %w", scanDeviceIndex, err)
			}

			destPath := cliDestPath(cfg, "scan")
			pterm.Info.Printf("Scanning from %s ...\n", dev.Name)

			resultPath, err := b.Acquire(ctx, dev.DeviceID, destPath)
			if err != nil {
				return err
			}

			pterm.Success.Printf("Scan saved: %s\n", resultPath)
			return nil
		},
	}

	cmd.Flags().IntVarP(&scanDeviceIndex, "device", "d", 0, "扫描仪ID (见 scan list)")
	return cmd
}

// newScanNetworkCmd 创建 scan network 命令
func newScanNetworkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network",
		Short: "eSCL网络扫描仪单次扫描",
		RunE: func(cmd *cobra.Command, args []string) error {
			if scanEsclURL == "" {
				return fmt.Errorf("escl url is required")
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.Scanner.ScanTimeout)
			defer cancel()

			destPath := cliDestPath(cfg, "network_scan")
			pterm.Info.Printf("Scanning from %s ...\n", scanEsclURL)

			client := escl.NewClient(cfg.Escl)
			resultPath, err := client.Scan(ctx, scanEsclURL, cliFormat(cfg), destPath)
			if err != nil {
				return err
			}

			pterm.Success.Printf("Scan saved: %s\n", resultPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&scanEsclURL, "url", "u", "", "eSCL扫描仪地址 (e.g. http://192.168.1.50:8080)")
	cmd.MarkFlagRequired("url")
	return cmd
}

// setupRegistry 装配CLI模式的后端与注册表
func setupRegistry() (*config.Config, backend.Backend, *registry.Registry, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	b := backend.Select(cfg.Scanner)
	return cfg, b, registry.New(b), nil
}

// cliFormat 解析输出格式，空值回退到配置默认
func cliFormat(cfg *config.Config) string {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(scanFormat), "."))
	if f == "" {
		f = cfg.Scanner.DefaultFormat
	}
	return f
}

// cliDestPath 生成CLI单次扫描的输出文件路径
func cliDestPath(cfg *config.Config, prefix string) string {
	dir := scanOutputDir
	if dir == "" {
		dir = cfg.Scanner.OutputDir
	}
	name := fmt.Sprintf("%s_%s_%s.%s",
		prefix, time.Now().Format("20060102_150405"), uuid.NewString()[:8], cliFormat(cfg))
	return filepath.Join(dir, name)
}
