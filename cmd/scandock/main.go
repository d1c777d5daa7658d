/*
 * @author: Sun977
 * @date: 2025.11.26
 * @description: ScanDock 入口
 */

package main

func main() {
	Execute()
}
