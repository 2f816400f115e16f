package main

import (
	_ "ragstack-deploy/cmd"
	"ragstack-deploy/cmd/root"
	"ragstack-deploy/internal/config"
	"ragstack-deploy/internal/logger"
	"os"
)

func main() {
	// 检查是否是服务器模式
	isServerMode := len(os.Args) > 1 && os.Args[1] == "serve"

	// 根据运行模式初始化日志系统
	logger.InitLoggerWithMode(&config.Config.Log, isServerMode)

	if err := root.RootCmd.Execute(); err != nil {
		logger.Fatal(err)
	}
	os.Exit(0)
}
