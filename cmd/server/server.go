package server

import (
	"context"
	"fmt"

	"ragstack-deploy/cmd/root"
	"ragstack-deploy/controllers"
	"ragstack-deploy/internal/config"
	"ragstack-deploy/internal/docker"
	"ragstack-deploy/internal/middleware"
	"ragstack-deploy/services"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动部署观察HTTP服务",
	Long:  `serve提供只读HTTP接口：最近一次部署结果、各服务即时健康状态、prometheus指标，并周期性复查已部署服务`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := startServer(context.Background()); err != nil {
			fmt.Println(err)
		}
	},
}

func startServer(ctx context.Context) error {
	cfg := &config.Config
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	specs := config.Registry(cfg)
	dc := docker.NewClient(docker.CLIRunner{}, cfg.Deploy.ComposeDir)
	monitor := services.NewMonitor(cfg, specs, dc)

	// 注册API路由
	router := gin.Default()
	router.Use(middleware.MetricsMiddleware())
	apiController := controllers.NewAPIController(monitor)
	apiController.RegisterRoutes(router)

	// 周期性复查已部署服务
	go monitor.StartMonitoring(ctx)

	return router.Run(cfg.Server.Address)
}

func init() {
	root.RootCmd.AddCommand(serveCmd)
}
