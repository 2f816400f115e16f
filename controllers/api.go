package controllers

import (
	"net/http"
	"os"
	"time"

	"ragstack-deploy/internal/models"
	"ragstack-deploy/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

/**
 * APIController exposes the read-only observation API of a deployment
 * @property {*services.Monitor} monitor - Live health evaluation
 * @description
 * - The API observes; it never mutates deployment state. Launch and
 *   teardown stay with the CLI commands
 */
type APIController struct {
	monitor   *services.Monitor
	startTime time.Time
}

func NewAPIController(monitor *services.Monitor) *APIController {
	return &APIController{
		monitor:   monitor,
		startTime: time.Now(),
	}
}

/**
 * Register all API routes to Gin engine
 * @param {*gin.Engine} r - Gin router instance
 */
func (a *APIController) RegisterRoutes(r *gin.Engine) {
	r.GET("/ragstack/api/v1/deployment", a.GetDeployment)
	r.GET("/ragstack/api/v1/services", a.GetServices)
	r.POST("/ragstack/api/v1/check", a.Check)
	r.GET("/healthz", a.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// @Summary 查询最近一次部署结果
// @Description 返回最近一次部署运行的完整结果记录
// @Tags Deployment
// @Produce json
// @Success 200 {object} models.DeploymentResult
// @Failure 404 {object} models.ErrorResponse
// @Router /ragstack/api/v1/deployment [get]
func (a *APIController) GetDeployment(c *gin.Context) {
	result, err := services.LoadResult()
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Code:  "deployment.not_found",
				Error: "no deployment has been recorded yet",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:  "deployment.load_failed",
			Error: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary 查询各服务即时健康状态
// @Description 对每个服务的就绪门槛各执行一次检查并返回结果
// @Tags Services
// @Produce json
// @Success 200 {object} models.CheckResponse
// @Router /ragstack/api/v1/services [get]
func (a *APIController) GetServices(c *gin.Context) {
	c.JSON(http.StatusOK, a.monitor.Check(c.Request.Context()))
}

// @Summary 执行全栈健康检查
// @Description 立即检查全部服务的就绪门槛，返回逐服务结果与总体状态
// @Tags System
// @Produce json
// @Success 200 {object} models.CheckResponse
// @Router /ragstack/api/v1/check [post]
func (a *APIController) Check(c *gin.Context) {
	c.JSON(http.StatusOK, a.monitor.Check(c.Request.Context()))
}

// @Summary 观察进程自身的存活探针
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /healthz [get]
func (a *APIController) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "UP",
		"startTime": a.startTime.Format(time.RFC3339),
		"uptime":    time.Since(a.startTime).Round(time.Second).String(),
	})
}
