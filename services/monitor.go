package services

import (
	"context"
	"time"

	"ragstack-deploy/internal/config"
	"ragstack-deploy/internal/docker"
	"ragstack-deploy/internal/health"
	"ragstack-deploy/internal/logger"
	"ragstack-deploy/internal/models"
)

// serve模式下周期性复查的间隔
const monitorInterval = 1 * time.Minute

/**
 * Monitor evaluates the live health of deployed services
 * @description
 * - Reuses the same gate checkers as the deployer but evaluates each gate
 *   exactly once per check, without polling: this is observation, not
 *   deployment, so there is no attempt budget to spend
 */
type Monitor struct {
	specs    []models.ServiceSpec
	checkers CheckerFactory
}

func NewMonitor(cfg *config.AppConfig, specs []models.ServiceSpec, dc *docker.Client) *Monitor {
	probeTimeout := time.Duration(cfg.Deploy.ProbeTimeout) * time.Second
	return &Monitor{
		specs: specs,
		checkers: func(gate models.HealthGate, spec models.ServiceSpec) (health.Checker, error) {
			return health.NewChecker(gate, spec, dc, probeTimeout)
		},
	}
}

/**
 * Check every service's gates once
 * @returns {*models.CheckResponse} Per-service results plus the aggregate
 */
func (m *Monitor) Check(ctx context.Context) *models.CheckResponse {
	response := &models.CheckResponse{
		Timestamp:     time.Now().Format(time.RFC3339),
		OverallStatus: "healthy",
	}

	for _, spec := range m.specs {
		result := models.ServiceCheckResult{Name: spec.Name, Label: spec.Label, Healthy: true}
		for _, gate := range spec.Gates {
			response.TotalChecks++
			checker, err := m.checkers(gate, spec)
			if err == nil {
				err = checker.Check(ctx)
			}
			if err != nil {
				response.FailedChecks++
				result.Healthy = false
				result.Gate = string(gate.Type)
				result.Detail = err.Error()
				break
			}
			response.PassedChecks++
		}
		if !result.Healthy {
			response.OverallStatus = "unhealthy"
		}
		response.Services = append(response.Services, result)
	}
	return response
}

// StartMonitoring 周期性复查所有服务并记录异常，serve模式下以协程运行
func (m *Monitor) StartMonitoring(ctx context.Context) {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			response := m.Check(ctx)
			for _, svc := range response.Services {
				if !svc.Healthy {
					logger.Warnf("Monitor: service [%s] unhealthy (gate %s): %s",
						svc.Name, svc.Gate, svc.Detail)
				}
			}
		}
	}
}
