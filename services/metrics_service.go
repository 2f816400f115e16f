package services

import (
	"time"

	"ragstack-deploy/internal/logger"
	"ragstack-deploy/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	deployTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ragstack_deployments_total",
			Help: "Total deployment runs by outcome",
		},
		[]string{"outcome"},
	)

	probeAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ragstack_probe_attempts_total",
			Help: "Health probe attempts per service",
		},
		[]string{"service"},
	)

	phaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ragstack_phase_duration_seconds",
			Help:    "Duration of deployment phases per service",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
		[]string{"service", "phase"},
	)
)

var (
	requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ragstack_api_requests_total",
			Help: "Total observation API requests",
		},
		[]string{"path"},
	)

	errorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ragstack_api_errors_total",
			Help: "Observation API requests answered with status >= 400",
		},
		[]string{"path"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ragstack_api_request_duration_seconds",
			Help:    "Duration of observation API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)

func init() {
	prometheus.MustRegister(deployTotal)
	prometheus.MustRegister(probeAttempts)
	prometheus.MustRegister(phaseDuration)
	prometheus.MustRegister(requestCount)
	prometheus.MustRegister(errorCount)
	prometheus.MustRegister(requestDuration)
}

func IncrementRequestCount(path string) {
	requestCount.WithLabelValues(path).Inc()
}

func IncrementErrorCount(path string) {
	errorCount.WithLabelValues(path).Inc()
}

func RecordRequestDuration(path string, seconds float64) {
	requestDuration.WithLabelValues(path).Observe(seconds)
}

// DeployMetrics 部署过程的指标采集
type DeployMetrics struct{}

var deployMetrics *DeployMetrics

func GetDeployMetrics() *DeployMetrics {
	if deployMetrics == nil {
		deployMetrics = &DeployMetrics{}
	}
	return deployMetrics
}

func (m *DeployMetrics) ObservePhase(service string, phase models.ServicePhase, d time.Duration) {
	phaseDuration.WithLabelValues(service, string(phase)).Observe(d.Seconds())
}

func (m *DeployMetrics) AddAttempts(service string, n int) {
	if n > 0 {
		probeAttempts.WithLabelValues(service).Add(float64(n))
	}
}

func (m *DeployMetrics) RecordRun(result *models.DeploymentResult) {
	outcome := "failed"
	if result.Success {
		outcome = "succeeded"
	} else if result.Interrupted {
		outcome = "interrupted"
	}
	deployTotal.WithLabelValues(outcome).Inc()
}

/**
 * Push collected metrics to the configured pushgateway
 * @param {string} gateway - Pushgateway address, empty disables pushing
 * @description
 * - One-shot push after a run; a push failure is logged and swallowed, the
 *   deployment outcome never depends on the metrics pipeline
 */
func (m *DeployMetrics) Push(gateway string) {
	if gateway == "" {
		return
	}
	err := push.New(gateway, "ragstack_deploy").
		Collector(deployTotal).
		Collector(probeAttempts).
		Collector(phaseDuration).
		Push()
	if err != nil {
		logger.Warnf("Metrics push to %s failed: %v", gateway, err)
		return
	}
	logger.Infof("Metrics pushed to %s", gateway)
}
