package health

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ragstack-deploy/internal/docker"
	"ragstack-deploy/internal/models"
)

// 日志门槛每次探测回看的日志行数
const logTailLines = 200

/**
 * Checker evaluates one readiness gate against the live service
 * @description
 * - A check returns nil when the gate passes; any error counts as a
 *   transient failure and the poller retries within the attempt budget
 * - The four variants form a closed set; the deployer never branches on
 *   gate internals
 */
type Checker interface {
	Type() models.GateType
	Check(ctx context.Context) error
}

/**
 * Build the checker for a gate
 * @param {models.HealthGate} gate - Gate declaration from the registry
 * @param {models.ServiceSpec} spec - Owning service, supplies the container name
 * @param {*docker.Client} dc - Docker client for container/log probes
 * @param {time.Duration} timeout - Budget of a single probe request
 * @returns {Checker, error} Checker instance, error on unknown gate type
 */
func NewChecker(gate models.HealthGate, spec models.ServiceSpec, dc *docker.Client, timeout time.Duration) (Checker, error) {
	switch gate.Type {
	case models.GateContainer:
		return &containerChecker{container: spec.Container, docker: dc}, nil
	case models.GateHTTPStatus:
		return &httpStatusChecker{url: gate.URL, status: gate.Status, timeout: timeout}, nil
	case models.GateHTTPField:
		return &httpFieldChecker{
			url: gate.URL, field: gate.Field, key: gate.Key, expect: gate.Expect, timeout: timeout,
		}, nil
	case models.GateLogPattern:
		return &logPatternChecker{container: spec.Container, pattern: gate.Pattern, docker: dc}, nil
	}
	return nil, fmt.Errorf("unknown gate type '%s' for service '%s'", gate.Type, spec.Name)
}

// containerChecker 容器处于running状态即通过
type containerChecker struct {
	container string
	docker    *docker.Client
}

func (c *containerChecker) Type() models.GateType { return models.GateContainer }

func (c *containerChecker) Check(ctx context.Context) error {
	running, err := c.docker.ContainerRunning(ctx, c.container)
	if err != nil {
		return fmt.Errorf("container '%s' not inspectable: %w", c.container, err)
	}
	if !running {
		return fmt.Errorf("container '%s' is not running", c.container)
	}
	return nil
}

// logPatternChecker 最近日志包含指定子串即通过
type logPatternChecker struct {
	container string
	pattern   string
	docker    *docker.Client
}

func (c *logPatternChecker) Type() models.GateType { return models.GateLogPattern }

func (c *logPatternChecker) Check(ctx context.Context) error {
	logs, err := c.docker.ContainerLogs(ctx, c.container, logTailLines)
	if err != nil {
		return fmt.Errorf("logs of container '%s' unavailable: %w", c.container, err)
	}
	if !strings.Contains(logs, c.pattern) {
		return fmt.Errorf("pattern '%s' not found in recent logs of '%s'", c.pattern, c.container)
	}
	return nil
}
