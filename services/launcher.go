package services

import (
	"context"

	"ragstack-deploy/internal/config"
	"ragstack-deploy/internal/docker"
	"ragstack-deploy/internal/logger"
	"ragstack-deploy/internal/models"
	"ragstack-deploy/internal/utils"
)

// 诊断信息里保留的命令输出末尾长度
const diagnosticTail = 600

/**
 * Launcher builds and starts one service at a time
 * @property {*docker.Client} docker - Compose/CLI access
 * @property {*config.AppConfig} cfg - Deployment configuration for templates
 * @description
 * - Build and start are separate observable steps with distinct error types;
 *   neither is ever retried inside one run
 * - Start recreates any stale instance of the same service so leftover
 *   containers cannot confuse the health probes
 */
type Launcher struct {
	docker *docker.Client
	cfg    *config.AppConfig
}

func NewLauncher(dc *docker.Client, cfg *config.AppConfig) *Launcher {
	return &Launcher{docker: dc, cfg: cfg}
}

/**
 * Build the service's runnable artifact
 * @param {models.ServiceSpec} spec - Service descriptor
 * @returns {error} BuildError with the output tail on failure
 */
func (l *Launcher) Build(ctx context.Context, spec models.ServiceSpec) error {
	out, err := l.docker.ComposeBuild(ctx, spec.Dir)
	if err != nil {
		return &models.BuildError{Service: spec.Name, Diagnostic: diagnostic(out, err)}
	}
	logger.Infof("Service [%s] built", spec.Name)
	return nil
}

/**
 * Start the built artifact and run declared post-start commands
 * @param {models.ServiceSpec} spec - Service descriptor
 * @returns {error} StartError with the output tail on failure
 * @description
 * - Post-start command templates are rendered with the deployment
 *   configuration (model tags, ports) before execution
 */
func (l *Launcher) Start(ctx context.Context, spec models.ServiceSpec) error {
	out, err := l.docker.ComposeUp(ctx, spec.Dir)
	if err != nil {
		return &models.StartError{Service: spec.Name, Diagnostic: diagnostic(out, err)}
	}

	for _, cs := range spec.PostStart {
		name, args, err := utils.GetCommandLine(cs.Command, cs.Args, l.cfg.Deploy)
		if err != nil {
			return &models.StartError{Service: spec.Name, Diagnostic: err.Error()}
		}
		if out, err := l.docker.Command(ctx, name, args...); err != nil {
			return &models.StartError{Service: spec.Name, Diagnostic: diagnostic(out, err)}
		}
	}

	logger.Infof("Service [%s] started", spec.Name)
	return nil
}

// diagnostic 把命令输出压缩成适合放进错误记录的末尾片段
func diagnostic(out string, err error) string {
	if out == "" {
		return err.Error()
	}
	if len(out) > diagnosticTail {
		out = "..." + out[len(out)-diagnosticTail:]
	}
	return err.Error() + ": " + out
}
