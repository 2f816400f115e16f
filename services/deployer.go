package services

import (
	"context"
	"fmt"
	"time"

	"ragstack-deploy/internal/config"
	"ragstack-deploy/internal/docker"
	"ragstack-deploy/internal/health"
	"ragstack-deploy/internal/logger"
	"ragstack-deploy/internal/models"
)

// CheckerFactory 为一个门槛构造探测器，测试用假探测器替换
type CheckerFactory func(gate models.HealthGate, spec models.ServiceSpec) (health.Checker, error)

/**
 * Deployer drives the staged deployment state machine
 * @property {[]models.ServiceSpec} specs - Ordered service registry
 * @property {[]*models.ServiceRunState} states - Exclusively owned run records
 * @description
 * - Services are processed strictly in registry order; at most one service
 *   is ever in building/starting/probing, later services assume every
 *   earlier one is ready
 * - The first fatal failure halts forward progress and triggers rollback;
 *   services after the failing index never leave pending
 */
type Deployer struct {
	cfg      *config.AppConfig
	specs    []models.ServiceSpec
	launcher *Launcher
	docker   *docker.Client
	poller   *health.Poller
	checkers CheckerFactory
	rollback *RollbackHandler
	metrics  *DeployMetrics
	states   []*models.ServiceRunState
}

func NewDeployer(cfg *config.AppConfig, specs []models.ServiceSpec, dc *docker.Client) *Deployer {
	probeTimeout := time.Duration(cfg.Deploy.ProbeTimeout) * time.Second
	d := &Deployer{
		cfg:      cfg,
		specs:    specs,
		launcher: NewLauncher(dc, cfg),
		docker:   dc,
		poller:   health.NewPoller(time.Duration(cfg.Deploy.ProbeInterval) * time.Second),
		rollback: NewRollbackHandler(dc, specs),
		metrics:  GetDeployMetrics(),
	}
	d.checkers = func(gate models.HealthGate, spec models.ServiceSpec) (health.Checker, error) {
		return health.NewChecker(gate, spec, dc, probeTimeout)
	}
	for i, spec := range specs {
		d.states = append(d.states, &models.ServiceRunState{
			Name:    spec.Name,
			Ordinal: i,
			Phase:   models.PhasePending,
		})
	}
	return d
}

// States 返回运行记录切片，仅供只读快照使用
func (d *Deployer) States() []*models.ServiceRunState {
	return d.states
}

// Rollback 暴露回滚处理器，down命令复用
func (d *Deployer) Rollback() *RollbackHandler {
	return d.rollback
}

/**
 * Run the whole deployment
 * @param {context.Context} ctx - Cancelled on external interrupt
 * @returns {*models.DeploymentResult, error} Result aggregate and the
 *          terminal error of the run (nil on success)
 * @description
 * - On any failure or interrupt, rollback stops every service that reached
 *   at least starting state before the result is returned
 * - A successful run ends with a drift check: fewer running containers than
 *   expected is surfaced as a warning, never as a rollback trigger
 */
func (d *Deployer) Run(ctx context.Context) (*models.DeploymentResult, error) {
	result := &models.DeploymentResult{
		StartTime:   time.Now(),
		FailedIndex: -1,
	}

	var terminal error
	for i, spec := range d.specs {
		if err := d.deployService(ctx, i, spec); err != nil {
			terminal = err
			d.failRun(ctx, result, i, err)
			break
		}
	}

	if terminal == nil {
		result.Success = true
		d.verifyDeployment(ctx, result)
		logger.Infof("Deployment succeeded, %d services ready", len(d.specs))
	}

	result.EndTime = time.Now()
	for _, st := range d.states {
		result.Services = append(result.Services, *st)
	}
	d.metrics.RecordRun(result)
	return result, terminal
}

// deployService 推进单个服务 pending→building→starting→probing→ready
func (d *Deployer) deployService(ctx context.Context, i int, spec models.ServiceSpec) error {
	st := d.states[i]

	st.Phase = models.PhaseBuilding
	logger.Infof("Service [%s] (%d/%d) building", spec.Name, i+1, len(d.specs))
	phaseStart := time.Now()
	if err := d.launcher.Build(ctx, spec); err != nil {
		return err
	}
	d.metrics.ObservePhase(spec.Name, models.PhaseBuilding, time.Since(phaseStart))

	st.Phase = models.PhaseStarting
	st.StartTime = time.Now()
	phaseStart = time.Now()
	if err := d.launcher.Start(ctx, spec); err != nil {
		return err
	}
	d.metrics.ObservePhase(spec.Name, models.PhaseStarting, time.Since(phaseStart))

	st.Phase = models.PhaseProbing
	phaseStart = time.Now()
	for _, gate := range spec.Gates {
		checker, err := d.checkers(gate, spec)
		if err != nil {
			return err
		}
		used, err := d.poller.AwaitReady(ctx, spec.Name, gate, checker)
		st.Attempts += used
		d.metrics.AddAttempts(spec.Name, used)
		if err != nil {
			return err
		}
	}
	d.metrics.ObservePhase(spec.Name, models.PhaseProbing, time.Since(phaseStart))

	st.Phase = models.PhaseReady
	st.ReadyTime = time.Now()
	logger.Infof("Service [%s] ready after %d probe attempt(s)", spec.Name, st.Attempts)
	return nil
}

// failRun 记录首个致命错误并执行回滚；回滚自身的问题只进日志，不覆盖原始原因
func (d *Deployer) failRun(ctx context.Context, result *models.DeploymentResult, i int, cause error) {
	st := d.states[i]
	result.FailedIndex = i
	result.FailedPhase = st.Phase
	result.FailedError = cause.Error()
	if ctx.Err() != nil {
		result.Interrupted = true
		logger.Warnf("Deployment interrupted while service [%s] was in phase %s", st.Name, st.Phase)
	} else {
		logger.Errorf("Service [%s] failed in phase %s: %v", st.Name, st.Phase, cause)
	}
	st.Phase = models.PhaseFailed
	st.LastError = cause.Error()

	// 所有到达过starting的服务都要回收，包括当前失败的这个
	result.Rollback = d.rollback.Execute(d.launchedSpecs(i))
}

// launchedSpecs 返回本次运行中到达过starting阶段的服务
func (d *Deployer) launchedSpecs(failedIndex int) []models.ServiceSpec {
	var launched []models.ServiceSpec
	for i := 0; i <= failedIndex && i < len(d.specs); i++ {
		if !d.states[i].StartTime.IsZero() {
			launched = append(launched, d.specs[i])
		}
	}
	return launched
}

/**
 * Post-deployment consistency check
 * @description
 * - Compares externally observed running containers against the expected
 *   count; a shortfall at this stage means late external drift and is
 *   reported to the operator as a warning only (availability over
 *   strictness), never auto-remediated
 */
func (d *Deployer) verifyDeployment(ctx context.Context, result *models.DeploymentResult) {
	var containers []string
	for _, spec := range d.specs {
		containers = append(containers, spec.Container)
	}
	running := d.docker.RunningCount(ctx, containers)
	if running < len(containers) {
		result.Warning = fmt.Sprintf(
			"post-deployment drift: %d of %d expected containers observed running",
			running, len(containers))
		logger.Warn(result.Warning)
	}
}
