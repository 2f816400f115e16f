package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ragstack-deploy/internal/config"
	"ragstack-deploy/internal/docker"
	"ragstack-deploy/internal/logger"
	"ragstack-deploy/internal/models"
)

// fakeRunner 模拟docker CLI：记录全部调用，按子串匹配注入失败，维护容器运行状态
type fakeRunner struct {
	calls   []string
	failOn  map[string]bool
	running map[string]bool
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		failOn:  map[string]bool{},
		running: map[string]bool{},
	}
}

func (r *fakeRunner) Run(ctx context.Context, dir string, name string, args ...string) (string, error) {
	call := dir + "|" + name + " " + strings.Join(args, " ")
	r.calls = append(r.calls, call)

	for key, fail := range r.failOn {
		if fail && strings.Contains(call, key) {
			return "stage error output", errors.New("exit status 1")
		}
	}
	if strings.Contains(call, "docker inspect") {
		container := args[len(args)-1]
		if r.running[container] {
			return "true", nil
		}
		return "false", nil
	}
	return "", nil
}

func (r *fakeRunner) countCalls(substr string) int {
	n := 0
	for _, call := range r.calls {
		if strings.Contains(call, substr) {
			n++
		}
	}
	return n
}

// instantSleeper 不产生真实延迟
type instantSleeper struct{}

func (instantSleeper) Sleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

// cancelSleeper 第一次睡眠时触发取消，模拟探活期间收到外部中断
type cancelSleeper struct {
	cancel context.CancelFunc
}

func (s *cancelSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.cancel()
	return ctx.Err()
}

// 四个服务各带一个容器态门槛，预算3次
func testSpecs() []models.ServiceSpec {
	names := []string{"milvus", "ollama", "rag-server", "web-ui"}
	var specs []models.ServiceSpec
	for _, name := range names {
		specs = append(specs, models.ServiceSpec{
			Name:      name,
			Label:     name,
			Dir:       name,
			Container: name,
			Gates: []models.HealthGate{
				{Type: models.GateContainer, Attempts: 3},
			},
		})
	}
	return specs
}

func newTestDeployer(runner *fakeRunner, specs []models.ServiceSpec) *Deployer {
	logger.InitConsoleLogger("error")
	cfg := &config.AppConfig{
		Deploy: config.DeployConfig{ComposeDir: "deploy", ProbeInterval: 1, ProbeTimeout: 1},
	}
	d := NewDeployer(cfg, specs, docker.NewClient(runner, "deploy"))
	d.poller.Sleeper = instantSleeper{}
	return d
}

/**
 * TestDeployAllReady 场景：4个服务全部一次通过
 * @description
 * - 结果success为true，4条ready记录且保持声明顺序
 * - 每个服务恰好消耗1次探测尝试
 */
func TestDeployAllReady(t *testing.T) {
	runner := newFakeRunner()
	for _, name := range []string{"milvus", "ollama", "rag-server", "web-ui"} {
		runner.running[name] = true
	}
	d := newTestDeployer(runner, testSpecs())

	result, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("部署不应失败: %v", err)
	}
	if !result.Success {
		t.Fatal("结果应为成功")
	}
	if len(result.Services) != 4 {
		t.Fatalf("期望4条记录, 实际=%d", len(result.Services))
	}
	want := []string{"milvus", "ollama", "rag-server", "web-ui"}
	for i, svc := range result.Services {
		if svc.Name != want[i] {
			t.Errorf("顺序错误: 位置%d期望%s, 实际=%s", i, want[i], svc.Name)
		}
		if svc.Phase != models.PhaseReady {
			t.Errorf("服务%s期望ready, 实际=%s", svc.Name, svc.Phase)
		}
		if svc.Attempts != 1 {
			t.Errorf("服务%s首次探测即通过应恰好1次尝试, 实际=%d", svc.Name, svc.Attempts)
		}
	}
	if result.Warning != "" {
		t.Errorf("全部在运行时不应有漂移警告: %s", result.Warning)
	}
	if runner.countCalls("compose stop") != 0 {
		t.Error("成功的部署不应触发回滚")
	}
}

/**
 * TestDeployBuildFailure 场景：第3个服务构建失败
 * @description
 * - 服务1-2到达ready，服务3为failed(BuildError)，服务4保持pending
 * - 回滚只停止到达过starting的服务1-2，退出码类别为构建失败
 */
func TestDeployBuildFailure(t *testing.T) {
	runner := newFakeRunner()
	runner.running["milvus"] = true
	runner.running["ollama"] = true
	runner.failOn["deploy/rag-server|docker compose build"] = true
	d := newTestDeployer(runner, testSpecs())

	result, err := d.Run(context.Background())
	var buildErr *models.BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("期望BuildError, 实际=%v", err)
	}
	if models.ExitCode(err) != models.ExitBuild {
		t.Errorf("期望构建失败退出码%d, 实际=%d", models.ExitBuild, models.ExitCode(err))
	}
	if result.Success {
		t.Fatal("结果不应为成功")
	}
	if result.FailedIndex != 2 {
		t.Errorf("失败下标期望2, 实际=%d", result.FailedIndex)
	}
	if result.FailedPhase != models.PhaseBuilding {
		t.Errorf("失败阶段期望building, 实际=%s", result.FailedPhase)
	}

	phases := map[string]models.ServicePhase{}
	for _, svc := range result.Services {
		phases[svc.Name] = svc.Phase
	}
	if phases["milvus"] != models.PhaseReady || phases["ollama"] != models.PhaseReady {
		t.Errorf("前两个服务应为ready: %v", phases)
	}
	if phases["rag-server"] != models.PhaseFailed {
		t.Errorf("rag-server应为failed: %v", phases)
	}
	if phases["web-ui"] != models.PhasePending {
		t.Errorf("失败下标之后的服务必须保持pending: %v", phases)
	}

	if result.Rollback == nil {
		t.Fatal("失败的部署必须记录回滚")
	}
	if len(result.Rollback.Stopped) != 2 {
		t.Errorf("回滚应停止2个服务, 实际=%v", result.Rollback.Stopped)
	}
	// 构建失败的服务从未启动，不在回滚范围内
	if runner.countCalls("deploy/rag-server|docker compose stop") != 0 {
		t.Error("未启动的服务不应被回滚停止")
	}
}

/**
 * TestDeployHealthTimeout 场景：第2个服务探活超时
 * @description
 * - HealthTimeoutError记录的attemptsUsed等于预算
 * - 回滚按逆序停止服务2和服务1
 */
func TestDeployHealthTimeout(t *testing.T) {
	runner := newFakeRunner()
	runner.running["milvus"] = true
	// ollama容器始终不进入running
	d := newTestDeployer(runner, testSpecs())

	result, err := d.Run(context.Background())
	var timeoutErr *models.HealthTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("期望HealthTimeoutError, 实际=%v", err)
	}
	if timeoutErr.AttemptsUsed != 3 {
		t.Errorf("attemptsUsed期望等于预算3, 实际=%d", timeoutErr.AttemptsUsed)
	}
	if models.ExitCode(err) != models.ExitHealth {
		t.Errorf("期望探活超时退出码%d, 实际=%d", models.ExitHealth, models.ExitCode(err))
	}
	if result.FailedIndex != 1 || result.FailedPhase != models.PhaseProbing {
		t.Errorf("失败位置错误: index=%d phase=%s", result.FailedIndex, result.FailedPhase)
	}

	// 到达过starting的服务都要停止，包括超时的ollama自身
	if len(result.Rollback.Stopped) != 2 {
		t.Fatalf("回滚应停止2个服务, 实际=%v", result.Rollback.Stopped)
	}
	if result.Rollback.Stopped[0] != "ollama" || result.Rollback.Stopped[1] != "milvus" {
		t.Errorf("回滚必须按启动的逆序执行: %v", result.Rollback.Stopped)
	}
}

/**
 * TestDeployInterrupt 场景：服务2探活期间收到外部中断
 * @description
 * - 结果标记interrupted，回滚覆盖服务1和尚未就绪的服务2
 * - 服务3、4保持pending
 */
func TestDeployInterrupt(t *testing.T) {
	runner := newFakeRunner()
	runner.running["milvus"] = true
	d := newTestDeployer(runner, testSpecs())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.poller.Sleeper = &cancelSleeper{cancel: cancel}

	result, err := d.Run(ctx)
	if err == nil {
		t.Fatal("中断的部署应返回错误")
	}
	if !result.Interrupted {
		t.Fatal("结果应标记为interrupted")
	}
	if len(result.Rollback.Stopped) != 2 {
		t.Errorf("回滚应停止服务1和2, 实际=%v", result.Rollback.Stopped)
	}
	phases := map[string]models.ServicePhase{}
	for _, svc := range result.Services {
		phases[svc.Name] = svc.Phase
	}
	if phases["rag-server"] != models.PhasePending || phases["web-ui"] != models.PhasePending {
		t.Errorf("中断后后续服务必须保持pending: %v", phases)
	}
}

/**
 * TestRollbackIdempotent 重复调用回滚不产生额外副作用
 */
func TestRollbackIdempotent(t *testing.T) {
	runner := newFakeRunner()
	runner.running["milvus"] = true
	d := newTestDeployer(runner, testSpecs())

	result, _ := d.Run(context.Background())
	if result.Rollback == nil {
		t.Fatal("前置条件：部署失败且已回滚")
	}
	stopsBefore := runner.countCalls("compose stop")

	again := d.rollback.Execute(d.launchedSpecs(1))
	if again != result.Rollback {
		t.Error("重复回滚应返回首次的记录")
	}
	if runner.countCalls("compose stop") != stopsBefore {
		t.Error("重复回滚不应再执行任何停止操作")
	}
}

/**
 * TestDeployDriftWarning 成功后外部漂移只产生警告，不回滚
 */
func TestDeployDriftWarning(t *testing.T) {
	runner := newFakeRunner()
	specs := testSpecs()
	// 门槛全部放行，但最终一致性检查时web-ui已不在运行
	for _, name := range []string{"milvus", "ollama", "rag-server"} {
		runner.running[name] = true
	}
	specs[3].Gates = []models.HealthGate{} // web-ui无门槛，直接ready
	d := newTestDeployer(runner, specs)

	result, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("漂移不应导致失败: %v", err)
	}
	if !result.Success {
		t.Fatal("漂移时结果仍应为成功")
	}
	if result.Warning == "" {
		t.Error("应产生漂移警告")
	}
	if runner.countCalls("compose stop") != 0 {
		t.Error("漂移不应触发回滚")
	}
}

/**
 * TestTearDownReset reset时连同数据卷一起删除
 */
func TestTearDownReset(t *testing.T) {
	logger.InitConsoleLogger("error")
	runner := newFakeRunner()
	handler := NewRollbackHandler(docker.NewClient(runner, "deploy"), testSpecs())

	record := handler.TearDown(true)
	if len(record.Stopped) != 4 {
		t.Errorf("应拆除全部4个服务, 实际=%v", record.Stopped)
	}
	if runner.countCalls("compose down -v") != 4 {
		t.Errorf("reset应为每个服务执行down -v, 实际=%d", runner.countCalls("compose down -v"))
	}
	// 逆序
	if !strings.Contains(runner.calls[0], "web-ui") {
		t.Errorf("拆除应从最后启动的服务开始: %s", runner.calls[0])
	}
}
