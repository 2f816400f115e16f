package docker

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"ragstack-deploy/internal/logger"
)

/**
 * Runner executes an external command and captures combined output
 * @description
 * - The single seam between the orchestrator and the host; tests substitute
 *   a fake runner so no docker daemon is needed
 */
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (string, error)
}

// CLIRunner 直接调用本机docker CLI
type CLIRunner struct{}

func (CLIRunner) Run(ctx context.Context, dir string, name string, args ...string) (string, error) {
	logger.Infof("Executing command: %s %s", name, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return output, nil
}

/**
 * Client wraps the docker/compose invocations the orchestrator needs
 * @property {Runner} runner - Command executor
 * @property {string} composeDir - Root directory of per-service compose projects
 */
type Client struct {
	runner     Runner
	composeDir string
}

func NewClient(runner Runner, composeDir string) *Client {
	return &Client{runner: runner, composeDir: composeDir}
}

func (c *Client) projectDir(dir string) string {
	if c.composeDir == "" {
		return dir
	}
	return c.composeDir + "/" + dir
}

// ComposeBuild 构建一个服务的镜像
func (c *Client) ComposeBuild(ctx context.Context, dir string) (string, error) {
	return c.runner.Run(ctx, c.projectDir(dir), "docker", "compose", "build")
}

// ComposeUp 拉起一个服务，--force-recreate保证残留的旧实例被幂等地替换
func (c *Client) ComposeUp(ctx context.Context, dir string) (string, error) {
	return c.runner.Run(ctx, c.projectDir(dir), "docker", "compose", "up", "-d", "--force-recreate")
}

// ComposeStop 停止一个服务，已停止的服务stop是no-op
func (c *Client) ComposeStop(ctx context.Context, dir string) (string, error) {
	return c.runner.Run(ctx, c.projectDir(dir), "docker", "compose", "stop")
}

// ComposeRemove 强制清除一个服务的容器
func (c *Client) ComposeRemove(ctx context.Context, dir string) (string, error) {
	return c.runner.Run(ctx, c.projectDir(dir), "docker", "compose", "rm", "-f")
}

// ComposeDown 彻底拆除一个服务，withVolumes时连数据卷一起删除
func (c *Client) ComposeDown(ctx context.Context, dir string, withVolumes bool) (string, error) {
	args := []string{"compose", "down"}
	if withVolumes {
		args = append(args, "-v")
	}
	return c.runner.Run(ctx, c.projectDir(dir), "docker", args...)
}

/**
 * Check whether a container is in running state
 * @param {string} name - Container name
 * @returns {bool, error} Running flag; error when the container is unknown
 */
func (c *Client) ContainerRunning(ctx context.Context, name string) (bool, error) {
	out, err := c.runner.Run(ctx, "", "docker", "inspect", "-f", "{{.State.Running}}", name)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "true", nil
}

// ContainerLogs 读取容器最近的日志输出
func (c *Client) ContainerLogs(ctx context.Context, name string, tail int) (string, error) {
	return c.runner.Run(ctx, "", "docker", "logs", "--tail", fmt.Sprintf("%d", tail), name)
}

/**
 * Count how many of the given containers are currently running
 * @param {[]string} names - Expected container names
 * @returns {int} Number observed in running state
 * @description
 * - Inspect errors count as not running; the caller treats a shortfall as
 *   operator-facing drift, not as a failure
 */
func (c *Client) RunningCount(ctx context.Context, names []string) int {
	count := 0
	for _, name := range names {
		running, err := c.ContainerRunning(ctx, name)
		if err != nil {
			logger.Debugf("Container %s not inspectable: %v", name, err)
			continue
		}
		if running {
			count++
		}
	}
	return count
}

// Command 执行注册表声明的部署辅助命令（如在容器内拉取模型）
func (c *Client) Command(ctx context.Context, name string, args ...string) (string, error) {
	return c.runner.Run(ctx, "", name, args...)
}
