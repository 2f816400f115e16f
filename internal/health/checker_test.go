package health

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ragstack-deploy/internal/docker"
	"ragstack-deploy/internal/models"
)

// fakeRunner 按命令内容返回预设输出
type fakeRunner struct {
	outputs map[string]string
	fail    map[string]bool
}

func (r *fakeRunner) Run(ctx context.Context, dir string, name string, args ...string) (string, error) {
	key := name + " " + strings.Join(args, " ")
	if r.fail[key] {
		return "", fmt.Errorf("command failed: %s", key)
	}
	return r.outputs[key], nil
}

func TestHTTPStatusChecker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	checker := &httpStatusChecker{url: server.URL + "/health", status: 200, timeout: time.Second}
	if err := checker.Check(context.Background()); err != nil {
		t.Errorf("健康端点返回200应当通过: %v", err)
	}

	checker = &httpStatusChecker{url: server.URL + "/other", status: 200, timeout: time.Second}
	if err := checker.Check(context.Background()); err == nil {
		t.Error("状态码不匹配时应当失败")
	}
}

/**
 * TestHTTPFieldChecker 验证JSON字段匹配策略
 * @description
 * - 模拟ollama的GET /api/tags响应，models列表里有目标tag时通过
 * - 目标tag缺失、字段缺失时失败
 */
func TestHTTPFieldChecker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"models":[{"name":"qwen2.5:7b"},{"name":"bge-m3:latest"}]}`)
	}))
	defer server.Close()

	checker := &httpFieldChecker{
		url: server.URL, field: "models", key: "name", expect: "qwen2.5:7b", timeout: time.Second,
	}
	if err := checker.Check(context.Background()); err != nil {
		t.Errorf("目标模型在列表中应当通过: %v", err)
	}

	checker.expect = "llama3:70b"
	if err := checker.Check(context.Background()); err == nil {
		t.Error("目标模型不在列表中应当失败")
	}

	checker.field = "tags"
	if err := checker.Check(context.Background()); err == nil {
		t.Error("字段缺失应当失败")
	}
}

func TestHTTPFieldCheckerStringList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"models":["qwen2.5:7b"]}`)
	}))
	defer server.Close()

	checker := &httpFieldChecker{
		url: server.URL, field: "models", expect: "qwen2.5:7b", timeout: time.Second,
	}
	if err := checker.Check(context.Background()); err != nil {
		t.Errorf("字符串列表同样应当支持: %v", err)
	}
}

func TestContainerChecker(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]string{
			"docker inspect -f {{.State.Running}} milvus-standalone": "true",
			"docker inspect -f {{.State.Running}} ollama":            "false",
		},
		fail: map[string]bool{
			"docker inspect -f {{.State.Running}} web-ui": true,
		},
	}
	dc := docker.NewClient(runner, "deploy")

	checker := &containerChecker{container: "milvus-standalone", docker: dc}
	if err := checker.Check(context.Background()); err != nil {
		t.Errorf("running容器应当通过: %v", err)
	}

	checker = &containerChecker{container: "ollama", docker: dc}
	if err := checker.Check(context.Background()); err == nil {
		t.Error("非running容器应当失败")
	}

	checker = &containerChecker{container: "web-ui", docker: dc}
	if err := checker.Check(context.Background()); err == nil {
		t.Error("容器不存在应当失败")
	}
}

func TestLogPatternChecker(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]string{
			"docker logs --tail 200 milvus-standalone": "init done\nProxy successfully started\nserving",
		},
	}
	dc := docker.NewClient(runner, "deploy")

	checker := &logPatternChecker{container: "milvus-standalone", pattern: "Proxy successfully started", docker: dc}
	if err := checker.Check(context.Background()); err != nil {
		t.Errorf("日志包含目标子串应当通过: %v", err)
	}

	checker.pattern = "Ready to accept connections"
	if err := checker.Check(context.Background()); err == nil {
		t.Error("日志缺少目标子串应当失败")
	}
}

/**
 * TestNewChecker 工厂覆盖全部四种策略，未知类型报错
 */
func TestNewChecker(t *testing.T) {
	dc := docker.NewClient(&fakeRunner{}, "deploy")
	spec := models.ServiceSpec{Name: "ollama", Container: "ollama"}

	gateTypes := []models.GateType{
		models.GateContainer, models.GateHTTPStatus, models.GateHTTPField, models.GateLogPattern,
	}
	for _, gt := range gateTypes {
		checker, err := NewChecker(models.HealthGate{Type: gt}, spec, dc, time.Second)
		if err != nil {
			t.Errorf("策略%s构造失败: %v", gt, err)
			continue
		}
		if checker.Type() != gt {
			t.Errorf("策略类型不匹配: 期望=%s, 实际=%s", gt, checker.Type())
		}
	}

	if _, err := NewChecker(models.HealthGate{Type: "tcp-magic"}, spec, dc, time.Second); err == nil {
		t.Error("未知策略类型应当报错")
	}
}
