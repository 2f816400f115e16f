package config

import (
	"errors"
	"strings"
	"testing"

	"ragstack-deploy/internal/models"
)

func validConfig() *AppConfig {
	return &AppConfig{
		Deploy: DeployConfig{
			MilvusHost: "127.0.0.1", MilvusPort: 19530,
			OllamaHost: "127.0.0.1", OllamaPort: 11434,
			RagPort: 8000, WebUIPort: 3000,
			LLMModel:   "qwen2.5:7b",
			EmbedModel: "bge-m3:latest",
			ComposeDir: "deploy", ProbeInterval: 3, ProbeTimeout: 5,
		},
	}
}

/**
 * TestValidateMissingKeys 必填项缺失时一次性报出所有缺失键
 */
func TestValidateMissingKeys(t *testing.T) {
	cfg := validConfig()
	cfg.Deploy.LLMModel = ""
	cfg.Deploy.EmbedModel = ""

	err := Validate(cfg)
	var confErr *models.ConfigurationError
	if !errors.As(err, &confErr) {
		t.Fatalf("期望ConfigurationError, 实际=%v", err)
	}
	if len(confErr.Missing) != 2 {
		t.Fatalf("期望2个缺失键, 实际=%v", confErr.Missing)
	}
	for _, key := range []string{"deploy.llm_model", "deploy.embed_model"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("错误信息未包含缺失键%s: %s", key, err.Error())
		}
	}
}

func TestValidateComplete(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("完整配置不应报错: %v", err)
	}
}

/**
 * TestRegistryOrder 注册表顺序固定: 向量库→模型服务→API→前端
 */
func TestRegistryOrder(t *testing.T) {
	specs := Registry(validConfig())
	want := []string{"milvus", "ollama", "rag-server", "web-ui"}
	if len(specs) != len(want) {
		t.Fatalf("期望%d个服务, 实际=%d", len(want), len(specs))
	}
	for i, name := range want {
		if specs[i].Name != name {
			t.Errorf("位置%d期望%s, 实际=%s", i, name, specs[i].Name)
		}
		if len(specs[i].Gates) == 0 {
			t.Errorf("服务%s没有就绪门槛", name)
		}
	}
}

/**
 * TestRegistryGates 门槛参数来自配置渲染
 */
func TestRegistryGates(t *testing.T) {
	cfg := validConfig()
	cfg.Deploy.OllamaPort = 21434
	specs := Registry(cfg)

	var ollama *models.ServiceSpec
	for i := range specs {
		if specs[i].Name == "ollama" {
			ollama = &specs[i]
		}
	}
	if ollama == nil {
		t.Fatal("注册表缺少ollama")
	}

	foundLLM := false
	for _, gate := range ollama.Gates {
		if gate.Type == models.GateHTTPField {
			if !strings.Contains(gate.URL, ":21434") {
				t.Errorf("门槛URL未使用配置端口: %s", gate.URL)
			}
			if gate.Expect == cfg.Deploy.LLMModel {
				foundLLM = true
			}
		}
	}
	if !foundLLM {
		t.Error("缺少以llm_model为期望值的http-field门槛")
	}
}

/**
 * TestRegistryAttemptsOverride deploy.attempts覆盖服务的全部门槛预算
 */
func TestRegistryAttemptsOverride(t *testing.T) {
	cfg := validConfig()
	cfg.Deploy.Attempts = map[string]int{"ollama": 7}
	specs := Registry(cfg)

	for _, spec := range specs {
		for _, gate := range spec.Gates {
			if spec.Name == "ollama" && gate.Attempts != 7 {
				t.Errorf("ollama门槛预算应为7, 实际=%d", gate.Attempts)
			}
			if spec.Name != "ollama" && gate.Attempts == 7 {
				t.Errorf("其他服务%s的预算不应被覆盖", spec.Name)
			}
			if gate.Attempts <= 0 {
				t.Errorf("服务%s存在非法预算%d", spec.Name, gate.Attempts)
			}
		}
	}
}
