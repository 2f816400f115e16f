package config

import (
	"fmt"

	"ragstack-deploy/internal/models"
)

// 各服务默认探活预算：ollama要下载模型，预算最大；milvus容器态检查很快通过
const (
	defaultContainerAttempts = 10
	defaultMilvusLogAttempts = 30
	defaultOllamaAttempts    = 60
	defaultRagAttempts       = 30
	defaultWebUIAttempts     = 20
)

/**
 * Build the ordered service registry for one deployment run
 * @param {*AppConfig} cfg - Validated application configuration
 * @returns {[]models.ServiceSpec} Descriptors in startup order
 * @description
 * - Order is fixed by dependency: vector store -> model server -> API -> UI
 * - Gate URLs and expected model tags are rendered from config once; the
 *   descriptors are read-only afterwards
 * - deploy.attempts.<name> overrides every gate budget of that service
 */
func Registry(cfg *AppConfig) []models.ServiceSpec {
	d := &cfg.Deploy
	specs := []models.ServiceSpec{
		{
			Name:      "milvus",
			Label:     "Milvus vector store",
			Dir:       "milvus",
			Container: "milvus-standalone",
			Port:      d.MilvusPort,
			Gates: []models.HealthGate{
				{Type: models.GateContainer, Attempts: defaultContainerAttempts},
				{Type: models.GateLogPattern, Pattern: "Proxy successfully started", Attempts: defaultMilvusLogAttempts},
			},
		},
		{
			Name:      "ollama",
			Label:     "Ollama model server",
			Dir:       "ollama",
			Container: "ollama",
			Port:      d.OllamaPort,
			// 启动后把两个模型拉到位，探活门槛随后确认它们出现在tag列表里
			PostStart: []models.CommandSpec{
				{Command: "docker", Args: []string{"exec", "ollama", "ollama", "pull", "{{.LLMModel}}"}},
				{Command: "docker", Args: []string{"exec", "ollama", "ollama", "pull", "{{.EmbedModel}}"}},
			},
			Gates: []models.HealthGate{
				{Type: models.GateContainer, Attempts: defaultContainerAttempts},
				{
					Type:     models.GateHTTPField,
					URL:      fmt.Sprintf("http://%s:%d/api/tags", d.OllamaHost, d.OllamaPort),
					Field:    "models",
					Key:      "name",
					Expect:   d.LLMModel,
					Attempts: defaultOllamaAttempts,
				},
				{
					Type:     models.GateHTTPField,
					URL:      fmt.Sprintf("http://%s:%d/api/tags", d.OllamaHost, d.OllamaPort),
					Field:    "models",
					Key:      "name",
					Expect:   d.EmbedModel,
					Attempts: defaultOllamaAttempts,
				},
			},
		},
		{
			Name:      "rag-server",
			Label:     "RAG API server",
			Dir:       "rag-server",
			Container: "rag-server",
			Port:      d.RagPort,
			Gates: []models.HealthGate{
				{
					Type:     models.GateHTTPStatus,
					URL:      fmt.Sprintf("http://127.0.0.1:%d/health", d.RagPort),
					Status:   200,
					Attempts: defaultRagAttempts,
				},
			},
		},
		{
			Name:      "web-ui",
			Label:     "Web front end",
			Dir:       "web-ui",
			Container: "web-ui",
			Port:      d.WebUIPort,
			Gates: []models.HealthGate{
				{
					Type:     models.GateHTTPStatus,
					URL:      fmt.Sprintf("http://127.0.0.1:%d/", d.WebUIPort),
					Status:   200,
					Attempts: defaultWebUIAttempts,
				},
			},
		},
	}

	for i := range specs {
		if budget, ok := d.Attempts[specs[i].Name]; ok && budget > 0 {
			for j := range specs[i].Gates {
				specs[i].Gates[j].Attempts = budget
			}
		}
	}
	return specs
}
