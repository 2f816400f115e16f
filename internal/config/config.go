package config

import (
	"strings"

	"ragstack-deploy/internal/models"

	"github.com/spf13/viper"
)

/**
 * Server configuration parameters
 * @property {string} address - Server listening address (e.g. ":8080")
 * @property {string} mode - Application mode (debug/release/test)
 */
type ServerConfig struct {
	Address string `mapstructure:"address"`
	Mode    string `mapstructure:"mode"`
}

/**
 * Logging configuration
 * @property {string} level - Log level (debug/info/warn/error)
 * @property {string} path - Log file path
 */
type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

/**
 * Metrics configuration
 * @property {string} pushgateway - Pushgateway address for metrics
 */
type MetricsConfig struct {
	Pushgateway string `mapstructure:"pushgateway"`
}

/**
 * Deployment configuration
 * @property {string} milvus_host - Milvus listening host
 * @property {int} milvus_port - Milvus gRPC port
 * @property {string} ollama_host - Ollama listening host
 * @property {int} ollama_port - Ollama HTTP port
 * @property {int} rag_port - RAG API server port
 * @property {int} webui_port - Web front end port
 * @property {string} llm_model - Chat model tag expected in ollama (required)
 * @property {string} embed_model - Embedding model tag expected in ollama (required)
 * @property {string} compose_dir - Root directory holding per-service compose projects
 * @property {int} probe_interval - Seconds between health probe attempts
 * @property {int} probe_timeout - Seconds allotted to a single probe request
 * @property {map[string]int} attempts - Per-service attempt budget overrides
 */
type DeployConfig struct {
	MilvusHost    string         `mapstructure:"milvus_host"`
	MilvusPort    int            `mapstructure:"milvus_port"`
	OllamaHost    string         `mapstructure:"ollama_host"`
	OllamaPort    int            `mapstructure:"ollama_port"`
	RagPort       int            `mapstructure:"rag_port"`
	WebUIPort     int            `mapstructure:"webui_port"`
	LLMModel      string         `mapstructure:"llm_model"`
	EmbedModel    string         `mapstructure:"embed_model"`
	ComposeDir    string         `mapstructure:"compose_dir"`
	ProbeInterval int            `mapstructure:"probe_interval"`
	ProbeTimeout  int            `mapstructure:"probe_timeout"`
	Attempts      map[string]int `mapstructure:"attempts"`
}

type AppConfig struct {
	Server ServerConfig  `mapstructure:"server"`
	Log    LogConfig     `mapstructure:"log"`
	Metric MetricsConfig `mapstructure:"metrics"`
	Deploy DeployConfig  `mapstructure:"deploy"`
}

/**
 * Load application configuration
 * @description
 * - Reads optional ragstack.yaml from the working directory
 * - Environment variables with prefix RAGSTACK_ override file values
 *   (RAGSTACK_DEPLOY_LLM_MODEL -> deploy.llm_model)
 * - Every key gets a documented default so env-only operation works
 */
func LoadConfig() (*AppConfig, error) {
	viper.SetConfigName("ragstack")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("RAGSTACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// 配置文件是可选的，缺失时仅用环境变量和默认值
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg AppConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults 注册所有配置键的默认值，必填项默认为空串，由Validate()检查
func setDefaults() {
	viper.SetDefault("server.address", ":8421")
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.path", "console")
	viper.SetDefault("metrics.pushgateway", "")
	viper.SetDefault("deploy.milvus_host", "127.0.0.1")
	viper.SetDefault("deploy.milvus_port", 19530)
	viper.SetDefault("deploy.ollama_host", "127.0.0.1")
	viper.SetDefault("deploy.ollama_port", 11434)
	viper.SetDefault("deploy.rag_port", 8000)
	viper.SetDefault("deploy.webui_port", 3000)
	viper.SetDefault("deploy.llm_model", "")
	viper.SetDefault("deploy.embed_model", "")
	viper.SetDefault("deploy.compose_dir", "deploy")
	viper.SetDefault("deploy.probe_interval", 3)
	viper.SetDefault("deploy.probe_timeout", 5)
}

/**
 * Validate deployment configuration
 * @param {*AppConfig} cfg - Loaded configuration
 * @returns {error} ConfigurationError naming every missing required key, nil when complete
 * @description
 * - Model tags cannot be defaulted: probing ollama for the wrong tag would
 *   never succeed, so their absence is fatal before any service is touched
 * - All missing keys are collected so the operator fixes them in one pass
 */
func Validate(cfg *AppConfig) error {
	var missing []string
	if cfg.Deploy.LLMModel == "" {
		missing = append(missing, "deploy.llm_model")
	}
	if cfg.Deploy.EmbedModel == "" {
		missing = append(missing, "deploy.embed_model")
	}
	if len(missing) > 0 {
		return &models.ConfigurationError{Missing: missing}
	}
	return nil
}

var Config AppConfig

func collectConfig(cfg *AppConfig) *AppConfig {
	if cfg.Deploy.ProbeInterval <= 0 {
		cfg.Deploy.ProbeInterval = 3
	}
	if cfg.Deploy.ProbeTimeout <= 0 {
		cfg.Deploy.ProbeTimeout = 5
	}
	return cfg
}

func init() {
	cfg, err := LoadConfig()
	if err == nil {
		Config = *cfg
	}
	collectConfig(&Config)
}
