package models

import "time"

type ServicePhase string

const (
	// 尚未轮到该服务，前置服务未全部就绪
	PhasePending ServicePhase = "pending"
	// 正在构建镜像/产物
	PhaseBuilding ServicePhase = "building"
	// 正在拉起容器组
	PhaseStarting ServicePhase = "starting"
	// 容器已拉起，正在轮询就绪探针
	PhaseProbing ServicePhase = "probing"
	// 全部就绪门槛通过，可以部署下一个服务
	PhaseReady ServicePhase = "ready"
	// 构建/启动/探活任一环节失败，整个部署转入回滚
	PhaseFailed ServicePhase = "failed"
)

// Terminal 返回该阶段是否为终态
func (p ServicePhase) Terminal() bool {
	return p == PhaseReady || p == PhaseFailed
}

/**
 * Per-service mutable run record, owned exclusively by the deployer
 * @property {string} name - Service name
 * @property {ServicePhase} phase - Current lifecycle phase
 * @property {int} attempts - Health probe attempts consumed so far
 * @property {string} lastError - Last error text, empty while healthy
 */
type ServiceRunState struct {
	Name      string       `json:"name"`
	Ordinal   int          `json:"ordinal"`
	Phase     ServicePhase `json:"phase"`
	Attempts  int          `json:"attempts"`
	LastError string       `json:"lastError,omitempty"`
	StartTime time.Time    `json:"startTime,omitempty"`
	ReadyTime time.Time    `json:"readyTime,omitempty"`
}

/**
 * Service descriptor: one deployable compose unit
 * @property {string} name - Service name, also the compose project name
 * @property {string} label - Human readable label for terminal output
 * @property {string} dir - Compose project directory relative to deploy.compose_dir
 * @property {string} container - Primary container name for state/log probes
 * @property {int} port - Primary published host port, 0 if none
 * @property {[]HealthGate} gates - Readiness gates, evaluated in fixed order
 * @description
 * - Descriptors are created once by the registry and never mutated
 * - Slice position in the registry is the startup ordinal; later services
 *   assume every earlier one is ready
 */
type ServiceSpec struct {
	Name      string        `json:"name"`
	Label     string        `json:"label"`
	Dir       string        `json:"dir"`
	Container string        `json:"container"`
	Port      int           `json:"port,omitempty"`
	PostStart []CommandSpec `json:"postStart,omitempty"`
	Gates     []HealthGate  `json:"gates"`
}

// CommandSpec 声明式命令模板，渲染数据来自部署配置
type CommandSpec struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}
