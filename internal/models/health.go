package models

type GateType string

const (
	// 容器处于running状态即视为通过
	GateContainer GateType = "container"
	// HTTP响应状态码等于期望值即视为通过
	GateHTTPStatus GateType = "http-status"
	// HTTP响应JSON中指定数组字段包含期望值即视为通过
	GateHTTPField GateType = "http-field"
	// 最近日志输出包含指定子串即视为通过
	GateLogPattern GateType = "log-pattern"
)

/**
 * One readiness gate of a service
 * @property {GateType} type - Probe strategy, a closed set of four variants
 * @property {string} url - Probe URL (http-status / http-field)
 * @property {int} status - Expected status code (http-status)
 * @property {string} field - JSON array field holding candidate values (http-field)
 * @property {string} key - Object key compared inside each array element (http-field)
 * @property {string} expect - Value expected in the array (http-field)
 * @property {string} pattern - Substring expected in recent logs (log-pattern)
 * @property {int} attempts - Attempt budget for this gate
 * @description
 * - Exactly one strategy per gate; a service lists gates in fixed order and
 *   every gate must pass before the service counts as ready
 * - Gates carry their own attempt budget: model-download bound services get
 *   large budgets, warm databases small ones
 */
type HealthGate struct {
	Type     GateType `json:"type"`
	URL      string   `json:"url,omitempty"`
	Status   int      `json:"status,omitempty"`
	Field    string   `json:"field,omitempty"`
	Key      string   `json:"key,omitempty"`
	Expect   string   `json:"expect,omitempty"`
	Pattern  string   `json:"pattern,omitempty"`
	Attempts int      `json:"attempts"`
}

// ErrorResponse defines API error response format
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// ServiceCheckResult 服务健康检查结果
// @Description 单个服务的即时健康检查结果
type ServiceCheckResult struct {
	Name    string `json:"name" example:"ollama" description:"服务名称"`
	Label   string `json:"label" example:"Ollama model server" description:"显示名称"`
	Healthy bool   `json:"healthy" example:"true" description:"是否健康"`
	Gate    string `json:"gate,omitempty" example:"http-field" description:"未通过的门槛类型"`
	Detail  string `json:"detail,omitempty" description:"失败详情"`
}

// CheckResponse 检查API响应结构
// @Description 全栈健康检查API响应数据结构
type CheckResponse struct {
	Timestamp     string               `json:"timestamp" example:"2024-01-01T10:00:00Z" description:"检查时间戳"`
	Services      []ServiceCheckResult `json:"services" description:"服务检查结果列表"`
	OverallStatus string               `json:"overallStatus" example:"healthy" description:"总体状态"`
	TotalChecks   int                  `json:"totalChecks" example:"4" description:"总检查项数"`
	PassedChecks  int                  `json:"passedChecks" example:"4" description:"通过检查项数"`
	FailedChecks  int                  `json:"failedChecks" example:"0" description:"失败检查项数"`
}
