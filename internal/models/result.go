package models

import "time"

/**
 * Final aggregate of one deployment run
 * @property {[]ServiceRunState} services - Snapshot per service, in startup order
 * @property {bool} success - True only when every service reached ready
 * @property {int} failedIndex - Index of the failing service, -1 on success
 * @property {string} failedPhase - Phase in which the failure happened
 * @property {string} warning - Non-fatal post-deployment drift note
 * @description
 * - Produced exactly once per run and is the only object surfaced to the
 *   caller; the exit code is derived from it
 */
type DeploymentResult struct {
	StartTime   time.Time         `json:"startTime"`
	EndTime     time.Time         `json:"endTime"`
	Services    []ServiceRunState `json:"services"`
	Success     bool              `json:"success"`
	FailedIndex int               `json:"failedIndex"`
	FailedPhase ServicePhase      `json:"failedPhase,omitempty"`
	FailedError string            `json:"failedError,omitempty"`
	Interrupted bool              `json:"interrupted,omitempty"`
	Warning     string            `json:"warning,omitempty"`
	Rollback    *RollbackRecord   `json:"rollback,omitempty"`
}

// RollbackRecord 记录一次回滚的执行情况，供离线诊断工具消费
type RollbackRecord struct {
	Time     time.Time `json:"time"`
	Stopped  []string  `json:"stopped"`
	Failures []string  `json:"failures,omitempty"`
}
