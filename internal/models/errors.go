package models

import (
	"errors"
	"fmt"
	"strings"
)

// 进程退出码，按失败类别区分，脚本可据此判断失败环节
const (
	ExitOK        = 0
	ExitConfig    = 2
	ExitBuild     = 3
	ExitStart     = 4
	ExitHealth    = 5
	ExitRollback  = 6
	ExitInterrupt = 130
)

/**
 * Configuration error naming every missing required key
 * @property {[]string} missing - All absent required keys, reported together
 */
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration keys: %s", strings.Join(e.Missing, ", "))
}

// BuildError 构建阶段失败，不重试，直接终止本次部署
type BuildError struct {
	Service    string
	Diagnostic string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build of service '%s' failed: %s", e.Service, e.Diagnostic)
}

// StartError 启动阶段失败，不重试，直接终止本次部署
type StartError struct {
	Service    string
	Diagnostic string
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start of service '%s' failed: %s", e.Service, e.Diagnostic)
}

/**
 * Health probe attempt budget exhausted
 * @property {string} service - Failing service name
 * @property {string} gate - Gate type that never passed
 * @property {int} attemptsUsed - Probe attempts consumed, equals the budget
 * @property {string} lastCause - Outcome of the final attempt
 */
type HealthTimeoutError struct {
	Service      string
	Gate         string
	AttemptsUsed int
	LastCause    string
}

func (e *HealthTimeoutError) Error() string {
	return fmt.Sprintf("service '%s' not ready after %d attempts (gate %s): %s",
		e.Service, e.AttemptsUsed, e.Gate, e.LastCause)
}

// RollbackError 回滚期间部分停止/清除操作失败；只记录，不改变本次部署的失败终态
type RollbackError struct {
	Failures []string
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback incomplete, %d operation(s) failed: %s",
		len(e.Failures), strings.Join(e.Failures, "; "))
}

/**
 * Map an error to the process exit code
 * @param {error} err - Terminal error of a run, nil means success
 * @returns {int} Exit code distinguishing the failure category
 */
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ce *ConfigurationError
	var be *BuildError
	var se *StartError
	var he *HealthTimeoutError
	var re *RollbackError
	switch {
	case errors.As(err, &ce):
		return ExitConfig
	case errors.As(err, &be):
		return ExitBuild
	case errors.As(err, &se):
		return ExitStart
	case errors.As(err, &he):
		return ExitHealth
	case errors.As(err, &re):
		return ExitRollback
	}
	return 1
}
