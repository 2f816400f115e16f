package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ragstack-deploy/internal/docker"
	"ragstack-deploy/internal/logger"
	"ragstack-deploy/internal/models"
)

// 单个停止/清除操作的时间上限，保证回滚自身不会挂起
const rollbackOpTimeout = 60 * time.Second

/**
 * RollbackHandler stops and removes launched services after a failed run
 * @description
 * - Best-effort: one service failing to stop never prevents attempting the
 *   rest; failures are collected into the record, not raised
 * - Idempotent: only the first invocation acts, repeats return the first
 *   record unchanged; stopping an already stopped service is a no-op anyway
 * - Runs on its own background context so it also completes when the run
 *   context was cancelled by an interrupt
 */
type RollbackHandler struct {
	docker *docker.Client
	specs  []models.ServiceSpec

	mu     sync.Mutex
	record *models.RollbackRecord
}

func NewRollbackHandler(dc *docker.Client, specs []models.ServiceSpec) *RollbackHandler {
	return &RollbackHandler{docker: dc, specs: specs}
}

/**
 * Execute the rollback for the given launched services
 * @param {[]models.ServiceSpec} launched - Services that reached at least
 *        starting state, in startup order
 * @returns {*models.RollbackRecord} What was stopped and what failed
 */
func (r *RollbackHandler) Execute(launched []models.ServiceSpec) *models.RollbackRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.record != nil {
		return r.record
	}

	record := &models.RollbackRecord{Time: time.Now()}
	// 逆序停止：后启动的服务先停，依赖方向与启动时相反
	for i := len(launched) - 1; i >= 0; i-- {
		spec := launched[i]
		ctx, cancel := context.WithTimeout(context.Background(), rollbackOpTimeout)
		if out, err := r.docker.ComposeStop(ctx, spec.Dir); err != nil {
			record.Failures = append(record.Failures,
				fmt.Sprintf("stop %s: %s", spec.Name, diagnostic(out, err)))
			logger.Errorf("Rollback: failed to stop service [%s]: %v", spec.Name, err)
		} else {
			record.Stopped = append(record.Stopped, spec.Name)
			logger.Infof("Rollback: service [%s] stopped", spec.Name)
		}
		if out, err := r.docker.ComposeRemove(ctx, spec.Dir); err != nil {
			record.Failures = append(record.Failures,
				fmt.Sprintf("remove %s: %s", spec.Name, diagnostic(out, err)))
			logger.Errorf("Rollback: failed to remove service [%s]: %v", spec.Name, err)
		}
		cancel()
	}

	if len(record.Failures) > 0 {
		logger.Warnf("Rollback incomplete: %d operation(s) failed", len(record.Failures))
	}
	r.record = record
	return record
}

/**
 * Tear down every registered service regardless of run state
 * @param {bool} reset - Also remove named volumes (vector data, pulled models)
 * @returns {*models.RollbackRecord} What was torn down and what failed
 * @description
 * - Used by the down command; shares the best-effort contract but not the
 *   once-only guard, manual teardown may be repeated freely
 */
func (r *RollbackHandler) TearDown(reset bool) *models.RollbackRecord {
	record := &models.RollbackRecord{Time: time.Now()}
	for i := len(r.specs) - 1; i >= 0; i-- {
		spec := r.specs[i]
		ctx, cancel := context.WithTimeout(context.Background(), rollbackOpTimeout)
		if out, err := r.docker.ComposeDown(ctx, spec.Dir, reset); err != nil {
			record.Failures = append(record.Failures,
				fmt.Sprintf("down %s: %s", spec.Name, diagnostic(out, err)))
			logger.Errorf("Teardown: failed to remove service [%s]: %v", spec.Name, err)
		} else {
			record.Stopped = append(record.Stopped, spec.Name)
			logger.Infof("Teardown: service [%s] removed", spec.Name)
		}
		cancel()
	}
	return record
}
