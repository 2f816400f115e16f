package health

import (
	"context"
	"time"

	"ragstack-deploy/internal/logger"
	"ragstack-deploy/internal/models"
)

/**
 * Sleeper abstracts the fixed delay between probe attempts
 * @description
 * - Tests inject a fake sleeper so polling runs without real delays
 * - Sleep returns the context error when cancelled mid-wait
 */
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealSleeper 真实计时器，部署运行时使用
type RealSleeper struct{}

func (RealSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

/**
 * Poller drives a checker on a bounded fixed-delay schedule
 * @property {time.Duration} interval - Fixed delay between attempts
 * @property {Sleeper} sleeper - Delay implementation
 */
type Poller struct {
	Interval time.Duration
	Sleeper  Sleeper
}

func NewPoller(interval time.Duration) *Poller {
	return &Poller{Interval: interval, Sleeper: RealSleeper{}}
}

/**
 * Poll one gate until it passes, the budget runs out, or the run is cancelled
 * @param {string} service - Service name, for logging and error reporting
 * @param {models.HealthGate} gate - Gate with its attempt budget
 * @param {Checker} checker - Strategy evaluating the gate
 * @returns {int, error} Attempts used; nil on ready, HealthTimeoutError when
 *          the budget is exhausted, context error on cancellation
 * @description
 * - The first attempt runs immediately: a service ready on its first probe
 *   uses exactly one attempt
 * - The attempt counter never exceeds the budget
 */
func (p *Poller) AwaitReady(ctx context.Context, service string, gate models.HealthGate, checker Checker) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= gate.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}

		lastErr = checker.Check(ctx)
		if lastErr == nil {
			logger.Infof("Service [%s] gate %s passed after %d attempt(s)", service, gate.Type, attempt)
			return attempt, nil
		}
		logger.Debugf("Service [%s] gate %s attempt %d/%d failed: %v",
			service, gate.Type, attempt, gate.Attempts, lastErr)

		if attempt == gate.Attempts {
			break
		}
		if err := p.Sleeper.Sleep(ctx, p.Interval); err != nil {
			return attempt, err
		}
	}

	return gate.Attempts, &models.HealthTimeoutError{
		Service:      service,
		Gate:         string(gate.Type),
		AttemptsUsed: gate.Attempts,
		LastCause:    lastErr.Error(),
	}
}
