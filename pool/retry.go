package pool

import (
	"time"

	"github.com/utkarsh5026/elasticpool/internal/algorithms"
)

// BackoffType selects the delay algorithm used by SubmitWithBackoff.
// Implementations live in internal/algorithms; the alias re-exports the
// selector so callers never import the internal package directly.
type BackoffType = algorithms.BackoffType

const (
	// BackoffExponential doubles the delay on every attempt (default).
	BackoffExponential = algorithms.BackoffExponential
	// BackoffJittered is exponential backoff with random jitter applied.
	BackoffJittered = algorithms.BackoffJittered
	// BackoffDecorrelated is AWS-style decorrelated jitter.
	BackoffDecorrelated = algorithms.BackoffDecorrelated
)

// RetryPolicy configures SubmitWithBackoff.
type RetryPolicy struct {
	// MaxAttempts bounds the total number of Submit calls (minimum 1).
	MaxAttempts int
	// Backoff selects the delay algorithm between attempts.
	Backoff BackoffType
	// InitialDelay seeds the backoff sequence. Defaults to 100ms.
	InitialDelay time.Duration
	// MaxDelay caps any single delay. Defaults to 5s.
	MaxDelay time.Duration
	// JitterFactor is the ± fraction applied by BackoffJittered.
	// Defaults to 0.1.
	JitterFactor float64
}

// SubmitWithBackoff submits a task, re-submitting on back-pressure
// rejection with the configured backoff between attempts. It returns the
// first valid handle, or the last invalid one once attempts are exhausted
// or the pool stops running.
//
// Only the submission is retried. An accepted task runs exactly once, so
// the one-publish-per-acceptance contract is untouched.
//
// Example:
//
//	handle := coord.SubmitWithBackoff(task, RetryPolicy{
//	    MaxAttempts: 5,
//	    Backoff:     BackoffJittered,
//	})
func (c *Coordinator) SubmitWithBackoff(task Task, policy RetryPolicy) *ResultHandle {
	maxAttempts := max(policy.MaxAttempts, 1)
	initialDelay := policy.InitialDelay
	if initialDelay <= 0 {
		initialDelay = 100 * time.Millisecond
	}
	maxDelay := policy.MaxDelay
	if maxDelay <= 0 {
		maxDelay = 5 * time.Second
	}
	jitterFactor := policy.JitterFactor
	if jitterFactor <= 0 {
		jitterFactor = 0.1
	}

	strategy := algorithms.NewBackoffStrategy(policy.Backoff, initialDelay, maxDelay, jitterFactor)
	strategy.Reset()

	for attempt := 0; ; attempt++ {
		handle := c.Submit(task)
		if handle.Valid() || attempt >= maxAttempts-1 || !c.running.Load() {
			return handle
		}
		debugLog("submit attempt %d rejected, backing off", attempt+1)
		time.Sleep(strategy.NextDelay(attempt, ErrSubmissionRejected))
	}
}
