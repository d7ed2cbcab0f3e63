package algorithms

import "time"

// BackoffType selects which retry-delay algorithm to use.
type BackoffType int

const (
	// BackoffExponential doubles the delay on every attempt (default).
	BackoffExponential BackoffType = iota
	// BackoffJittered is exponential backoff with random jitter applied,
	// so concurrent retries do not fire in lockstep.
	BackoffJittered
	// BackoffDecorrelated is AWS-style decorrelated jitter, where each
	// delay is drawn from a range based on the previous delay.
	BackoffDecorrelated
)

// NewBackoffStrategy builds the strategy named by backoffType.
// jitterFactor is only consulted by BackoffJittered.
func NewBackoffStrategy(
	backoffType BackoffType,
	initialDelay, maxDelay time.Duration,
	jitterFactor float64,
) BackoffStrategy {
	switch backoffType {
	case BackoffJittered:
		return newJitteredBackoff(initialDelay, maxDelay, jitterFactor)
	case BackoffDecorrelated:
		return newDecorrelatedJitterBackoff(initialDelay, maxDelay)
	default:
		return newExponentialBackoff(initialDelay, maxDelay)
	}
}
