package pool

import "time"

// Mode selects how the coordinator manages its worker population.
type Mode int

const (
	// Fixed keeps the worker population at exactly the initial count for
	// the pool's entire lifetime.
	Fixed Mode = iota
	// Cached grows the population on demand up to the worker ceiling and
	// reclaims excess workers after sustained idleness.
	Cached
)

// String returns the mode name for logs and stats output.
func (m Mode) String() string {
	switch m {
	case Fixed:
		return "fixed"
	case Cached:
		return "cached"
	default:
		return "unknown"
	}
}

const (
	// DefaultQueueCeiling bounds the task queue when no ceiling is configured.
	DefaultQueueCeiling = 1024

	// DefaultWorkerCeiling bounds the cached-mode population when no
	// ceiling is configured.
	DefaultWorkerCeiling = 128

	// DefaultBackpressureTimeout is how long Submit waits for queue space
	// before rejecting the submission.
	DefaultBackpressureTimeout = time.Second

	// DefaultIdleTimeout is how long a cached-mode worker above the
	// initial count must sit idle before it reclaims itself.
	DefaultIdleTimeout = 60 * time.Second

	// defaultPollInterval is the cached-mode wait tick: an idle worker
	// re-checks its reclamation eligibility at least this often.
	defaultPollInterval = time.Second
)

// CoordinatorOption is a functional option for configuring a Coordinator.
type CoordinatorOption func(*coordinatorConfig)

type coordinatorConfig struct {
	mode                Mode
	queueCeiling        int
	workerCeiling       int
	backpressureTimeout time.Duration
	idleTimeout         time.Duration
}

func defaultConfig() *coordinatorConfig {
	return &coordinatorConfig{
		mode:                Fixed,
		queueCeiling:        DefaultQueueCeiling,
		workerCeiling:       DefaultWorkerCeiling,
		backpressureTimeout: DefaultBackpressureTimeout,
		idleTimeout:         DefaultIdleTimeout,
	}
}

// WithMode sets the pool's operating mode.
// If not specified, defaults to Fixed.
func WithMode(m Mode) CoordinatorOption {
	return func(cfg *coordinatorConfig) {
		if m == Fixed || m == Cached {
			cfg.mode = m
		}
	}
}

// WithQueueCeiling bounds the number of tasks that may wait in the queue.
// A submission against a full queue blocks for the back-pressure timeout
// and is then rejected. If not specified, defaults to DefaultQueueCeiling.
func WithQueueCeiling(n int) CoordinatorOption {
	return func(cfg *coordinatorConfig) {
		if n > 0 {
			cfg.queueCeiling = n
		}
	}
}

// WithWorkerCeiling bounds the worker population in Cached mode. It has no
// effect in Fixed mode. If not specified, defaults to DefaultWorkerCeiling.
func WithWorkerCeiling(n int) CoordinatorOption {
	return func(cfg *coordinatorConfig) {
		if n > 0 {
			cfg.workerCeiling = n
		}
	}
}

// WithBackpressureTimeout overrides how long Submit waits for queue space
// before rejecting. Mainly useful in tests, where waiting a full second
// per rejection makes suites crawl.
func WithBackpressureTimeout(d time.Duration) CoordinatorOption {
	return func(cfg *coordinatorConfig) {
		if d > 0 {
			cfg.backpressureTimeout = d
		}
	}
}

// WithIdleTimeout overrides how long a cached-mode worker above the initial
// count must be idle before reclaiming itself. Mainly useful in tests.
func WithIdleTimeout(d time.Duration) CoordinatorOption {
	return func(cfg *coordinatorConfig) {
		if d > 0 {
			cfg.idleTimeout = d
		}
	}
}

// waitTick returns the cached-mode wait timeout per iteration. Short idle
// timeouts (tests) shorten the tick so reclamation is not stuck behind a
// full one-second wait.
func (cfg *coordinatorConfig) waitTick() time.Duration {
	return min(defaultPollInterval, cfg.idleTimeout)
}
