// Package pool provides a general-purpose worker pool that accepts
// heterogeneous user-defined tasks, dispatches them across a population
// of worker goroutines, and hands each task's return value back to the
// submitter through a future-like ResultHandle.
//
// The primary type is Coordinator. It owns a bounded FIFO task queue and
// a worker population that operates in one of two modes:
//
//   - Fixed: the population equals the initial count for the pool's
//     entire lifetime.
//   - Cached: the population grows on demand up to a ceiling, and excess
//     workers reclaim themselves after sustained idleness.
//
// # Basic Usage
//
//	coord := pool.NewCoordinator()
//	if err := coord.Start(4); err != nil {
//	    log.Fatal(err)
//	}
//	defer coord.Close()
//
//	handle := coord.Submit(pool.TaskFunc(func() pool.Value {
//	    return pool.NewValue(42)
//	}))
//	n, err := pool.Extract[int](handle.Get())
//
// # Heterogeneous Results
//
// Tasks return a type-erased Value; the submitter recovers the concrete
// type with the generic Extract, which fails with ErrTypeMismatch when
// the requested type differs from what the task stored. Tasks returning
// int, float64, and user structs can share one pool.
//
// # Back-pressure
//
// The task queue is bounded. A submission against a full queue blocks for
// up to one second waiting for space, then is rejected: Submit returns an
// invalid handle whose Get yields an empty Value immediately, without
// blocking. Rejection is a value, not an error — see ErrSubmissionRejected
// for the sentinel retry layers can use. SubmitWithBackoff wraps Submit
// with automatic re-submission on rejection.
//
// # Cached Mode
//
//	coord := pool.NewCoordinator(
//	    pool.WithMode(pool.Cached),
//	    pool.WithWorkerCeiling(32),
//	)
//	_ = coord.Start(4)
//
// A submission that finds more queued tasks than idle workers spawns an
// additional worker, up to the ceiling. A worker above the initial count
// that has been idle for sixty seconds terminates itself, shrinking the
// population back toward the initial count.
//
// # Shutdown
//
// Shutdown (or Close) stops intake, wakes every waiting worker, and
// blocks until the whole population has exited; workers finish the task
// they are executing first. Tasks still queued at shutdown are not run —
// their handles are invalidated so a consumer blocked in Get is handed an
// empty Value rather than waiting forever.
//
// # Task Authoring
//
// A task is any type implementing Run() Value, or a TaskFunc closure.
// Run must be self-contained: a panic inside Run is recovered at the
// worker boundary, logged, and surfaces to the consumer as an empty (but
// valid) result.
package pool
