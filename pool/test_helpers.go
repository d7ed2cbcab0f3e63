package pool

import (
	"io"
	"sync"
	"testing"
	"time"
)

// silenceLogs keeps lifecycle logging out of test output, once.
var silenceLogs sync.Once

// newTestCoordinator builds, starts, and schedules cleanup for a
// coordinator with the given options.
func newTestCoordinator(t *testing.T, workers int, opts ...CoordinatorOption) *Coordinator {
	t.Helper()
	silenceLogs.Do(func() { SetLogOutput(io.Discard) })

	c := NewCoordinator(opts...)
	if err := c.Start(workers); err != nil {
		t.Fatalf("Start(%d) failed: %v", workers, err)
	}
	t.Cleanup(func() {
		_ = c.Shutdown(5 * time.Second)
	})
	return c
}

// intTask returns a task that immediately yields n.
func intTask(n int) Task {
	return TaskFunc(func() Value {
		return NewValue(n)
	})
}

// sleepTask returns a task that sleeps for d and then yields n.
func sleepTask(d time.Duration, n int) Task {
	return TaskFunc(func() Value {
		time.Sleep(d)
		return NewValue(n)
	})
}

// mustExtractInt unwraps an int result or fails the test.
func mustExtractInt(t *testing.T, v Value) int {
	t.Helper()

	n, err := Extract[int](v)
	if err != nil {
		t.Fatalf("Extract[int] failed: %v", err)
	}
	return n
}

// waitForCondition polls fn until it returns true or the deadline passes.
func waitForCondition(t *testing.T, timeout time.Duration, fn func() bool, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}
