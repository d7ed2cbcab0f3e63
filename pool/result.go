package pool

import (
	"context"
	"sync/atomic"
)

// ResultHandle is the future-like handle returned by Submit, paired
// one-to-one with a submitted task. The submitter blocks on Get until the
// worker that ran the task publishes its return value.
//
// A handle whose submission was rejected (back-pressure timeout, pool not
// running) is invalid: Get returns an empty Value immediately instead of
// blocking. The same applies to a handle whose task was still queued when
// the pool shut down.
//
// Example:
//
//	handle := coord.Submit(TaskFunc(func() Value {
//	    return NewValue(42)
//	}))
//	v := handle.Get()
//	n, err := Extract[int](v)
type ResultHandle struct {
	value Value
	sem   *semaphore
	sub   *submission // keeps the task alive through execution and retrieval
	valid atomic.Bool
}

// newResultHandle builds the handle for sub and installs it as the
// submission's back-link, so the worker can publish without the
// coordinator mediating. sub may be nil for a rejected submission.
func newResultHandle(sub *submission, valid bool) *ResultHandle {
	h := &ResultHandle{
		sem: newSemaphore(0),
		sub: sub,
	}
	h.valid.Store(valid)
	if sub != nil {
		sub.setResult(h)
	}
	return h
}

// Valid reports whether the submission was accepted. Get on an invalid
// handle returns an empty Value without blocking.
func (h *ResultHandle) Valid() bool {
	return h.valid.Load()
}

// publish stores the task's return value and releases the semaphore,
// waking the consumer blocked in Get. Called exactly once per accepted
// submission, by the worker, after Run returns (or with an empty Value
// when Run panicked).
func (h *ResultHandle) publish(v Value) {
	h.value = v
	h.sem.release()
}

// invalidate flips the handle to invalid and wakes any consumer already
// blocked in Get. Used at shutdown for tasks still queued: their workers
// are gone and nothing will ever publish, so the consumer is handed an
// empty Value instead of blocking forever.
func (h *ResultHandle) invalidate() {
	h.valid.Store(false)
	h.sem.release()
}

// Get blocks until the worker publishes the task's return value, then
// returns it. On an invalid handle it returns an empty Value immediately.
//
// Get is idempotent: the semaphore count is restored after each read, so
// a second call returns the same Value instead of blocking.
func (h *ResultHandle) Get() Value {
	if !h.valid.Load() {
		return Value{}
	}

	h.sem.acquire()
	// Re-check validity: a release may have come from invalidate rather
	// than publish.
	if !h.valid.Load() {
		h.sem.release()
		return Value{}
	}
	v := h.value
	h.sem.release()
	return v
}

// GetContext is Get with caller-side cancellation. It returns ctx.Err()
// if ctx is done before the value is published; the task itself is not
// cancelled and a later Get can still retrieve the value.
func (h *ResultHandle) GetContext(ctx context.Context) (Value, error) {
	if !h.valid.Load() {
		return Value{}, nil
	}

	if err := h.sem.acquireContext(ctx); err != nil {
		return Value{}, err
	}
	if !h.valid.Load() {
		h.sem.release()
		return Value{}, nil
	}
	v := h.value
	h.sem.release()
	return v, nil
}
