package pool

import (
	"context"
	"sync"
)

// semaphore is a counting semaphore used to hand a single result from a
// worker to the submitter that is blocked waiting for it. Acquire waits
// while the count is zero; Release increments and wakes every waiter.
//
// Broadcast (rather than Signal) is required on Release: multiple
// goroutines can be waiting on the same condition variable for different
// reasons (a count to become positive, or their context to be cancelled),
// and a single Signal could wake the wrong one and leave the rest parked
// forever.
type semaphore struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

func newSemaphore(initial int) *semaphore {
	s := &semaphore{count: initial}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// acquire blocks until the count is positive, then decrements it.
func (s *semaphore) acquire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.count == 0 {
		s.cond.Wait()
	}
	s.count--
}

// acquireContext is acquire with cancellation. Because sync.Cond has no
// timed or cancellable wait, cancellation is observed via a helper
// goroutine that broadcasts when ctx is done, so the waiter re-checks its
// predicate and can bail out.
func (s *semaphore) acquireContext(ctx context.Context) error {
	if ctx == nil {
		s.acquire()
		return nil
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.cond.Broadcast()
			s.mu.Unlock()
		case <-done:
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.count == 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.cond.Wait()
	}
	s.count--
	return nil
}

// release increments the count and wakes every waiter.
func (s *semaphore) release() {
	s.mu.Lock()
	s.count++
	s.cond.Broadcast()
	s.mu.Unlock()
}
