package pool

import (
	"errors"
	"testing"
	"time"
)

func TestCoordinator_Start(t *testing.T) {
	t.Run("population matches the initial count", func(t *testing.T) {
		c := newTestCoordinator(t, 4)

		s := c.Stats()
		if s.CurrentWorkers != 4 {
			t.Errorf("CurrentWorkers = %d, want 4", s.CurrentWorkers)
		}
		if s.IdleWorkers != 4 {
			t.Errorf("IdleWorkers = %d, want 4", s.IdleWorkers)
		}
		if !s.Running {
			t.Error("pool should report running after Start")
		}
	})

	t.Run("zero count defaults to GOMAXPROCS", func(t *testing.T) {
		c := newTestCoordinator(t, 0)

		if got := c.Stats().CurrentWorkers; got < 1 {
			t.Errorf("CurrentWorkers = %d, want at least 1", got)
		}
	})

	t.Run("double start fails", func(t *testing.T) {
		c := newTestCoordinator(t, 2)

		if err := c.Start(2); !errors.Is(err, ErrPoolStarted) {
			t.Errorf("expected ErrPoolStarted, got %v", err)
		}
	})
}

func TestCoordinator_ConfigurationLocksAtStart(t *testing.T) {
	c := NewCoordinator()

	if err := c.SetMode(Cached); err != nil {
		t.Fatalf("SetMode before start failed: %v", err)
	}
	if err := c.SetQueueCeiling(16); err != nil {
		t.Fatalf("SetQueueCeiling before start failed: %v", err)
	}
	if err := c.SetWorkerCeiling(8); err != nil {
		t.Fatalf("SetWorkerCeiling before start failed: %v", err)
	}

	if err := c.Start(2); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer c.Close()

	if err := c.SetMode(Fixed); !errors.Is(err, ErrPoolStarted) {
		t.Errorf("SetMode after start: expected ErrPoolStarted, got %v", err)
	}
	if err := c.SetQueueCeiling(32); !errors.Is(err, ErrPoolStarted) {
		t.Errorf("SetQueueCeiling after start: expected ErrPoolStarted, got %v", err)
	}
	if err := c.SetWorkerCeiling(4); !errors.Is(err, ErrPoolStarted) {
		t.Errorf("SetWorkerCeiling after start: expected ErrPoolStarted, got %v", err)
	}
}

func TestCoordinator_Shutdown(t *testing.T) {
	t.Run("waits for in-flight tasks", func(t *testing.T) {
		c := NewCoordinator()
		if err := c.Start(4); err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		const taskDuration = 200 * time.Millisecond
		handles := make([]*ResultHandle, 0, 4)
		for i := range 4 {
			handles = append(handles, c.Submit(sleepTask(taskDuration, i)))
		}

		// Give the workers a beat to dequeue, then tear down immediately.
		waitForCondition(t, time.Second, func() bool {
			return c.Stats().QueueSize == 0
		}, "workers never dequeued")

		start := time.Now()
		if err := c.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		if elapsed := time.Since(start); elapsed < taskDuration/2 {
			t.Errorf("shutdown returned after %v, before in-flight tasks could finish", elapsed)
		}
		if got := c.Stats().CurrentWorkers; got != 0 {
			t.Errorf("CurrentWorkers after shutdown = %d, want 0", got)
		}

		// In-flight tasks published before their workers exited.
		for i, h := range handles {
			if n := mustExtractInt(t, h.Get()); n != i {
				t.Errorf("handle %d = %d, want %d", i, n, i)
			}
		}
	})

	t.Run("invalidates tasks still queued", func(t *testing.T) {
		c := NewCoordinator(WithQueueCeiling(8))
		if err := c.Start(1); err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		busy := c.Submit(sleepTask(300*time.Millisecond, 1))
		waitForCondition(t, time.Second, func() bool {
			s := c.Stats()
			return s.QueueSize == 0 && s.IdleWorkers == 0
		}, "worker never picked up the first task")

		queued := c.Submit(intTask(2))

		// A consumer already blocked in Get must be woken by shutdown.
		got := make(chan Value, 1)
		go func() {
			got <- queued.Get()
		}()

		if err := c.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}

		select {
		case v := <-got:
			if !v.Empty() {
				t.Error("queued-at-shutdown handle should resolve to an empty Value")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("consumer blocked in Get was orphaned by shutdown")
		}
		if queued.Valid() {
			t.Error("queued-at-shutdown handle should be invalid")
		}

		// The in-flight task still completed normally.
		if n := mustExtractInt(t, busy.Get()); n != 1 {
			t.Errorf("in-flight result = %d, want 1", n)
		}
	})

	t.Run("timeout surfaces ErrShutdownTimeout", func(t *testing.T) {
		c := NewCoordinator()
		if err := c.Start(1); err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		c.Submit(sleepTask(500*time.Millisecond, 1))
		waitForCondition(t, time.Second, func() bool {
			return c.Stats().IdleWorkers == 0
		}, "worker never started the task")

		if err := c.Shutdown(10 * time.Millisecond); !errors.Is(err, ErrShutdownTimeout) {
			t.Errorf("expected ErrShutdownTimeout, got %v", err)
		}

		// The drain still completes in the background.
		waitForCondition(t, 3*time.Second, func() bool {
			return c.Stats().CurrentWorkers == 0
		}, "background drain never finished")
	})

	t.Run("before start fails", func(t *testing.T) {
		c := NewCoordinator()
		if err := c.Shutdown(time.Second); !errors.Is(err, ErrPoolNotStarted) {
			t.Errorf("expected ErrPoolNotStarted, got %v", err)
		}
	})

	t.Run("double shutdown fails", func(t *testing.T) {
		c := NewCoordinator()
		if err := c.Start(1); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		if err := c.Close(); err != nil {
			t.Fatalf("first Close failed: %v", err)
		}
		if err := c.Close(); !errors.Is(err, ErrPoolShutdown) {
			t.Errorf("expected ErrPoolShutdown, got %v", err)
		}
	})
}

func TestCoordinator_SteadyStateInvariant(t *testing.T) {
	c := newTestCoordinator(t, 3)

	handles := make([]*ResultHandle, 0, 9)
	for i := range 9 {
		handles = append(handles, c.Submit(intTask(i)))
	}
	for _, h := range handles {
		h.Get()
	}

	// Quiescent: every worker idle, queue empty.
	waitForCondition(t, time.Second, func() bool {
		s := c.Stats()
		return s.CurrentWorkers == s.IdleWorkers && s.QueueSize == 0
	}, "pool never returned to steady state")

	if got := c.Stats().CurrentWorkers; got != 3 {
		t.Errorf("fixed-mode population = %d, want 3", got)
	}
}
