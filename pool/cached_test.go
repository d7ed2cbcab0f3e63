package pool

import (
	"testing"
	"time"
)

func TestCached_PopulationGrowsUnderLoad(t *testing.T) {
	const (
		initial = 2
		ceiling = 6
	)
	c := newTestCoordinator(t, initial,
		WithMode(Cached),
		WithWorkerCeiling(ceiling),
		WithQueueCeiling(64),
	)

	handles := make([]*ResultHandle, 0, 20)
	for i := range 20 {
		handles = append(handles, c.Submit(sleepTask(150*time.Millisecond, i)))
	}

	// Sustained load beyond the initial count must expand the population,
	// but never past the ceiling.
	peak := 0
	waitForCondition(t, 2*time.Second, func() bool {
		if got := c.Stats().CurrentWorkers; got > peak {
			peak = got
		}
		return peak > initial
	}, "population never grew above the initial count")

	for _, h := range handles {
		if !h.Valid() {
			t.Fatal("submission unexpectedly rejected")
		}
		h.Get()
	}

	if peak <= initial {
		t.Errorf("peak population = %d, want more than %d", peak, initial)
	}
	if peak > ceiling {
		t.Errorf("peak population = %d exceeded ceiling %d", peak, ceiling)
	}
}

func TestCached_IdleWorkersReclaimThemselves(t *testing.T) {
	const (
		initial     = 2
		idleTimeout = 120 * time.Millisecond
	)
	c := newTestCoordinator(t, initial,
		WithMode(Cached),
		WithWorkerCeiling(8),
		WithQueueCeiling(64),
		WithIdleTimeout(idleTimeout),
	)

	handles := make([]*ResultHandle, 0, 16)
	for i := range 16 {
		handles = append(handles, c.Submit(sleepTask(100*time.Millisecond, i)))
	}
	for _, h := range handles {
		h.Get()
	}

	if got := c.Stats().CurrentWorkers; got <= initial {
		t.Fatalf("population = %d never expanded, cannot observe reclamation", got)
	}

	// Load is gone: the excess reclaims itself, but never below the
	// initial count.
	waitForCondition(t, 5*time.Second, func() bool {
		return c.Stats().CurrentWorkers == initial
	}, "excess workers never reclaimed themselves")

	// The survivors stay put well past the idle timeout.
	time.Sleep(3 * idleTimeout)
	if got := c.Stats().CurrentWorkers; got != initial {
		t.Errorf("population shrank below the initial count: %d", got)
	}

	// The shrunken pool still works.
	if n := mustExtractInt(t, c.Submit(intTask(21)).Get()); n != 21 {
		t.Errorf("post-reclamation result = %d, want 21", n)
	}
}

func TestCached_StartClampsToWorkerCeiling(t *testing.T) {
	c := newTestCoordinator(t, 10,
		WithMode(Cached),
		WithWorkerCeiling(4),
	)

	if got := c.Stats().CurrentWorkers; got != 4 {
		t.Errorf("population = %d, want clamped to ceiling 4", got)
	}
}

func TestFixed_PopulationIsStatic(t *testing.T) {
	c := newTestCoordinator(t, 3, WithQueueCeiling(64))

	handles := make([]*ResultHandle, 0, 15)
	for i := range 15 {
		handles = append(handles, c.Submit(sleepTask(30*time.Millisecond, i)))
	}

	// Load well beyond the population must not spawn anyone in Fixed mode.
	for range 10 {
		if got := c.Stats().CurrentWorkers; got != 3 {
			t.Fatalf("fixed-mode population = %d, want 3", got)
		}
		time.Sleep(20 * time.Millisecond)
	}

	for _, h := range handles {
		h.Get()
	}
}
