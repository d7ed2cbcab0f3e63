package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Coordinator owns the worker population and the bounded task queue, and
// implements submission, the worker loop, and shutdown. It is the Go
// rendition of a classic fixed/cached thread pool: one mutex guards the
// queue and the worker map, and three condition variables carry the
// producer/consumer/teardown protocol — notFull (producers wait for queue
// space), notEmpty (workers wait for tasks), and exit (shutdown waits for
// the population to drain).
//
// Example:
//
//	coord := NewCoordinator(WithMode(Cached), WithWorkerCeiling(16))
//	if err := coord.Start(4); err != nil {
//	    log.Fatal(err)
//	}
//	defer coord.Close()
//
//	handle := coord.Submit(TaskFunc(func() Value {
//	    return NewValue(heavyComputation())
//	}))
//	result, err := Extract[int](handle.Get())
type Coordinator struct {
	cfg *coordinatorConfig

	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	exit     *sync.Cond

	queue   []*submission            // FIFO, guarded by mu
	workers map[int64]*workerWrapper // guarded by mu

	// Atomic mirrors, readable without the mutex for heuristics and fast
	// predicates. Writes happen under the mutex alongside the structural
	// change they mirror, with two exceptions: running, which flips once at
	// start and once at shutdown, and the idleCount increment a worker makes
	// after finishing a task, which happens outside the mutex.
	queueSize    atomic.Int64
	currentCount atomic.Int64
	idleCount    atomic.Int64
	running      atomic.Bool
	started      atomic.Bool

	initialCount int
	done         chan struct{} // closed when the last worker is gone
}

// NewCoordinator builds an unstarted coordinator. Mode and ceilings can be
// set here via options or afterwards via the setters, but only until Start.
func NewCoordinator(opts ...CoordinatorOption) *Coordinator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	c := &Coordinator{
		cfg:     cfg,
		workers: make(map[int64]*workerWrapper),
		done:    make(chan struct{}),
	}
	c.notFull = sync.NewCond(&c.mu)
	c.notEmpty = sync.NewCond(&c.mu)
	c.exit = sync.NewCond(&c.mu)
	return c
}

// SetMode sets the operating mode. Returns ErrPoolStarted once Start has
// been called.
func (c *Coordinator) SetMode(m Mode) error {
	if c.started.Load() {
		return ErrPoolStarted
	}
	WithMode(m)(c.cfg)
	return nil
}

// SetQueueCeiling bounds the task queue. Returns ErrPoolStarted once Start
// has been called.
func (c *Coordinator) SetQueueCeiling(n int) error {
	if c.started.Load() {
		return ErrPoolStarted
	}
	WithQueueCeiling(n)(c.cfg)
	return nil
}

// SetWorkerCeiling bounds the cached-mode worker population. It has no
// effect in Fixed mode. Returns ErrPoolStarted once Start has been called.
func (c *Coordinator) SetWorkerCeiling(n int) error {
	if c.started.Load() {
		return ErrPoolStarted
	}
	WithWorkerCeiling(n)(c.cfg)
	return nil
}

// Start launches initialCount workers and begins accepting submissions.
// initialCount <= 0 means runtime.GOMAXPROCS(0). Returns ErrPoolStarted on
// a second call.
//
// Post-condition: the current and idle counts both equal initialCount.
func (c *Coordinator) Start(initialCount int) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrPoolStarted
	}

	if initialCount <= 0 {
		initialCount = runtime.GOMAXPROCS(0)
	}
	if c.cfg.mode == Cached && initialCount > c.cfg.workerCeiling {
		initialCount = c.cfg.workerCeiling
	}
	c.initialCount = initialCount
	c.running.Store(true)

	c.mu.Lock()
	wrappers := make([]*workerWrapper, 0, initialCount)
	for range initialCount {
		w := newWorkerWrapper(c.workerLoop)
		c.workers[w.id] = w
		wrappers = append(wrappers, w)
	}
	c.currentCount.Store(int64(initialCount))
	c.idleCount.Store(int64(initialCount))
	c.mu.Unlock()

	for _, w := range wrappers {
		w.start()
	}

	logf("started: mode=%s workers=%d queueCeiling=%d", c.cfg.mode, initialCount, c.cfg.queueCeiling)
	return nil
}

// Submit hands a task to the pool and returns its result handle. Submit
// never returns an error: when the queue stays full past the back-pressure
// timeout, or the pool is not running, the returned handle is invalid and
// its Get yields an empty Value immediately.
//
// In Cached mode a submission that finds more queued tasks than idle
// workers spawns one additional worker, up to the worker ceiling.
func (c *Coordinator) Submit(task Task) *ResultHandle {
	if task == nil || !c.running.Load() {
		return newResultHandle(nil, false)
	}

	c.mu.Lock()

	deadline := time.Now().Add(c.cfg.backpressureTimeout)
	for c.running.Load() && len(c.queue) >= c.cfg.queueCeiling {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		c.timedWait(c.notFull, remaining)
	}

	if !c.running.Load() || len(c.queue) >= c.cfg.queueCeiling {
		c.mu.Unlock()
		debugLog("submit rejected: queueSize=%d", c.queueSize.Load())
		return newResultHandle(nil, false)
	}

	sub := &submission{task: task}
	handle := newResultHandle(sub, true)

	c.queue = append(c.queue, sub)
	c.queueSize.Add(1)
	c.notEmpty.Broadcast()

	if c.cfg.mode == Cached &&
		c.queueSize.Load() > c.idleCount.Load() &&
		c.currentCount.Load() < int64(c.cfg.workerCeiling) {
		c.spawnWorkerLocked()
	}

	c.mu.Unlock()
	return handle
}

// spawnWorkerLocked registers and starts one additional cached-mode
// worker. Caller holds c.mu.
func (c *Coordinator) spawnWorkerLocked() {
	w := newWorkerWrapper(c.workerLoop)
	c.workers[w.id] = w
	c.currentCount.Add(1)
	c.idleCount.Add(1)
	w.start()
	logf("worker %d spawned: population=%d", w.id, c.currentCount.Load())
}

// workerLoop is the function every worker goroutine runs: dequeue, execute,
// publish, repeat. Fixed-mode workers wait indefinitely for work; cached-mode
// workers wait in one-second ticks and reclaim themselves once they have
// been idle past the idle timeout while the population exceeds the initial
// count.
func (c *Coordinator) workerLoop(id int64) {
	lastActive := time.Now()

	for {
		c.mu.Lock()
		for len(c.queue) == 0 || !c.running.Load() {
			if !c.running.Load() {
				// Tasks still queued at shutdown are not run; Shutdown
				// invalidates their handles once the population drains.
				c.removeWorkerLocked(id)
				c.mu.Unlock()
				return
			}

			if c.cfg.mode == Cached {
				c.timedWait(c.notEmpty, c.cfg.waitTick())
				if len(c.queue) == 0 && c.running.Load() &&
					c.currentCount.Load() > int64(c.initialCount) &&
					time.Since(lastActive) >= c.cfg.idleTimeout {
					c.removeWorkerLocked(id)
					c.mu.Unlock()
					logf("worker %d reclaimed after idle timeout", id)
					return
				}
			} else {
				c.notEmpty.Wait()
			}
		}

		sub := c.queue[0]
		c.queue[0] = nil // release the reference for GC
		c.queue = c.queue[1:]
		c.queueSize.Add(-1)
		c.idleCount.Add(-1)
		if len(c.queue) > 0 {
			c.notEmpty.Broadcast()
		}
		c.notFull.Broadcast()
		c.mu.Unlock()

		debugLog("worker %d dequeued task, queueSize=%d", id, c.queueSize.Load())
		c.execute(id, sub)

		// The idle clock starts the moment the worker goes quiet, so
		// reclamation measures time since the last completed task.
		lastActive = time.Now()
		c.idleCount.Add(1)
	}
}

// execute runs the task and publishes its return value through the
// submission's handle. A panic inside Run is recovered here: the consumer
// receives an empty Value instead of deadlocking, and the panic is logged
// with its stack.
func (c *Coordinator) execute(id int64, sub *submission) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			logf("worker %d: task panic: %v\n%s", id, r, buf[:n])
			sub.handle.publish(Value{})
		}
	}()

	sub.handle.publish(sub.task.Run())
}

// removeWorkerLocked erases the worker's own map entry, updates the
// population counters, and wakes shutdown if it is waiting for the drain.
// Caller holds c.mu.
func (c *Coordinator) removeWorkerLocked(id int64) {
	delete(c.workers, id)
	c.currentCount.Add(-1)
	c.idleCount.Add(-1)
	c.exit.Broadcast()
}

// timedWait blocks on cond for at most d. Go's sync.Cond has no timed
// wait, so a timer races the broadcast: the callback takes the mutex
// before broadcasting, which closes the window between the caller's
// predicate check and its Wait. Caller holds c.mu and must re-check its
// predicate after return — the wakeup may be the timer, a real broadcast,
// or spurious.
func (c *Coordinator) timedWait(cond *sync.Cond, d time.Duration) {
	t := time.AfterFunc(d, func() {
		c.mu.Lock()
		cond.Broadcast()
		c.mu.Unlock()
	})
	cond.Wait()
	t.Stop()
}

// Shutdown stops the pool: no new submissions are accepted, every waiting
// worker is woken, and the call blocks until the whole population has
// exited — workers finish the task they are executing first. Tasks still
// queued are not run; their handles are invalidated so consumers blocked
// in Get are handed an empty Value instead of waiting forever.
//
// timeout bounds the wait (0 = wait indefinitely). On timeout the drain
// keeps completing in the background and ErrShutdownTimeout is returned.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	if !c.started.Load() {
		return ErrPoolNotStarted
	}
	if !c.running.CompareAndSwap(true, false) {
		return ErrPoolShutdown
	}

	go func() {
		c.mu.Lock()
		c.notEmpty.Broadcast()
		c.notFull.Broadcast()
		for len(c.workers) > 0 {
			c.exit.Wait()
		}

		abandoned := c.queue
		c.queue = nil
		c.queueSize.Store(0)
		c.mu.Unlock()

		for _, sub := range abandoned {
			sub.handle.invalidate()
		}
		if len(abandoned) > 0 {
			logf("shutdown: invalidated %d queued tasks", len(abandoned))
		}
		logf("shutdown complete")
		close(c.done)
	}()

	return waitUntil(c.done, timeout)
}

// Close shuts the pool down, waiting indefinitely for the drain.
func (c *Coordinator) Close() error {
	return c.Shutdown(0)
}

// waitUntil blocks until d is closed or the timeout is reached (0 = no
// timeout).
func waitUntil(d <-chan struct{}, timeout time.Duration) error {
	if timeout <= 0 {
		<-d
		return nil
	}

	select {
	case <-d:
		return nil
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}

// Stats is a point-in-time snapshot of the pool, for monitoring and the
// demo harness. The counters are read atomically but not as one unit, so
// a snapshot taken under churn can be transiently inconsistent.
type Stats struct {
	Mode           Mode
	Running        bool
	CurrentWorkers int
	IdleWorkers    int
	QueueSize      int
}

// Stats returns a snapshot of the pool's population and queue.
func (c *Coordinator) Stats() Stats {
	return Stats{
		Mode:           c.cfg.mode,
		Running:        c.running.Load(),
		CurrentWorkers: int(c.currentCount.Load()),
		IdleWorkers:    int(c.idleCount.Load()),
		QueueSize:      int(c.queueSize.Load()),
	}
}
