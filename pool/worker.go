package pool

import "sync/atomic"

// workerIDCounter hands out stable worker identifiers. Monotonic across
// every coordinator in the process, so ids in logs never collide.
var workerIDCounter atomic.Int64

// workerWrapper owns one worker goroutine. It carries the loop function
// and the worker's id; the coordinator keys its worker map by that id so
// a terminating worker can erase its own entry without scanning.
//
// The wrapper has no teardown of its own: the goroutine removes the map
// entry itself before returning, and the coordinator's shutdown waits on
// the exit condition until the map is empty.
type workerWrapper struct {
	id   int64
	loop func(id int64)
}

func newWorkerWrapper(loop func(id int64)) *workerWrapper {
	return &workerWrapper{
		id:   workerIDCounter.Add(1),
		loop: loop,
	}
}

// start spawns the worker goroutine bound to the loop function.
func (w *workerWrapper) start() {
	go w.loop(w.id)
}
