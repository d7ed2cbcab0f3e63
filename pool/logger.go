package pool

import (
	"io"
	"log"
	"os"
	"sync/atomic"
)

// lifecycleLogger traces low-volume pool lifecycle events: start, worker
// spawn and reclamation, shutdown, and panics recovered at the worker
// boundary. High-volume per-task tracing stays behind the debug build tag
// (see debug.go).
var lifecycleLogger atomic.Pointer[log.Logger]

func init() {
	lifecycleLogger.Store(log.New(os.Stderr, "[pool] ", log.Ltime|log.Lmicroseconds))
}

// SetLogOutput redirects lifecycle and panic logging. Pass io.Discard to
// silence the pool entirely (the test suite does this).
func SetLogOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	lifecycleLogger.Store(log.New(w, "[pool] ", log.Ltime|log.Lmicroseconds))
}

func logf(format string, args ...any) {
	lifecycleLogger.Load().Printf(format, args...)
}
