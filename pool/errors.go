package pool

import "errors"

var (
	// ErrPoolStarted is returned by configuration setters once Start has
	// been called; mode and ceilings are fixed for the pool's lifetime.
	ErrPoolStarted = errors.New("pool already started")

	// ErrPoolNotStarted is returned by Shutdown when Start was never called.
	ErrPoolNotStarted = errors.New("pool not started")

	// ErrPoolShutdown is returned by Shutdown when the pool has already
	// been shut down.
	ErrPoolShutdown = errors.New("pool already shut down")

	// ErrShutdownTimeout is returned by Shutdown when workers did not all
	// exit within the given timeout.
	ErrShutdownTimeout = errors.New("error in shutting down: timeout reached")

	// ErrSubmissionRejected marks a submission the pool refused, either
	// because the queue stayed full past the back-pressure timeout or
	// because the pool was not running. Submit itself never returns an
	// error; rejection surfaces as an invalid ResultHandle, and this
	// sentinel exists for retry layers and log messages that need to name
	// the condition.
	ErrSubmissionRejected = errors.New("submission rejected")
)
