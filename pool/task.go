package pool

// Task is the unit of work accepted by the coordinator. Implementations
// must ensure Run is self-contained: any panic it raises is recovered at
// the worker boundary and surfaces to the submitter as an empty, valid
// Value rather than crashing the worker.
type Task interface {
	Run() Value
}

// TaskFunc adapts a plain function to the Task interface, the way users
// most often want to submit work without declaring a named type.
type TaskFunc func() Value

// Run calls f.
func (f TaskFunc) Run() Value { return f() }

// submission pairs an accepted task with the handle its result will be
// published to. The handle holds the submission (keeping the task alive
// until the consumer has retrieved the result); the submission's pointer
// back to the handle is the non-owning direction, so the pair does not
// form a strong cycle of intent even though Go's collector would tolerate
// one.
type submission struct {
	task   Task
	handle *ResultHandle
}

// setResult installs the back-link to the handle. Called once, at
// submission time, before the submission is visible to any worker.
func (s *submission) setResult(h *ResultHandle) {
	s.handle = h
}
