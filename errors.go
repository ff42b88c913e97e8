package cppq

import "fmt"

// StoreError wraps a failure talking to the underlying store: a connection
// failure, a rejected transaction, or an unexpected reply shape that isn't
// specifically a ShapeError (see below). Enqueue returns it directly; the
// server loop and recovery sweeper log it and continue.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("cppq: store error during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ConfigError reports a dequeued task whose type has no registered handler.
// It is routed straight to Failed without consuming a retry attempt.
type ConfigError struct {
	TaskType string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("cppq: no handler registered for task type %q", e.TaskType)
}

// ShapeError reports a dequeue transaction whose reply carried the wrong
// number of sub-replies, or whose LREM removed nothing (see queue.go).
// Dequeue and DequeueScheduled return it together with a nil task; the
// server loop passes it to Hooks.OnStoreError and carries on.
type ShapeError struct {
	Queue    string
	Expected int
	Got      int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("cppq: queue %q: expected %d transaction sub-replies, got %d", e.Queue, e.Expected, e.Got)
}
