package cppq

import "context"

// Handler processes one task. It signals success by returning nil and
// retryable failure by returning a non-nil error. A handler may mutate
// t.Result before returning nil; it is persisted as the task's result field.
//
// The pool passes context.Background() as ctx, so it is never canceled:
// there is no per-task deadline, and pool shutdown does not cancel it but
// waits for running handlers to return.
type Handler func(ctx context.Context, t *Task) error

// HandlerRegistry is a process-wide type→Handler mapping. Registration is
// not safe for concurrent use against dispatch; register every handler
// before calling Server.Run.
type HandlerRegistry struct {
	handlers map[string]Handler
}

// NewHandlerRegistry returns an empty registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]Handler)}
}

// Register binds a task type to a handler.
func (r *HandlerRegistry) Register(taskType string, h Handler) {
	r.handlers[taskType] = h
}

// lookup returns the handler for a type and whether it was found.
func (r *HandlerRegistry) lookup(taskType string) (Handler, bool) {
	h, ok := r.handlers[taskType]
	return h, ok
}
