package cppq

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/redis/go-redis/v9"
)

// dispatch is one unit of work handed from the server loop to the pool.
type dispatch struct {
	queue string
	task  *Task
}

// pool is a bounded set of worker goroutines fed exclusively by the server
// loop's per-tick submission (spec §4.6) — it never dequeues on its own.
type pool struct {
	store   Store
	reg     *HandlerRegistry
	hooks   *Hooks
	work    chan dispatch
	wg      sync.WaitGroup
}

func newPool(store Store, reg *HandlerRegistry, hooks *Hooks, concurrency int) *pool {
	if concurrency <= 0 {
		concurrency = 1
	}
	p := &pool{
		store: store,
		reg:   reg,
		hooks: hooks,
		work:  make(chan dispatch, concurrency),
	}
	for i := 0; i < concurrency; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *pool) worker() {
	defer p.wg.Done()
	for d := range p.work {
		p.runTask(d.queue, d.task)
	}
}

// submit hands one task to the pool. It blocks once every worker is busy
// and the work channel's buffer (one slot per worker) is full, which is the
// pool's only backpressure mechanism against the server loop.
func (p *pool) submit(ctx context.Context, queue string, t *Task) {
	select {
	case p.work <- dispatch{queue: queue, task: t}:
	case <-ctx.Done():
	}
}

// shutdown closes the work channel and waits for in-flight tasks to drain.
func (p *pool) shutdown() {
	close(p.work)
	p.wg.Wait()
}

// runTask is the task runner of spec §4.5: look up the handler, invoke it
// with panic recovery, and commit the resulting terminal or retry state.
func (p *pool) runTask(queue string, t *Task) {
	ctx := context.Background()

	handler, ok := p.reg.lookup(t.Type)
	if !ok {
		p.fail(ctx, queue, t, &ConfigError{TaskType: t.Type})
		return
	}

	err := p.invoke(ctx, handler, t)
	if err != nil {
		p.retryOrFail(ctx, queue, t, err)
		return
	}
	p.complete(ctx, queue, t)
}

func (p *pool) invoke(ctx context.Context, h Handler, t *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v\n%s", r, debug.Stack())
		}
	}()
	return h(ctx, t)
}

func (p *pool) complete(ctx context.Context, queue string, t *Task) {
	t.State = Completed
	_, err := p.store.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, activeKey(queue), 1, t.UUID)
		pipe.HSet(ctx, taskKey(queue, t.UUID), "state", Completed.String())
		pipe.HSet(ctx, taskKey(queue, t.UUID), "result", t.Result)
		pipe.LPush(ctx, completedKey(queue), t.UUID)
		return nil
	})
	if err != nil {
		p.hooks.storeError(&StoreError{Op: "commit completed", Err: err})
		return
	}
	p.hooks.completed(queue, t)
	p.rearmCron(ctx, queue, t)
}

// fail routes a task straight to Failed without consuming a retry, used for
// ConfigError (spec §7: "SHOULD treat this as a permanent failure").
func (p *pool) fail(ctx context.Context, queue string, t *Task, cause error) {
	t.State = Failed
	_, err := p.store.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, activeKey(queue), 1, t.UUID)
		pipe.HSet(ctx, taskKey(queue, t.UUID), "state", Failed.String())
		pipe.LPush(ctx, failedKey(queue), t.UUID)
		return nil
	})
	if err != nil {
		p.hooks.storeError(&StoreError{Op: "commit failed", Err: err})
		return
	}
	p.hooks.failed(queue, t, cause)
	p.rearmCron(ctx, queue, t)
}

func (p *pool) retryOrFail(ctx context.Context, queue string, t *Task, cause error) {
	t.Retried++
	terminal := !t.CanRetry()
	if terminal {
		t.State = Failed
	} else {
		t.State = Pending
	}

	_, err := p.store.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, activeKey(queue), 1, t.UUID)
		pipe.HSet(ctx, taskKey(queue, t.UUID), "retried", t.Retried)
		pipe.HSet(ctx, taskKey(queue, t.UUID), "state", t.State.String())
		if terminal {
			pipe.LPush(ctx, failedKey(queue), t.UUID)
		} else {
			pipe.LPush(ctx, pendingKey(queue), t.UUID)
		}
		return nil
	})
	if err != nil {
		p.hooks.storeError(&StoreError{Op: "commit retry", Err: err})
		return
	}
	if terminal {
		p.hooks.failed(queue, t, cause)
		p.rearmCron(ctx, queue, t)
	} else {
		p.hooks.retried(queue, t, cause)
	}
}

// rearmCron re-enqueues a fresh occurrence of a cron-scheduled task once the
// prior occurrence reaches a terminal state, per spec_full §2.1: the cron
// field is carried forward, the schedule field is left unset so the
// CronArmer computes the next fire time.
func (p *pool) rearmCron(ctx context.Context, queue string, t *Task) {
	if t.Cron == "" {
		return
	}
	next := NewTask(t.Type, t.Payload, t.MaxRetry)
	if err := Enqueue(ctx, p.store, next, queue, ScheduleCron(t.Cron)); err != nil {
		p.hooks.storeError(err)
	}
}
