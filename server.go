package cppq

import (
	"context"
	"sort"
	"time"
)

// Hooks lets a host program observe state transitions without the core
// engine importing any particular metrics or event-publishing package.
// Every field is optional; a nil Hooks (or nil field) is a no-op. This is
// how internal/metrics and internal/events are wired into the server loop,
// pool, recovery sweeper and CronArmer from cmd/server, keeping this package
// free of a hard dependency on either.
type Hooks struct {
	OnEnqueued   func(queue string, t *Task)
	OnDequeued   func(queue string, t *Task)
	OnCompleted  func(queue string, t *Task)
	OnFailed     func(queue string, t *Task, cause error)
	OnRetried    func(queue string, t *Task, cause error)
	OnRecovered  func(queue string, uuid string)
	OnStoreError func(err error)
}

func (h *Hooks) completed(queue string, t *Task) {
	if h != nil && h.OnCompleted != nil {
		h.OnCompleted(queue, t)
	}
}

func (h *Hooks) failed(queue string, t *Task, cause error) {
	if h != nil && h.OnFailed != nil {
		h.OnFailed(queue, t, cause)
	}
}

func (h *Hooks) retried(queue string, t *Task, cause error) {
	if h != nil && h.OnRetried != nil {
		h.OnRetried(queue, t, cause)
	}
}

func (h *Hooks) recovered(queue string, uuid string) {
	if h != nil && h.OnRecovered != nil {
		h.OnRecovered(queue, uuid)
	}
}

func (h *Hooks) dequeued(queue string, t *Task) {
	if h != nil && h.OnDequeued != nil {
		h.OnDequeued(queue, t)
	}
}

func (h *Hooks) storeError(err error) {
	if h != nil && h.OnStoreError != nil {
		h.OnStoreError(err)
	}
}

// ServerConfig supplies everything Server.Run needs beyond the Store and
// HandlerRegistry: the queues to service (with priority), worker pool size,
// recovery cadence, and cron-arming cadence.
type ServerConfig struct {
	Queues      []QueuePriority
	Concurrency int
	Recovery    RecoveryOptions
	Cron        CronOptions
	Hooks       *Hooks
}

// Server runs the main dispatch loop of spec §4.6: per 100ms tick, iterate
// queues in descending priority, skip paused queues, prefer a scheduled-due
// task over a pending one, and submit at most one task to the pool before
// moving to the next tick.
type Server struct {
	store    Store
	reg      *HandlerRegistry
	queues   []QueuePriority
	pool     *pool
	hooks    *Hooks
	recOpts  RecoveryOptions
	cronOpts CronOptions
}

// NewServer builds a Server. Queues are sorted by descending priority, with
// ties kept in the order they were supplied, matching spec §3's "ties are
// broken by insertion order of the configuration mapping".
func NewServer(store Store, reg *HandlerRegistry, cfg ServerConfig) *Server {
	queues := make([]QueuePriority, len(cfg.Queues))
	copy(queues, cfg.Queues)
	sort.SliceStable(queues, func(i, j int) bool {
		return queues[i].Priority > queues[j].Priority
	})

	return &Server{
		store:    store,
		reg:      reg,
		queues:   queues,
		pool:     newPool(store, reg, cfg.Hooks, cfg.Concurrency),
		hooks:    cfg.Hooks,
		recOpts:  cfg.Recovery,
		cronOpts: cfg.Cron,
	}
}

// Run loads the scheduled-selection script, registers queues into the
// well-known set, starts the recovery sweeper and CronArmer in the
// background, then ticks the main loop until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	if err := loadScheduledScript(ctx, s.store); err != nil {
		return &StoreError{Op: "load scheduled script", Err: err}
	}
	if err := registerQueues(ctx, s.store, s.queues); err != nil {
		return err
	}

	go runRecovery(ctx, s.store, s.queues, s.recOpts, s.hooks)
	go runCronArmer(ctx, s.store, s.queues, s.cronOpts, s.hooks)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	defer s.pool.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one pass of the main loop: the first queue (in priority order)
// that isn't paused and yields a task gets that task submitted to the pool,
// then the tick ends. Higher-priority queues are re-evaluated on the very
// next tick, which is what preserves priority responsiveness without
// starving lower-priority queues.
func (s *Server) tick(ctx context.Context) {
	for _, q := range s.queues {
		paused, err := IsPaused(ctx, s.store, q.Name)
		if err != nil {
			s.hooks.storeError(err)
			continue
		}
		if paused {
			continue
		}

		t, err := DequeueScheduled(ctx, s.store, q.Name)
		if err != nil {
			s.hooks.storeError(err)
		}
		if t == nil {
			t, err = Dequeue(ctx, s.store, q.Name)
			if err != nil {
				s.hooks.storeError(err)
			}
		}
		if t == nil {
			continue
		}

		s.hooks.dequeued(q.Name, t)
		s.pool.submit(ctx, q.Name, t)
		return
	}
}

// Enqueue is a convenience wrapper around the package-level Enqueue that
// also fires OnEnqueued, for callers who want the same instrumentation the
// server loop gets without tracking a Hooks pointer themselves.
func (s *Server) Enqueue(ctx context.Context, t *Task, queue string, sched ...Schedule) error {
	if err := Enqueue(ctx, s.store, t, queue, sched...); err != nil {
		return err
	}
	if s.hooks != nil && s.hooks.OnEnqueued != nil {
		s.hooks.OnEnqueued(queue, t)
	}
	return nil
}
