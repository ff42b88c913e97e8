package cppq

import (
	"context"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

// CronOptions configures the CronArmer's sweep cadence.
type CronOptions struct {
	// CheckEvery is the arming sweep period. Defaults to 5s if zero.
	CheckEvery time.Duration
}

// runCronArmer resolves the Open Question spec.md leaves unanswered (cron
// tasks are stored but never evaluated). It periodically scans each queue's
// scheduled list for tasks carrying a `cron` field but no `schedule` field
// — freshly enqueued recurring tasks and occurrences re-armed after a prior
// run reached a terminal state — and arms them with their next fire time.
// Once armed, the existing scheduled-dequeue predicate (§4.4) picks the task
// up exactly as it would a plain delayed task; no change to selection logic.
func runCronArmer(ctx context.Context, s Store, queues []QueuePriority, opts CronOptions, hooks *Hooks) {
	interval := opts.CheckEvery
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, q := range queues {
				armQueue(ctx, s, q.Name, hooks)
			}
		}
	}
}

func armQueue(ctx context.Context, s Store, queue string, hooks *Hooks) {
	uuids, err := s.LRange(ctx, scheduledKey(queue), 0, -1).Result()
	if err != nil {
		hooks.storeError(&StoreError{Op: "cron scan", Err: err})
		return
	}

	now := time.Now()
	for _, uuid := range uuids {
		key := taskKey(queue, uuid)
		fields, err := s.HGetAll(ctx, key).Result()
		if err != nil {
			hooks.storeError(&StoreError{Op: "cron read task", Err: err})
			continue
		}
		expr := fields["cron"]
		if expr == "" {
			continue
		}
		if sched, ok := fields["schedule"]; ok && sched != "" {
			continue
		}

		schedule, err := cron.ParseStandard(expr)
		if err != nil {
			hooks.storeError(&StoreError{Op: "cron parse", Err: err})
			continue
		}
		next := schedule.Next(now).UnixMilli()

		if err := s.HSet(ctx, key, "schedule", strconv.FormatInt(next, 10)).Err(); err != nil {
			hooks.storeError(&StoreError{Op: "cron arm", Err: err})
		}
	}
}
