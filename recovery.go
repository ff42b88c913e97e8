package cppq

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RecoveryOptions configures the recovery sweeper's cadence and liveness
// timeout.
type RecoveryOptions struct {
	// TimeoutMs is the active-dwell threshold past which a task is
	// considered orphaned and demoted back to pending or scheduled.
	TimeoutMs int64
	// CheckEvery is the sweep period. Defaults to 10s if zero.
	CheckEvery time.Duration
}

// runRecovery runs the sweeper loop until ctx is canceled. It is started by
// Server.Run as a background goroutine, matching the reference's
// recovery() loop pushed onto the thread pool at startup.
func runRecovery(ctx context.Context, s Store, queues []QueuePriority, opts RecoveryOptions, hooks *Hooks) {
	interval := opts.CheckEvery
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, q := range queues {
				sweepQueue(ctx, s, q.Name, opts.TimeoutMs, hooks)
			}
		}
	}
}

// retried is deliberately NOT incremented here, per spec §4.7: recovery
// reclaims liveness loss, not handler failure.
func sweepQueue(ctx context.Context, s Store, queue string, timeoutMs int64, hooks *Hooks) {
	uuids, err := s.LRange(ctx, activeKey(queue), 0, -1).Result()
	if err != nil {
		hooks.storeError(&StoreError{Op: "recovery scan", Err: err})
		return
	}

	now := time.Now().UnixMilli()
	for _, uuid := range uuids {
		key := taskKey(queue, uuid)
		dequeuedAtMsStr, err := s.HGet(ctx, key, "dequeuedAtMs").Result()
		if err != nil && err != redis.Nil {
			hooks.storeError(&StoreError{Op: "recovery read dequeuedAtMs", Err: err})
			continue
		}
		dequeuedAtMs, _ := strconv.ParseInt(dequeuedAtMsStr, 10, 64)
		if dequeuedAtMs+timeoutMs >= now {
			continue
		}

		schedule, err := s.HGet(ctx, key, "schedule").Result()
		if err != nil && err != redis.Nil {
			hooks.storeError(&StoreError{Op: "recovery read schedule", Err: err})
			continue
		}

		destKey := pendingKey(queue)
		if schedule != "" {
			destKey = scheduledKey(queue)
		}

		_, err = s.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.LRem(ctx, activeKey(queue), 1, uuid)
			pipe.HSet(ctx, key, "state", Pending.String())
			pipe.LPush(ctx, destKey, uuid)
			return nil
		})
		if err != nil {
			hooks.storeError(&StoreError{Op: "recovery demote", Err: err})
			continue
		}
		hooks.recovered(queue, uuid)
	}
}
