package cppq

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Enqueue atomically materializes a task's hash and queue membership.
// The task's State and, for DelayedAt/Cron scheduling, its Schedule/Cron
// fields are set before the transaction commits (invariant I4).
func Enqueue(ctx context.Context, s Store, t *Task, queue string, sched ...Schedule) error {
	var mode ScheduleMode = Immediate
	var sc Schedule
	if len(sched) > 0 {
		sc = sched[0]
		mode = sc.Mode
	}

	switch mode {
	case Immediate:
		t.State = Pending
	case DelayedAt:
		t.State = Scheduled
		ms := sc.At.UnixMilli()
		t.Schedule = &ms
	case Cron:
		t.State = Scheduled
		t.Cron = sc.Cron
	}

	_, err := s.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if mode == Immediate {
			pipe.LPush(ctx, pendingKey(queue), t.UUID)
		} else {
			pipe.LPush(ctx, scheduledKey(queue), t.UUID)
		}
		pipe.HSet(ctx, taskKey(queue, t.UUID), t.hashFields())
		return nil
	})
	if err != nil {
		return &StoreError{Op: "enqueue", Err: err}
	}
	return nil
}

// Dequeue performs the pending-dequeue protocol of spec §4.3: peek the
// oldest pending UUID, then promote it to Active inside a transaction whose
// sub-reply count is checked against the expected shape. Returns (nil, nil)
// when there is no task to dequeue — this is not an error. The transaction
// also reads `cron` so a recurring task's in-memory Task carries its
// expression forward for pool.rearmCron.
func Dequeue(ctx context.Context, s Store, queue string) (*Task, error) {
	peek, err := s.LRange(ctx, pendingKey(queue), -1, -1).Result()
	if err != nil {
		return nil, &StoreError{Op: "peek pending", Err: err}
	}
	if len(peek) == 0 {
		return nil, nil
	}
	uuid := peek[0]
	now := time.Now().UnixMilli()

	key := taskKey(queue, uuid)
	cmds, err := s.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, pendingKey(queue), 1, uuid)
		pipe.HGet(ctx, key, "type")
		pipe.HGet(ctx, key, "payload")
		pipe.HGet(ctx, key, "state")
		pipe.HGet(ctx, key, "maxRetry")
		pipe.HGet(ctx, key, "retried")
		pipe.HGet(ctx, key, "dequeuedAtMs")
		pipe.HGet(ctx, key, "cron")
		pipe.HSet(ctx, key, "dequeuedAtMs", now)
		pipe.HSet(ctx, key, "state", Active.String())
		pipe.LPush(ctx, activeKey(queue), uuid)
		return nil
	})
	if err != nil {
		return nil, &StoreError{Op: "dequeue pending", Err: err}
	}
	if len(cmds) != 11 {
		return nil, &ShapeError{Queue: queue, Expected: 11, Got: len(cmds)}
	}
	if n, _ := cmds[0].(*redis.IntCmd).Result(); n == 0 {
		return nil, &ShapeError{Queue: queue, Expected: 11, Got: len(cmds)}
	}

	fields := extractHashFields(cmds[1:6], []string{"type", "payload", "state", "maxRetry", "retried"})
	fields["cron"] = hgetResult(cmds[7])
	fields["dequeuedAtMs"] = strconv.FormatInt(now, 10)
	fields["uuid"] = uuid
	t := taskFromHash(fields)
	t.State = Active
	t.DequeuedAtMs = now
	return t, nil
}

// DequeueScheduled performs the scheduled-dequeue protocol of spec §4.4:
// EVALSHA the cached selection script, then promote the returned UUID the
// same way Dequeue does, with two extra HGETs for `schedule` and `cron`
// (12 sub-replies).
func DequeueScheduled(ctx context.Context, s Store, queue string) (*Task, error) {
	uuid, err := evalScheduledScript(ctx, s, queue)
	if err != nil {
		return nil, err
	}
	if uuid == "" {
		return nil, nil
	}
	now := time.Now().UnixMilli()

	key := taskKey(queue, uuid)
	cmds, err := s.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, scheduledKey(queue), 1, uuid)
		pipe.HGet(ctx, key, "type")
		pipe.HGet(ctx, key, "payload")
		pipe.HGet(ctx, key, "state")
		pipe.HGet(ctx, key, "maxRetry")
		pipe.HGet(ctx, key, "retried")
		pipe.HGet(ctx, key, "dequeuedAtMs")
		pipe.HGet(ctx, key, "schedule")
		pipe.HGet(ctx, key, "cron")
		pipe.HSet(ctx, key, "dequeuedAtMs", now)
		pipe.HSet(ctx, key, "state", Active.String())
		pipe.LPush(ctx, activeKey(queue), uuid)
		return nil
	})
	if err != nil {
		return nil, &StoreError{Op: "dequeue scheduled", Err: err}
	}
	if len(cmds) != 12 {
		return nil, &ShapeError{Queue: queue, Expected: 12, Got: len(cmds)}
	}
	if n, _ := cmds[0].(*redis.IntCmd).Result(); n == 0 {
		return nil, &ShapeError{Queue: queue, Expected: 12, Got: len(cmds)}
	}

	fields := extractHashFields(cmds[1:6], []string{"type", "payload", "state", "maxRetry", "retried"})
	fields["schedule"] = hgetResult(cmds[7])
	fields["cron"] = hgetResult(cmds[8])
	fields["dequeuedAtMs"] = strconv.FormatInt(now, 10)
	fields["uuid"] = uuid
	t := taskFromHash(fields)
	t.State = Active
	t.DequeuedAtMs = now
	return t, nil
}

func extractHashFields(cmds []redis.Cmder, names []string) map[string]string {
	out := make(map[string]string, len(names))
	for i, name := range names {
		out[name] = hgetResult(cmds[i])
	}
	return out
}

func hgetResult(cmd redis.Cmder) string {
	if hg, ok := cmd.(*redis.StringCmd); ok {
		v, _ := hg.Result()
		return v
	}
	return ""
}

