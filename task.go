package cppq

import (
	"strconv"

	"github.com/google/uuid"
)

// Task is a unit of work. Payload is an opaque, caller-encoded string —
// cppq neither parses nor validates it; callers typically JSON-encode their
// own request shape into it before calling Enqueue.
type Task struct {
	UUID    string
	Type    string
	Payload string
	State   State

	MaxRetry uint64
	Retried  uint64

	// DequeuedAtMs is the wall-clock ms-since-epoch of the most recent
	// promotion to Active. Zero until the task is first dequeued.
	DequeuedAtMs int64

	// Schedule is the ms-since-epoch at which a delayed or cron-armed task
	// becomes due. nil for an immediate task, or for a cron task not yet
	// armed by the CronArmer (see cron.go).
	Schedule *int64

	// Cron is the opaque cron expression recorded at enqueue time for a
	// recurring task. Empty for non-recurring tasks.
	Cron string

	// Result is written by the handler on success; meaningful only once
	// State == Completed.
	Result string
}

// NewTask creates a task with a freshly generated UUID and state Unknown,
// matching the pre-enqueue state spec.md describes: "uuid already
// generated, state=Unknown".
func NewTask(taskType, payload string, maxRetry uint64) *Task {
	return &Task{
		UUID:     uuid.New().String(),
		Type:     taskType,
		Payload:  payload,
		State:    Unknown,
		MaxRetry: maxRetry,
	}
}

// CanRetry reports whether another attempt is permitted (invariant I2:
// retried <= maxRetry).
func (t *Task) CanRetry() bool {
	return t.Retried < t.MaxRetry
}

// hashFields returns the lowercase field → string-value pairs to HSET when
// materializing the task hash at enqueue time. All values are stored as
// strings, integers in base 10, per spec.md §4.1.
func (t *Task) hashFields() map[string]string {
	fields := map[string]string{
		"uuid":         t.UUID,
		"type":         t.Type,
		"payload":      t.Payload,
		"state":        t.State.String(),
		"maxRetry":     strconv.FormatUint(t.MaxRetry, 10),
		"retried":      strconv.FormatUint(t.Retried, 10),
		"dequeuedAtMs": strconv.FormatInt(t.DequeuedAtMs, 10),
	}
	if t.Schedule != nil {
		fields["schedule"] = strconv.FormatInt(*t.Schedule, 10)
	}
	if t.Cron != "" {
		fields["cron"] = t.Cron
	}
	return fields
}

// taskFromHash parses a complete hash (as returned by HGETALL) back into a
// Task. An unknown or missing state string decodes to Unknown, per
// spec.md §4.1.
func taskFromHash(fields map[string]string) *Task {
	t := &Task{
		UUID:    fields["uuid"],
		Type:    fields["type"],
		Payload: fields["payload"],
		State:   ParseState(fields["state"]),
		Cron:    fields["cron"],
		Result:  fields["result"],
	}
	t.MaxRetry, _ = strconv.ParseUint(fields["maxRetry"], 10, 64)
	t.Retried, _ = strconv.ParseUint(fields["retried"], 10, 64)
	t.DequeuedAtMs, _ = strconv.ParseInt(fields["dequeuedAtMs"], 10, 64)
	if raw, ok := fields["schedule"]; ok && raw != "" {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			t.Schedule = &ms
		}
	}
	return t
}
