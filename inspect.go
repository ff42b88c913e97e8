package cppq

import "context"

// GetTask reads back a task's hash record. It returns nil, nil if the task
// does not exist (expired, purged, or never enqueued under this UUID).
func GetTask(ctx context.Context, s Store, queue, uuid string) (*Task, error) {
	fields, err := s.HGetAll(ctx, taskKey(queue, uuid)).Result()
	if err != nil {
		return nil, &StoreError{Op: "get task", Err: err}
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return taskFromHash(fields), nil
}

// QueueDepth reports the length of each of a queue's five lists.
type QueueDepth struct {
	Pending   int64
	Scheduled int64
	Active    int64
	Completed int64
	Failed    int64
}

// GetQueueDepth returns the current list lengths for queue.
func GetQueueDepth(ctx context.Context, s Store, queue string) (QueueDepth, error) {
	pipe := s.Pipeline()
	pending := pipe.LLen(ctx, pendingKey(queue))
	scheduled := pipe.LLen(ctx, scheduledKey(queue))
	active := pipe.LLen(ctx, activeKey(queue))
	completed := pipe.LLen(ctx, completedKey(queue))
	failed := pipe.LLen(ctx, failedKey(queue))

	if _, err := pipe.Exec(ctx); err != nil {
		return QueueDepth{}, &StoreError{Op: "queue depth", Err: err}
	}

	return QueueDepth{
		Pending:   pending.Val(),
		Scheduled: scheduled.Val(),
		Active:    active.Val(),
		Completed: completed.Val(),
		Failed:    failed.Val(),
	}, nil
}

// RegisteredQueue describes one entry of the cppq:queues registry.
type RegisteredQueue struct {
	Name     string
	Priority int
	Paused   bool
}

// ListQueues returns every queue that has ever been registered via
// Server.Run/registerQueues, along with its priority and current pause state.
func ListQueues(ctx context.Context, s Store) ([]RegisteredQueue, error) {
	members, err := s.SMembers(ctx, queuesKey).Result()
	if err != nil {
		return nil, &StoreError{Op: "list queues", Err: err}
	}

	result := make([]RegisteredQueue, 0, len(members))
	for _, m := range members {
		name, priority := splitQueueMember(m)
		paused, err := IsPaused(ctx, s, name)
		if err != nil {
			return nil, err
		}
		result = append(result, RegisteredQueue{Name: name, Priority: priority, Paused: paused})
	}
	return result, nil
}

func splitQueueMember(member string) (name string, priority int) {
	for i := len(member) - 1; i >= 0; i-- {
		if member[i] == ':' {
			name = member[:i]
			for _, c := range member[i+1:] {
				if c < '0' || c > '9' {
					return name, 0
				}
				priority = priority*10 + int(c-'0')
			}
			return name, priority
		}
	}
	return member, 0
}
