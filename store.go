package cppq

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store is the contract the core engine depends on: pipelined transactions,
// scripting, and the list/hash/set primitives used by every operation below.
// go-redis's own client interface already exposes exactly this surface, so
// it is used directly rather than a hand-rolled subset.
type Store = redis.UniversalClient

const keyPrefix = "cppq"

func pendingKey(queue string) string {
	return fmt.Sprintf("%s:%s:pending", keyPrefix, queue)
}

func scheduledKey(queue string) string {
	return fmt.Sprintf("%s:%s:scheduled", keyPrefix, queue)
}

func activeKey(queue string) string {
	return fmt.Sprintf("%s:%s:active", keyPrefix, queue)
}

func completedKey(queue string) string {
	return fmt.Sprintf("%s:%s:completed", keyPrefix, queue)
}

func failedKey(queue string) string {
	return fmt.Sprintf("%s:%s:failed", keyPrefix, queue)
}

func taskKey(queue, uuid string) string {
	return fmt.Sprintf("%s:%s:task:%s", keyPrefix, queue, uuid)
}

const queuesKey = keyPrefix + ":queues"
const pausedKey = keyPrefix + ":queues:paused"

// registerQueues publishes each queue and its priority into the well-known
// `cppq:queues` set as "<name>:<priority>", per spec §4.6.
func registerQueues(ctx context.Context, s Store, queues []QueuePriority) error {
	members := make([]interface{}, 0, len(queues))
	for _, q := range queues {
		members = append(members, fmt.Sprintf("%s:%d", q.Name, q.Priority))
	}
	if len(members) == 0 {
		return nil
	}
	if err := s.SAdd(ctx, queuesKey, members...).Err(); err != nil {
		return &StoreError{Op: "register queues", Err: err}
	}
	return nil
}
