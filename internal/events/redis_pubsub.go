package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jafarlihi/cppq-go/internal/logger"
)

const channelPrefix = "cppq:events:"

// RedisPubSub implements Publisher over Redis Pub/Sub, one channel per
// queue (`cppq:events:<queue>`), matching the key-layout convention the
// rest of this system uses.
type RedisPubSub struct {
	client *redis.Client
}

// NewRedisPubSub wraps an existing client. It does not take ownership of
// the client's lifecycle.
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{client: client}
}

func (r *RedisPubSub) channelName(queue string) string {
	return channelPrefix + queue
}

// Publish publishes one event on its queue's channel.
func (r *RedisPubSub) Publish(ctx context.Context, event *Event) error {
	data, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channelName(event.Queue), data).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	logger.Debug().
		Str("event_type", string(event.Type)).
		Str("queue", event.Queue).
		Msg("event published")
	return nil
}

// Subscribe opens a stream of events for one queue. The returned channel is
// closed when ctx is canceled.
func (r *RedisPubSub) Subscribe(ctx context.Context, queue string) (<-chan *Event, error) {
	pubsub := r.client.Subscribe(ctx, r.channelName(queue))
	if _, err := pubsub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	eventCh := make(chan *Event, 100)
	go func() {
		defer close(eventCh)
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				event, err := FromJSON([]byte(msg.Payload))
				if err != nil {
					logger.Error().Err(err).Msg("failed to parse event")
					continue
				}
				select {
				case eventCh <- event:
				default:
					logger.Warn().Str("event_type", string(event.Type)).Msg("event channel full, dropping event")
				}
			}
		}
	}()

	return eventCh, nil
}

// Close is a no-op: RedisPubSub does not own any per-subscription state
// beyond the goroutines started by Subscribe, which exit when their ctx is
// canceled.
func (r *RedisPubSub) Close() error {
	return nil
}

// PublishTaskEvent is a convenience wrapper used by the Hooks glue in
// cmd/server.
func (r *RedisPubSub) PublishTaskEvent(ctx context.Context, eventType EventType, queue, taskUUID, taskType string, extra map[string]interface{}) error {
	event := NewEvent(eventType, queue, TaskEventData(taskUUID, taskType, extra))
	return r.Publish(ctx, event)
}
