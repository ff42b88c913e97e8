package adminapi

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jafarlihi/cppq-go"
	"github.com/jafarlihi/cppq-go/internal/adminapi/websocket"
	"github.com/jafarlihi/cppq-go/internal/logger"
)

// snapshotInterval controls how often live-stats clients receive an
// updated queue depth snapshot.
const snapshotInterval = 2 * time.Second

// runSnapshotLoop periodically broadcasts a JSON queue depth snapshot to
// every connected websocket client, until ctx is cancelled.
func runSnapshotLoop(ctx context.Context, store cppq.Store, hub *websocket.Hub) {
	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if hub.ClientCount() == 0 {
				continue
			}
			data, err := buildSnapshot(ctx, store)
			if err != nil {
				logger.Error().Err(err).Msg("failed to build queue depth snapshot")
				continue
			}
			hub.Broadcast(data)
		}
	}
}

func buildSnapshot(ctx context.Context, store cppq.Store) ([]byte, error) {
	queues, err := cppq.ListQueues(ctx, store)
	if err != nil {
		return nil, err
	}

	snapshot := make(map[string]interface{}, len(queues))
	for _, q := range queues {
		depth, err := cppq.GetQueueDepth(ctx, store, q.Name)
		if err != nil {
			return nil, err
		}
		snapshot[q.Name] = map[string]interface{}{
			"priority":  q.Priority,
			"paused":    q.Paused,
			"pending":   depth.Pending,
			"scheduled": depth.Scheduled,
			"active":    depth.Active,
			"completed": depth.Completed,
			"failed":    depth.Failed,
		}
	}

	return json.Marshal(map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"queues":    snapshot,
	})
}
