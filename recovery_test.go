package cppq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepQueue_ReclaimsStalledTask(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := NewTask("t", "p", 3)
	require.NoError(t, Enqueue(ctx, store, seed, "default"))
	task := dequeueSync(t, store, "default")

	stale := time.Now().Add(-time.Minute).UnixMilli()
	require.NoError(t, store.HSet(ctx, taskKey("default", task.UUID), "dequeuedAtMs", stale).Err())

	sweepQueue(ctx, store, "default", 1000, nil)

	got, err := GetTask(ctx, store, "default", task.UUID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, Pending, got.State)
	assert.Equal(t, uint64(0), got.Retried, "recovery must not consume a retry attempt")

	depth, err := GetQueueDepth(ctx, store, "default")
	require.NoError(t, err)
	assert.Equal(t, int64(0), depth.Active)
	assert.Equal(t, int64(1), depth.Pending)
}

func TestSweepQueue_LeavesFreshTaskAlone(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := NewTask("t", "p", 3)
	require.NoError(t, Enqueue(ctx, store, seed, "default"))
	task := dequeueSync(t, store, "default")

	sweepQueue(ctx, store, "default", 30000, nil)

	got, err := GetTask(ctx, store, "default", task.UUID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, Active, got.State)
}

func TestSweepQueue_ReclaimedScheduledGoesToScheduled(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, loadScheduledScript(ctx, store))

	seed := NewTask("t", "p", 3)
	require.NoError(t, Enqueue(ctx, store, seed, "default", ScheduleDelayed(time.Now().Add(-time.Second))))

	task, err := DequeueScheduled(ctx, store, "default")
	require.NoError(t, err)
	require.NotNil(t, task)

	stale := time.Now().Add(-time.Minute).UnixMilli()
	require.NoError(t, store.HSet(ctx, taskKey("default", task.UUID), "dequeuedAtMs", stale).Err())

	sweepQueue(ctx, store, "default", 1000, nil)

	depth, err := GetQueueDepth(ctx, store, "default")
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth.Scheduled)
	assert.Equal(t, int64(0), depth.Pending)
}
