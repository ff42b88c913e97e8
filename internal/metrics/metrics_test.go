package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistration(t *testing.T) {
	assert.NotNil(t, TasksEnqueued)
	assert.NotNil(t, TasksDequeued)
	assert.NotNil(t, TasksCompleted)
	assert.NotNil(t, TasksFailed)
	assert.NotNil(t, TasksRetried)
	assert.NotNil(t, TasksRecovered)
	assert.NotNil(t, DequeueLatency)

	assert.NotNil(t, QueueDepth)
	assert.NotNil(t, ActiveTasks)
	assert.NotNil(t, StoreErrors)

	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, WebSocketConnections)
}

func TestRecordEnqueued(t *testing.T) {
	TasksEnqueued.Reset()

	RecordEnqueued("default", "email:deliver")
	RecordEnqueued("default", "email:deliver")
	RecordEnqueued("high", "report:generate")
}

func TestRecordDequeued(t *testing.T) {
	TasksDequeued.Reset()
	DequeueLatency.Reset()

	RecordDequeued("default", "pending", 0.01)
	RecordDequeued("default", "scheduled", 1.5)
}

func TestRecordCompleted(t *testing.T) {
	TasksCompleted.Reset()

	RecordCompleted("default", "email:deliver")
}

func TestRecordFailed(t *testing.T) {
	TasksFailed.Reset()

	RecordFailed("default", "email:deliver")
}

func TestRecordRetried(t *testing.T) {
	TasksRetried.Reset()

	RecordRetried("default", "email:deliver")
	RecordRetried("default", "email:deliver")
}

func TestRecordRecovered(t *testing.T) {
	TasksRecovered.Reset()

	RecordRecovered("default")
}

func TestSetQueueDepth(t *testing.T) {
	QueueDepth.Reset()

	SetQueueDepth("high", "pending", 100)
	SetQueueDepth("default", "active", 5)
	SetQueueDepth("low", "failed", 2)
}

func TestSetActiveTasks(t *testing.T) {
	SetActiveTasks(5)
	SetActiveTasks(0)
}

func TestRecordStoreError(t *testing.T) {
	StoreErrors.Reset()

	RecordStoreError("enqueue")
	RecordStoreError("dequeue pending")
}

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestDuration.Reset()
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("GET", "/admin/queues", "200", 0.05)
	RecordHTTPRequest("POST", "/admin/tasks/default", "201", 0.1)
}

func TestSetWebSocketConnections(t *testing.T) {
	SetWebSocketConnections(0)
	SetWebSocketConnections(3)
}
