package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Lifecycle metrics
	TasksEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cppq_tasks_enqueued_total",
			Help: "Total number of tasks enqueued",
		},
		[]string{"queue", "type"},
	)

	TasksDequeued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cppq_tasks_dequeued_total",
			Help: "Total number of tasks dequeued",
		},
		[]string{"queue", "source"}, // source: pending | scheduled
	)

	TasksCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cppq_tasks_completed_total",
			Help: "Total number of tasks that reached Completed",
		},
		[]string{"queue", "type"},
	)

	TasksFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cppq_tasks_failed_total",
			Help: "Total number of tasks that reached Failed",
		},
		[]string{"queue", "type"},
	)

	TasksRetried = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cppq_tasks_retried_total",
			Help: "Total number of tasks demoted back to Pending after a handler failure",
		},
		[]string{"queue", "type"},
	)

	TasksRecovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cppq_tasks_recovered_total",
			Help: "Total number of tasks reclaimed by the recovery sweeper",
		},
		[]string{"queue"},
	)

	DequeueLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cppq_dequeue_latency_seconds",
			Help:    "Time from enqueue to dequeue",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		},
		[]string{"queue"},
	)

	// Queue depth, set through SetQueueDepth. Neither cmd/server nor the
	// admin handlers call it, so the gauge is not sampled automatically.
	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cppq_queue_depth",
			Help: "Current number of tasks in a queue's list",
		},
		[]string{"queue", "list"}, // list: pending | scheduled | active | completed | failed
	)

	ActiveTasks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cppq_pool_active_tasks",
			Help: "Current number of tasks being executed by the worker pool",
		},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cppq_store_errors_total",
			Help: "Total number of StoreErrors encountered across enqueue, dequeue and recovery",
		},
		[]string{"op"},
	)

	// Admin HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cppq_http_request_duration_seconds",
			Help:    "Admin HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cppq_http_requests_total",
			Help: "Total number of admin HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cppq_websocket_connections",
			Help: "Current number of live stats WebSocket connections",
		},
	)
)

// RecordEnqueued records one enqueued task.
func RecordEnqueued(queue, taskType string) {
	TasksEnqueued.WithLabelValues(queue, taskType).Inc()
}

// RecordDequeued records one dequeue and its queue-dwell latency.
func RecordDequeued(queue, source string, latencySeconds float64) {
	TasksDequeued.WithLabelValues(queue, source).Inc()
	DequeueLatency.WithLabelValues(queue).Observe(latencySeconds)
}

// RecordCompleted records one task reaching Completed.
func RecordCompleted(queue, taskType string) {
	TasksCompleted.WithLabelValues(queue, taskType).Inc()
}

// RecordFailed records one task reaching Failed.
func RecordFailed(queue, taskType string) {
	TasksFailed.WithLabelValues(queue, taskType).Inc()
}

// RecordRetried records one task demoted back to Pending.
func RecordRetried(queue, taskType string) {
	TasksRetried.WithLabelValues(queue, taskType).Inc()
}

// RecordRecovered records one task reclaimed by the recovery sweeper.
func RecordRecovered(queue string) {
	TasksRecovered.WithLabelValues(queue).Inc()
}

// SetQueueDepth sets the gauge for one (queue, list) pair.
func SetQueueDepth(queue, list string, depth float64) {
	QueueDepth.WithLabelValues(queue, list).Set(depth)
}

// SetActiveTasks sets the worker pool's active-task gauge.
func SetActiveTasks(count float64) {
	ActiveTasks.Set(count)
}

// RecordStoreError increments the StoreError counter for one operation.
func RecordStoreError(op string) {
	StoreErrors.WithLabelValues(op).Inc()
}

// RecordHTTPRequest records an admin HTTP request.
func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration)
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// SetWebSocketConnections sets the live-stream connection gauge.
func SetWebSocketConnections(count float64) {
	WebSocketConnections.Set(count)
}
