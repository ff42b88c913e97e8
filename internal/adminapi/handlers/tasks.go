package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jafarlihi/cppq-go"
	"github.com/jafarlihi/cppq-go/internal/logger"
)

// TaskHandler serves the /admin/tasks routes.
type TaskHandler struct {
	store cppq.Store
}

// NewTaskHandler builds a TaskHandler bound to store.
func NewTaskHandler(store cppq.Store) *TaskHandler {
	return &TaskHandler{store: store}
}

// Get handles GET /admin/tasks/{queue}/{uuid}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	queue := chi.URLParam(r, "queue")
	uuid := chi.URLParam(r, "uuid")
	if queue == "" || uuid == "" {
		respondError(w, http.StatusBadRequest, "queue and uuid are required")
		return
	}

	t, err := cppq.GetTask(r.Context(), h.store, queue, uuid)
	if err != nil {
		logger.Error().Err(err).Str("queue", queue).Str("uuid", uuid).Msg("failed to get task")
		respondError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if t == nil {
		respondError(w, http.StatusNotFound, "task not found")
		return
	}

	respondJSON(w, http.StatusOK, t)
}

// CreateTaskRequest is the body of POST /admin/tasks/{queue}.
type CreateTaskRequest struct {
	Type        string     `json:"type"`
	Payload     string     `json:"payload"`
	MaxRetry    uint64     `json:"max_retry"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Cron        string     `json:"cron,omitempty"`
}

// Create handles POST /admin/tasks/{queue}, a convenience enqueue for
// operators and tools that cannot embed the Go library directly.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	queue := chi.URLParam(r, "queue")
	if queue == "" {
		respondError(w, http.StatusBadRequest, "queue is required")
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type == "" {
		respondError(w, http.StatusBadRequest, "type is required")
		return
	}

	t := cppq.NewTask(req.Type, req.Payload, req.MaxRetry)

	var err error
	switch {
	case req.Cron != "":
		err = cppq.Enqueue(r.Context(), h.store, t, queue, cppq.ScheduleCron(req.Cron))
	case req.ScheduledAt != nil:
		err = cppq.Enqueue(r.Context(), h.store, t, queue, cppq.ScheduleDelayed(*req.ScheduledAt))
	default:
		err = cppq.Enqueue(r.Context(), h.store, t, queue)
	}

	if err != nil {
		logger.Error().Err(err).Str("queue", queue).Str("type", req.Type).Msg("failed to enqueue task")
		respondError(w, http.StatusInternalServerError, "failed to enqueue task")
		return
	}

	logger.Info().Str("queue", queue).Str("uuid", t.UUID).Str("type", t.Type).Msg("task enqueued via admin API")
	respondJSON(w, http.StatusCreated, t)
}
