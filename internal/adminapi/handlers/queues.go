package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jafarlihi/cppq-go"
	"github.com/jafarlihi/cppq-go/internal/logger"
)

// QueueHandler serves the /admin/queues routes.
type QueueHandler struct {
	store cppq.Store
}

// NewQueueHandler builds a QueueHandler bound to store.
func NewQueueHandler(store cppq.Store) *QueueHandler {
	return &QueueHandler{store: store}
}

// List handles GET /admin/queues.
func (h *QueueHandler) List(w http.ResponseWriter, r *http.Request) {
	queues, err := cppq.ListQueues(r.Context(), h.store)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list queues")
		respondError(w, http.StatusInternalServerError, "failed to list queues")
		return
	}

	out := make([]map[string]interface{}, 0, len(queues))
	for _, q := range queues {
		depth, err := cppq.GetQueueDepth(r.Context(), h.store, q.Name)
		if err != nil {
			logger.Error().Err(err).Str("queue", q.Name).Msg("failed to get queue depth")
			respondError(w, http.StatusInternalServerError, "failed to get queue depth")
			return
		}

		out = append(out, map[string]interface{}{
			"name":     q.Name,
			"priority": q.Priority,
			"paused":   q.Paused,
			"depth": map[string]int64{
				"pending":   depth.Pending,
				"scheduled": depth.Scheduled,
				"active":    depth.Active,
				"completed": depth.Completed,
				"failed":    depth.Failed,
			},
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"queues": out,
	})
}

// Pause handles POST /admin/queues/{queue}/pause.
func (h *QueueHandler) Pause(w http.ResponseWriter, r *http.Request) {
	queue := chi.URLParam(r, "queue")
	if queue == "" {
		respondError(w, http.StatusBadRequest, "queue is required")
		return
	}

	if err := cppq.Pause(r.Context(), h.store, queue); err != nil {
		logger.Error().Err(err).Str("queue", queue).Msg("failed to pause queue")
		respondError(w, http.StatusInternalServerError, "failed to pause queue")
		return
	}

	logger.Info().Str("queue", queue).Msg("queue paused")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "queue paused",
		"queue":   queue,
	})
}

// Resume handles POST /admin/queues/{queue}/resume.
func (h *QueueHandler) Resume(w http.ResponseWriter, r *http.Request) {
	queue := chi.URLParam(r, "queue")
	if queue == "" {
		respondError(w, http.StatusBadRequest, "queue is required")
		return
	}

	if err := cppq.Unpause(r.Context(), h.store, queue); err != nil {
		logger.Error().Err(err).Str("queue", queue).Msg("failed to resume queue")
		respondError(w, http.StatusInternalServerError, "failed to resume queue")
		return
	}

	logger.Info().Str("queue", queue).Msg("queue resumed")
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "queue resumed",
		"queue":   queue,
	})
}
