package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jafarlihi/cppq-go"
	"github.com/jafarlihi/cppq-go/internal/logger"
)

// HealthHandler serves GET /admin/health.
type HealthHandler struct {
	store cppq.Store
}

// NewHealthHandler builds a HealthHandler bound to store.
func NewHealthHandler(store cppq.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// ServeHTTP pings Redis and reports the result.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()).Err(); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unhealthy",
			"redis":  "disconnected",
			"error":  err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"redis":  "connected",
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}
