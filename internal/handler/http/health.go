package http

import (
	"net/http"
	"time"

	"library-events/internal/handler/http/respond"
)

// HealthHandler serves liveness and readiness. Readiness reflects
// whether an event set has been loaded into the store.
type HealthHandler struct {
	store *EventStore
}

func NewHealthHandler(store *EventStore) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleLiveness)
	mux.HandleFunc("GET /health/ready", h.handleReadiness)
}

func (h *HealthHandler) handleLiveness(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) handleReadiness(w http.ResponseWriter, r *http.Request) {
	updatedAt := h.store.UpdatedAt()
	if updatedAt.IsZero() {
		respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"events":     h.store.Len(),
		"updated_at": updatedAt.Format(time.RFC3339),
	})
}
