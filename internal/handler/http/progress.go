package http

import (
	"net/http"

	"library-events/internal/handler/http/respond"
	"library-events/internal/infra/progress"
)

// ProgressHandler serves the progress file written during aggregation
// runs. Missing or unreadable files degrade to a synthetic snapshot,
// so this endpoint never fails.
type ProgressHandler struct {
	path string
}

func NewProgressHandler(path string) *ProgressHandler {
	return &ProgressHandler{path: path}
}

func (h *ProgressHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/progress", h.handleGet)
}

func (h *ProgressHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, progress.Read(h.path))
}
