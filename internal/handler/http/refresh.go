package http

import (
	"errors"
	"net/http"
	"time"

	"library-events/internal/handler/http/respond"
	"library-events/internal/usecase/aggregate"
	"library-events/internal/usecase/refresh"
)

// RefreshHandler triggers background aggregation runs. Only one run may
// be in flight; a second trigger is rejected with 409.
type RefreshHandler struct {
	job    *refresh.Job
	window func() aggregate.Window
}

// NewRefreshHandler builds the handler. window supplies the date window
// for each triggered run, evaluated at trigger time.
func NewRefreshHandler(job *refresh.Job, window func() aggregate.Window) *RefreshHandler {
	return &RefreshHandler{job: job, window: window}
}

func (h *RefreshHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/refresh", h.handleTrigger)
	mux.HandleFunc("GET /api/refresh", h.handleStatus)
}

func (h *RefreshHandler) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if err := h.job.Start(h.window()); err != nil {
		if errors.Is(err, refresh.ErrAlreadyRunning) {
			respond.Error(w, http.StatusConflict, err)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, statusBody(h.job.Status()))
}

func (h *RefreshHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, statusBody(h.job.Status()))
}

func statusBody(st refresh.Status) map[string]any {
	body := map[string]any{
		"state":  st.State,
		"events": st.Events,
	}
	if !st.StartedAt.IsZero() {
		body["started_at"] = st.StartedAt.Format(time.RFC3339)
	}
	if !st.FinishedAt.IsZero() {
		body["finished_at"] = st.FinishedAt.Format(time.RFC3339)
	}
	if st.Err != nil {
		body["error"] = st.Err.Error()
	}
	return body
}
