package events

import (
	"net/http"

	"library-events/internal/handler/http/respond"
)

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r.URL.Query())
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	matches := h.query.Filter(r.Context(), h.store.Records(), criteria)

	dtos := make([]EventDTO, 0, len(matches))
	for _, m := range matches {
		dtos = append(dtos, toDTO(m))
	}
	respond.JSON(w, http.StatusOK, ListResponse{Total: len(dtos), Events: dtos})
}
