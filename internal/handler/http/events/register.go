// Package events serves the aggregated event set: filtered listing plus
// calendar, spreadsheet and printable report exports.
package events

import (
	"net/http"
	"time"

	"library-events/internal/domain/entity"
	"library-events/internal/usecase/query"
)

// Store supplies the current event set.
type Store interface {
	Records() []*entity.EventRecord
}

// Handler serves /api/events and its export variants.
type Handler struct {
	store Store
	query *query.Service
	loc   *time.Location
}

// NewHandler builds the handler. loc controls calendar export
// timestamps; nil means UTC.
func NewHandler(store Store, querySvc *query.Service, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{store: store, query: querySvc, loc: loc}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/events", h.handleList)
	mux.HandleFunc("GET /api/events/export.ics", h.handleExportICS)
	mux.HandleFunc("GET /api/events/export.csv", h.handleExportCSV)
	mux.HandleFunc("GET /api/events/export.txt", h.handleExportText)
}
