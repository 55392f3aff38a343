package events

import (
	"library-events/internal/usecase/query"
)

// EventDTO is the wire shape of one event. Dates and times use the
// human-readable placeholders the exports use, so clients render a
// single vocabulary.
type EventDTO struct {
	SourceID    string   `json:"source_id"`
	Library     string   `json:"library"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	DateDisplay string   `json:"date_display"`
	Time        string   `json:"time"`
	Location    string   `json:"location"`
	Audience    []string `json:"audience"`
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	Link        string   `json:"link,omitempty"`

	// DistanceMiles is present only when the request filtered by
	// address.
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
}

// ListResponse is the envelope for GET /api/events.
type ListResponse struct {
	Total  int        `json:"total"`
	Events []EventDTO `json:"events"`
}

func toDTO(m query.Match) EventDTO {
	rec := m.Record
	dto := EventDTO{
		SourceID:    rec.SourceID,
		Library:     rec.Library,
		Title:       rec.Title,
		Date:        rec.Date.String(),
		DateDisplay: rec.Date.Display(),
		Time:        rec.TimeRaw,
		Location:    rec.Location,
		Audience:    rec.Audience,
		Category:    rec.Category,
		Description: rec.Description,
		Link:        rec.Link,
	}
	if dto.Time == "" {
		dto.Time = rec.Time.String()
	}
	if m.Distance >= 0 {
		d := m.Distance
		dto.DistanceMiles = &d
	}
	return dto
}
