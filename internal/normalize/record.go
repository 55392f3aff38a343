package normalize

import (
	"strings"
	"time"

	"library-events/internal/domain/entity"
)

// linkAbsent is the absent-marker some sources emit instead of an
// empty link field.
const linkAbsent = "N/A"

// Record converts a raw adapter event into a canonical EventRecord.
// The boolean result is false when the record fails required-field
// validation (empty title after cleanup) and must be dropped; such
// records never leave the source adapter boundary.
func Record(src *entity.Source, raw entity.RawEvent, fetchedAt time.Time) (*entity.EventRecord, bool) {
	title := Text(raw.Title)
	if title == "" {
		return nil, false
	}

	dateText := raw.DateText
	timeText := raw.TimeText
	if timeText == "" {
		// Some sources hand back a combined "date @ time" string in the
		// date field; split before parsing.
		if d, t := SplitDateTime(dateText); t != "" {
			dateText, timeText = d, t
		}
	}

	start, end := Time(timeText)

	location := Text(raw.Location)
	if location == "" {
		location = src.DefaultLocation
	}

	link := strings.TrimSpace(raw.Link)
	if strings.EqualFold(link, linkAbsent) {
		link = ""
	}

	return &entity.EventRecord{
		SourceID:    src.ID,
		Library:     src.Name,
		Title:       title,
		Date:        DateAt(dateText, fetchedAt),
		Time:        start,
		EndTime:     end,
		TimeRaw:     strings.TrimSpace(timeText),
		Location:    location,
		Audience:    entity.NormalizeAudience(raw.Audience),
		Category:    Text(raw.Category),
		Description: Text(raw.Description),
		Link:        link,
		FetchedAt:   fetchedAt,
	}, true
}
