package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"library-events/internal/domain/entity"
	"library-events/internal/resilience/circuitbreaker"
	"library-events/internal/usecase/aggregate"

	"github.com/sony/gobreaker"
)

const (
	// Calendar pages carry up to 20 events; a shorter page is the last one.
	bibliocommonsPageSize = 20
	bibliocommonsMaxPages = 5
)

// Rendered calendar markdown: an "## Event items" section with one
// block per event, each introduced by a "- Sat"-style day marker.
var (
	bibliocommonsBlockRe = regexp.MustCompile(`-\s+\w{3}\n`)
	bibliocommonsTitleRe = regexp.MustCompile(`### \[(.*?)\]\((.*?)\)`)
	bibliocommonsWhenRe  = regexp.MustCompile(`(\w+,\s+\w+\s+\d{1,2})on.*?(\d{4}),\s*(\d{1,2}:\d{2}[ap]m[–-]\d{1,2}:\d{2}[ap]m)`)
	bibliocommonsLocRe   = regexp.MustCompile(`\n(\[[^\n]*?Event location:[^\n]*?\]\([^\n]*?\)|Offsite location:[^\n]*?)\n`)
	bibliocommonsDescRe  = regexp.MustCompile(`(?s)Event location:[^\n]*\n\n(.*?)(?:\n\n(?:Register for|Join waitlist)|\n- \[|$)`)
)

// BibliocommonsAdapter fetches calendar pages through the markdown
// render service and extracts events with regex over the rendered text.
type BibliocommonsAdapter struct {
	render         *RenderClient
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewBibliocommonsAdapter creates a BibliocommonsAdapter backed by the
// given render client.
func NewBibliocommonsAdapter(render *RenderClient) *BibliocommonsAdapter {
	return &BibliocommonsAdapter{
		render:         render,
		circuitBreaker: circuitbreaker.New(circuitbreaker.RenderAPIConfig()),
	}
}

// Fetch walks the paginated calendar until a short or empty page.
// A failure on the first page fails the source; a failure further in
// keeps the pages already fetched.
func (a *BibliocommonsAdapter) Fetch(ctx context.Context, src *entity.Source, window aggregate.Window) ([]entity.RawEvent, error) {
	var all []entity.RawEvent

	for page := 1; page <= bibliocommonsMaxPages; page++ {
		pageURL := a.pageURL(src, page)

		cbResult, err := a.circuitBreaker.Execute(func() (interface{}, error) {
			return a.render.Markdown(ctx, pageURL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("render circuit breaker open, request rejected",
					slog.String("source_id", src.ID),
					slog.String("state", a.circuitBreaker.State().String()))
			}
			if page == 1 {
				return nil, err
			}
			slog.Warn("calendar page fetch failed, keeping earlier pages",
				slog.String("source_id", src.ID),
				slog.Int("page", page),
				slog.Any("error", err))
			break
		}

		markdown := cbResult.(string)
		if markdown == "" || strings.Contains(markdown, "No events found") {
			break
		}

		events := parseBibliocommonsMarkdown(markdown, src)
		if len(events) == 0 {
			slog.Warn("no events parsed from calendar page, stopping",
				slog.String("source_id", src.ID),
				slog.Int("page", page))
			break
		}

		all = append(all, events...)
		if len(events) < bibliocommonsPageSize {
			break
		}
	}

	return all, nil
}

func (a *BibliocommonsAdapter) pageURL(src *entity.Source, page int) string {
	sep := "?"
	base := src.URL
	if src.Query != "" {
		base += "?" + src.Query
		sep = "&"
	}
	return base + sep + "page=" + strconv.Itoa(page)
}

// parseBibliocommonsMarkdown extracts events from one rendered calendar
// page. Blocks missing a title or a date/time line are skipped.
func parseBibliocommonsMarkdown(markdown string, src *entity.Source) []entity.RawEvent {
	parts := strings.SplitN(markdown, "## Event items", 2)
	if len(parts) < 2 {
		return nil
	}

	blocks := bibliocommonsBlockRe.Split(parts[1], -1)
	if len(blocks) < 2 {
		return nil
	}

	var events []entity.RawEvent
	for _, block := range blocks[1:] {
		title := bibliocommonsTitleRe.FindStringSubmatch(block)
		if title == nil {
			continue
		}

		when := bibliocommonsWhenRe.FindStringSubmatch(block)
		if when == nil {
			continue
		}
		datePart, year, timePart := when[1], when[2], when[3]
		timeText := strings.NewReplacer("–", " - ", "-", " - ").Replace(timePart)

		location := ""
		if loc := bibliocommonsLocRe.FindStringSubmatch(block); loc != nil {
			location = loc[1]
		}

		description := entity.DescriptionNotFound
		if desc := bibliocommonsDescRe.FindStringSubmatch(block); desc != nil {
			description = desc[1]
		}

		events = append(events, entity.RawEvent{
			Title:       title[1],
			Link:        title[2],
			DateText:    fmt.Sprintf("%s, %s", datePart, year),
			TimeText:    timeText,
			Location:    location,
			Audience:    src.Audiences,
			Category:    entity.DescriptionNotFound,
			Description: description,
		})
	}

	return events
}
