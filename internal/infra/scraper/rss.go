package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"library-events/internal/domain/entity"
	"library-events/internal/resilience/circuitbreaker"
	"library-events/internal/usecase/aggregate"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
)

// RSSAdapter fetches events from RSS/Atom event feeds using gofeed.
// The item publication timestamp carries the event date and time, as
// library event feeds conventionally do.
type RSSAdapter struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewRSSAdapter creates an RSSAdapter with the given HTTP client.
func NewRSSAdapter(client *http.Client) *RSSAdapter {
	return &RSSAdapter{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.DirectHTTPConfig()),
	}
}

// Fetch retrieves and parses the feed, keeping items dated inside the
// window. Items without a parsable timestamp are kept with an unknown
// date rather than dropped.
func (a *RSSAdapter) Fetch(ctx context.Context, src *entity.Source, window aggregate.Window) ([]entity.RawEvent, error) {
	cbResult, err := a.circuitBreaker.Execute(func() (interface{}, error) {
		return a.doFetch(ctx, src, window)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("feed circuit breaker open, request rejected",
				slog.String("source_id", src.ID),
				slog.String("state", a.circuitBreaker.State().String()))
		}
		return nil, err
	}
	return cbResult.([]entity.RawEvent), nil
}

func (a *RSSAdapter) doFetch(ctx context.Context, src *entity.Source, window aggregate.Window) ([]entity.RawEvent, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = a.client

	feed, err := fp.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, err
	}

	events := make([]entity.RawEvent, 0, len(feed.Items))
	for _, item := range feed.Items {
		dateText, timeText := "", ""
		if item.PublishedParsed != nil {
			t := *item.PublishedParsed
			if !window.Contains(entity.DateOf(t)) {
				continue
			}
			dateText = t.Format("2006-01-02")
			timeText = t.Format("3:04 PM")
		}

		description := item.Description
		if description == "" {
			description = item.Content
		}

		events = append(events, entity.RawEvent{
			Title:       item.Title,
			DateText:    dateText,
			TimeText:    timeText,
			Audience:    src.Audiences,
			Category:    entity.DescriptionNotFound,
			Description: description,
			Link:        item.Link,
		})
	}

	return events, nil
}
