package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"library-events/internal/domain/entity"
	"library-events/internal/normalize"
	"library-events/internal/resilience/circuitbreaker"
	"library-events/internal/resilience/retry"
	"library-events/internal/usecase/aggregate"

	"github.com/PuerkitoBio/goquery"
	"github.com/sony/gobreaker"
)

// EventListAdapter parses plain HTML event-list pages using the CSS
// selectors configured on the source.
type EventListAdapter struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewEventListAdapter creates an EventListAdapter with the given HTTP client.
func NewEventListAdapter(client *http.Client) *EventListAdapter {
	return &EventListAdapter{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.DirectHTTPConfig()),
	}
}

// Fetch retrieves the page and extracts events inside the window.
// Zero matches for the item selector is an error: it almost always
// means the site changed markup, not that the calendar is empty.
func (a *EventListAdapter) Fetch(ctx context.Context, src *entity.Source, window aggregate.Window) ([]entity.RawEvent, error) {
	if src.Selectors == nil {
		return nil, fmt.Errorf("source %s: %w: selectors required", src.ID, entity.ErrInvalidInput)
	}

	cbResult, err := a.circuitBreaker.Execute(func() (interface{}, error) {
		return a.doFetch(ctx, src, window)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("event list circuit breaker open, request rejected",
				slog.String("source_id", src.ID),
				slog.String("state", a.circuitBreaker.State().String()))
		}
		return nil, err
	}
	return cbResult.([]entity.RawEvent), nil
}

func (a *EventListAdapter) doFetch(ctx context.Context, src *entity.Source, window aggregate.Window) ([]entity.RawEvent, error) {
	if err := entity.ValidateURL(src.URL); err != nil {
		return nil, fmt.Errorf("URL validation failed: %w", err)
	}

	doc, err := a.fetchHTML(ctx, src.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch HTML: %w", err)
	}

	events := a.extractEvents(doc, src, window)
	if len(events) == 0 {
		return nil, fmt.Errorf("no events found with selector: %s", src.Selectors.Item)
	}

	return events, nil
}

func (a *EventListAdapter) fetchHTML(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &retry.RateLimitError{
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    "event list rate limit",
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status: %s", resp.Status),
		}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	return doc, nil
}

func (a *EventListAdapter) extractEvents(doc *goquery.Document, src *entity.Source, window aggregate.Window) []entity.RawEvent {
	sel := src.Selectors
	base, _ := url.Parse(src.URL)

	var events []entity.RawEvent
	doc.Find(sel.Item).Each(func(i int, item *goquery.Selection) {
		title := strings.TrimSpace(item.Find(sel.Title).Text())
		if title == "" {
			slog.Debug("skipping item with empty title", slog.Int("index", i))
			return
		}

		dateText := strings.TrimSpace(item.Find(sel.Date).Text())
		if sel.DateFormat != "" {
			if t, err := time.Parse(sel.DateFormat, normalize.PrepareDateText(dateText)); err == nil {
				dateText = t.Format("2006-01-02")
			}
		}

		// Drop events dated outside the window; unknown dates stay in.
		if d := normalize.DateAt(dateText, window.Start); d.Known && !window.Contains(d) {
			return
		}

		timeText := ""
		if sel.Time != "" {
			timeText = strings.TrimSpace(item.Find(sel.Time).Text())
		}

		location := ""
		if sel.Location != "" {
			location = strings.TrimSpace(item.Find(sel.Location).Text())
		}

		description := ""
		if sel.Description != "" {
			description = strings.TrimSpace(item.Find(sel.Description).Text())
		}

		link := ""
		if sel.Link != "" {
			if href, ok := item.Find(sel.Link).Attr("href"); ok {
				link = resolveLink(base, strings.TrimSpace(href))
			}
		}

		events = append(events, entity.RawEvent{
			Title:       title,
			DateText:    dateText,
			TimeText:    timeText,
			Location:    location,
			Audience:    src.Audiences,
			Category:    entity.DescriptionNotFound,
			Description: description,
			Link:        link,
		})
	})

	return events
}

// resolveLink makes a possibly relative href absolute against the page URL.
func resolveLink(base *url.URL, href string) string {
	if href == "" || base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
