package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"library-events/internal/domain/entity"
	"library-events/internal/resilience/circuitbreaker"
	"library-events/internal/resilience/retry"
	"library-events/internal/usecase/aggregate"

	"github.com/sony/gobreaker"
)

const libnetStartLayout = "2006-01-02 15:04:05"

// LibnetAdapter fetches events from a LibNet-style JSON calendar API.
// The endpoint takes a JSON request document in a query parameter and
// returns a flat event array.
type LibnetAdapter struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
}

// NewLibnetAdapter creates a LibnetAdapter with the given HTTP client.
func NewLibnetAdapter(client *http.Client) *LibnetAdapter {
	return &LibnetAdapter{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.DirectHTTPConfig()),
	}
}

// labelList tolerates every shape LibNet installations use for audience
// labels: a plain string, a list of strings, or a list of objects with
// the label under name/title/label/text/value.
type labelList []string

func (l *labelList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			*l = labelList{s}
		}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		// Unknown shape; drop rather than fail the whole payload.
		return nil
	}

	for _, item := range items {
		var str string
		if err := json.Unmarshal(item, &str); err == nil {
			if str = strings.TrimSpace(str); str != "" {
				*l = append(*l, str)
			}
			continue
		}

		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		for _, key := range []string{"name", "title", "label", "text", "value"} {
			raw, ok := obj[key]
			if !ok {
				continue
			}
			var val string
			if err := json.Unmarshal(raw, &val); err == nil {
				if val = strings.TrimSpace(val); val != "" {
					*l = append(*l, val)
					break
				}
			}
		}
	}
	return nil
}

type libnetEvent struct {
	Title       string    `json:"title"`
	EventStart  string    `json:"event_start"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Ages        labelList `json:"ages"`
	Age         labelList `json:"age"`
	AgeGroup    labelList `json:"age_group"`
	AgeGroups   labelList `json:"age_groups"`
	Audiences   labelList `json:"audiences"`
}

func (e *libnetEvent) labels() []string {
	var all []string
	all = append(all, e.Ages...)
	all = append(all, e.Age...)
	all = append(all, e.AgeGroup...)
	all = append(all, e.AgeGroups...)
	all = append(all, e.Audiences...)
	return all
}

// Fetch queries the calendar API for the run window and converts the
// payload into raw events, applying the source's audience post-filter.
func (a *LibnetAdapter) Fetch(ctx context.Context, src *entity.Source, window aggregate.Window) ([]entity.RawEvent, error) {
	cbResult, err := a.circuitBreaker.Execute(func() (interface{}, error) {
		return a.doFetch(ctx, src, window)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			slog.Warn("calendar API circuit breaker open, request rejected",
				slog.String("source_id", src.ID),
				slog.String("state", a.circuitBreaker.State().String()))
		}
		return nil, err
	}
	return cbResult.([]entity.RawEvent), nil
}

func (a *LibnetAdapter) doFetch(ctx context.Context, src *entity.Source, window aggregate.Window) ([]entity.RawEvent, error) {
	reqDoc := fmt.Sprintf(`{"private":false,"date":%q,"days":%d,"locations":[],"ages":%s,"types":[]}`,
		window.Start.Format("2006-01-02"), window.Days, agesJSON(src.Query))

	params := url.Values{
		"event_type": {"0"},
		"req":        {reqDoc},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create calendar request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &retry.RateLimitError{
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    "calendar API rate limit",
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("calendar API returned %s", resp.Status),
		}
	}

	var payload []libnetEvent
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode calendar payload: %w", err)
	}

	events := make([]entity.RawEvent, 0, len(payload))
	for _, item := range payload {
		if strings.TrimSpace(item.Title) == "" {
			continue
		}

		labels := coalesceAll(item.labels())
		if !keepForAudiences(src.Audiences, labels, item.Title+"\n"+item.Description) {
			continue
		}
		if len(labels) == 0 {
			labels = src.Audiences
		}

		dateText, timeText := "", ""
		if item.EventStart != "" {
			if t, err := time.Parse(libnetStartLayout, item.EventStart); err == nil {
				dateText = t.Format("2006-01-02")
				timeText = t.Format("3:04 PM")
			} else {
				slog.Debug("unparsable event start",
					slog.String("source_id", src.ID),
					slog.String("event_start", item.EventStart))
			}
		}

		events = append(events, entity.RawEvent{
			Title:       item.Title,
			DateText:    dateText,
			TimeText:    timeText,
			Location:    item.Location,
			Audience:    labels,
			Category:    entity.DescriptionNotFound,
			Description: item.Description,
			Link:        fixDoubledSlashes(item.URL),
		})
	}

	return events, nil
}

// agesJSON turns the catalog's comma-separated age labels into the JSON
// array the request document expects.
func agesJSON(query string) string {
	if strings.TrimSpace(query) == "" {
		return "[]"
	}
	var quoted []string
	for _, label := range strings.Split(query, ",") {
		if label = strings.TrimSpace(label); label != "" {
			quoted = append(quoted, fmt.Sprintf("%q", label))
		}
	}
	return "[" + strings.Join(quoted, ",") + "]"
}

// fixDoubledSlashes repairs the doubled path slashes some installations
// emit in event URLs.
func fixDoubledSlashes(raw string) string {
	if raw == "" {
		return ""
	}
	if i := strings.Index(raw, "://"); i >= 0 {
		scheme, rest := raw[:i+3], raw[i+3:]
		return scheme + strings.ReplaceAll(rest, "//", "/")
	}
	return strings.ReplaceAll(raw, "//", "/")
}
