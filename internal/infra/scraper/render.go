// Package scraper provides the source adapters that fetch raw events
// from library sites and feeds.
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"library-events/internal/resilience/retry"

	"golang.org/x/time/rate"
)

const (
	maxBodySize = 10 * 1024 * 1024 // 10MB

	userAgent = "LibraryEventsBot/1.0"
)

// RenderClient calls the shared markdown render service: it takes a page
// URL and returns the page rendered as markdown. The service meters by
// request, so all calls go through a client-side limiter on top of the
// orchestrator's transport ceiling.
type RenderClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// NewRenderClient creates a RenderClient for the given service base URL.
func NewRenderClient(client *http.Client, baseURL, apiKey string) *RenderClient {
	return &RenderClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

type renderRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type renderResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// Markdown renders the target page and returns its markdown body.
// A 429 from the service comes back as *retry.RateLimitError carrying
// the server's Retry-After hint; other non-200s as *retry.HTTPError.
func (c *RenderClient) Markdown(ctx context.Context, target string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("render limiter: %w", err)
	}

	body, err := json.Marshal(renderRequest{URL: target, Formats: []string{"markdown"}})
	if err != nil {
		return "", fmt.Errorf("encode render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("render request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", &retry.RateLimitError{
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    "render service rate limit",
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("render service returned %s", resp.Status),
		}
	}

	var out renderResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&out); err != nil {
		return "", fmt.Errorf("decode render response: %w", err)
	}
	if !out.Success {
		return "", fmt.Errorf("render service error: %s", out.Error)
	}

	return out.Data.Markdown, nil
}

// parseRetryAfter reads a Retry-After header given in seconds.
// Returns zero when absent or unparsable; the retry executor then falls
// back to its own schedule.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
