package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"library-events/internal/observability/metrics"
	"library-events/internal/resilience/retry"
	"library-events/internal/usecase/query"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org"
	userAgent           = "LibraryEventsBot/1.0"
	maxBodySize         = 1 << 20
)

// Service resolves addresses through the cache, the static tables and
// finally Nominatim. It satisfies the query engine's geocoder contract.
type Service struct {
	client  *http.Client
	cache   *FileCache
	baseURL string
	// Nominatim allows at most one request per second per client.
	limiter *rate.Limiter
}

// NewService builds a geocoder on the given HTTP client and cache.
// An empty endpoint selects the public Nominatim instance.
func NewService(client *http.Client, cache *FileCache, endpoint string) *Service {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if endpoint == "" {
		endpoint = defaultNominatimURL
	}
	return &Service{
		client:  client,
		cache:   cache,
		baseURL: strings.TrimRight(endpoint, "/"),
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Geocode resolves an address to coordinates. The second return value
// is false when the address is empty or no tier could resolve it; an
// error is returned only for remote failures the caller may want to
// log.
func (s *Service) Geocode(ctx context.Context, address string) (query.Coordinates, bool, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return query.Coordinates{}, false, nil
	}

	if s.cache != nil {
		if coords, ok := s.cache.Get(address); ok {
			metrics.RecordGeocodeLookup("cache_hit")
			return coords, true, nil
		}
	}

	if coords, ok := staticLookup(address); ok {
		metrics.RecordGeocodeLookup("static_hit")
		s.store(address, coords)
		return coords, true, nil
	}

	coords, ok, err := s.remoteLookup(ctx, address)
	if err != nil {
		metrics.RecordGeocodeLookup("failure")
		return query.Coordinates{}, false, err
	}
	if !ok {
		metrics.RecordGeocodeLookup("failure")
		slog.Debug("geocoder returned no results", "address", address)
		return query.Coordinates{}, false, nil
	}

	metrics.RecordGeocodeLookup("remote")
	s.store(address, coords)
	return coords, true, nil
}

func (s *Service) store(address string, coords query.Coordinates) {
	if s.cache != nil {
		s.cache.Put(address, coords)
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// remoteLookup queries the Nominatim search endpoint. Calls pass
// through the shared limiter and a shallow retry.
func (s *Service) remoteLookup(ctx context.Context, address string) (query.Coordinates, bool, error) {
	var results []nominatimResult

	err := retry.WithBackoff(ctx, retry.GeocoderConfig(), func() error {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		found, err := s.search(ctx, address)
		if err != nil {
			return err
		}
		results = found
		return nil
	})
	if err != nil {
		return query.Coordinates{}, false, fmt.Errorf("geocode %q: %w", address, err)
	}
	if len(results) == 0 {
		return query.Coordinates{}, false, nil
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return query.Coordinates{}, false, fmt.Errorf("geocode %q: malformed coordinates in response", address)
	}
	return query.Coordinates{Lat: lat, Lon: lon}, true, nil
}

func (s *Service) search(ctx context.Context, address string) ([]nominatimResult, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "us")
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &retry.RateLimitError{Message: "nominatim rate limit"}
	case resp.StatusCode != http.StatusOK:
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: "nominatim search failed"}
	}

	var results []nominatimResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return results, nil
}
