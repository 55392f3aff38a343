package entity

import (
	"errors"
	"fmt"
)

// SourceKind identifies the parsing strategy a source needs.
type SourceKind string

const (
	// KindBibliocommons is a calendar site scraped through the markdown
	// render API and parsed with regex over the rendered markdown.
	KindBibliocommons SourceKind = "bibliocommons"
	// KindLibnet is a JSON events API (POST events/list).
	KindLibnet SourceKind = "libnet"
	// KindEventList is a plain HTML event-list page parsed with CSS
	// selectors.
	KindEventList SourceKind = "eventlist"
	// KindRSS is an RSS/Atom events feed.
	KindRSS SourceKind = "rss"
)

// Transport identifies which shared connection pool and concurrency
// ceiling a source's requests go through. The render API has its own
// quota independent of direct HTTP traffic.
type Transport string

const (
	TransportRenderAPI Transport = "render-api"
	TransportHTTP      Transport = "http"
)

// EventListSelectors configures the HTML event-list adapter.
// All selectors are standard CSS; DateFormat is a Go reference-time
// layout tried against the extracted date text before the adapter falls
// back to the shared format list.
type EventListSelectors struct {
	Item        string `yaml:"item"`
	Title       string `yaml:"title"`
	Date        string `yaml:"date"`
	Time        string `yaml:"time"`
	Location    string `yaml:"location"`
	Description string `yaml:"description"`
	Link        string `yaml:"link"`
	DateFormat  string `yaml:"date_format"`
}

// Source is one catalog entry: a library site or feed the aggregator
// pulls events from.
type Source struct {
	ID        string     `yaml:"id"`
	Name      string     `yaml:"name"`
	Kind      SourceKind `yaml:"kind"`
	Transport Transport  `yaml:"transport"`
	URL       string     `yaml:"url"`
	// Query holds kind-specific query parameters (bibliocommons audience
	// filters, libnet request ages and so on).
	Query string `yaml:"query,omitempty"`
	// Selectors configures the eventlist kind; nil otherwise.
	Selectors *EventListSelectors `yaml:"selectors,omitempty"`
	// DefaultLocation is used when an event carries no location of its own.
	DefaultLocation string `yaml:"default_location,omitempty"`
	// Audiences post-filters fetched events to these labels when a source
	// cannot filter server-side. Empty means keep everything.
	Audiences []string `yaml:"audiences,omitempty"`
	// Latitude/Longitude anchor the library for geo-distance filtering.
	// Both zero means unknown.
	Latitude  float64 `yaml:"latitude,omitempty"`
	Longitude float64 `yaml:"longitude,omitempty"`
	Active    bool    `yaml:"active"`
}

// HasCoordinates reports whether the source is geo-anchored.
func (s *Source) HasCoordinates() bool {
	return s.Latitude != 0 || s.Longitude != 0
}

// Validate validates the Source entity fields. It checks that the kind
// is known, the transport matches the kind, and that kind-specific
// configuration is present.
func (s *Source) Validate() error {
	if s.ID == "" {
		return &ValidationError{Field: "id", Message: "source id is required"}
	}
	if s.Name == "" {
		return &ValidationError{Field: "name", Message: "source name is required"}
	}

	validKinds := map[SourceKind]bool{
		KindBibliocommons: true,
		KindLibnet:        true,
		KindEventList:     true,
		KindRSS:           true,
	}
	if !validKinds[s.Kind] {
		return fmt.Errorf("invalid kind: %q (must be bibliocommons, libnet, eventlist, or rss)", s.Kind)
	}

	// Default the transport from the kind when unset.
	if s.Transport == "" {
		if s.Kind == KindBibliocommons {
			s.Transport = TransportRenderAPI
		} else {
			s.Transport = TransportHTTP
		}
	}
	if s.Transport != TransportRenderAPI && s.Transport != TransportHTTP {
		return fmt.Errorf("invalid transport: %q (must be render-api or http)", s.Transport)
	}
	if s.Transport == TransportRenderAPI && s.Kind != KindBibliocommons {
		return fmt.Errorf("kind %q cannot use the render-api transport", s.Kind)
	}

	if err := ValidateURL(s.URL); err != nil {
		return fmt.Errorf("source %s: %w", s.ID, err)
	}

	if s.Kind == KindEventList {
		if s.Selectors == nil {
			return errors.New("selectors are required for eventlist sources")
		}
		if s.Selectors.Item == "" || s.Selectors.Title == "" {
			return &ValidationError{Field: "selectors", Message: "item and title selectors are required"}
		}
	}

	return nil
}
