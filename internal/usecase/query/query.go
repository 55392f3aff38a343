// Package query filters the aggregated event set: library and audience
// sets, date windows, term search with four modes and geo-distance
// filtering. All active criteria are AND-combined.
package query

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"library-events/internal/domain/entity"
)

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Geocoder resolves a free-form address to coordinates. The boolean is
// false when the address cannot be resolved.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Coordinates, bool, error)
}

// Criteria describes one filter request. Zero values mean "not set".
type Criteria struct {
	Libraries []string
	Audiences []string

	SearchTerm   string
	SearchMode   string // any | all | exact | fuzzy (default any)
	SearchFields []string

	// StartDate/EndDate bound an inclusive window; either side may be
	// open. When both are unset, OnDate (if set) selects a single day.
	StartDate entity.Date
	EndDate   entity.Date
	OnDate    entity.Date

	// Address plus MaxDistanceMiles enable geo filtering. A zero
	// MaxDistanceMiles computes distances without excluding anything.
	Address          string
	MaxDistanceMiles float64
}

// Match is a record that passed the filter. Distance is in miles and
// negative when no distance applies.
type Match struct {
	Record   *entity.EventRecord
	Distance float64
}

// Service filters event sets against the source catalog's coordinates.
type Service struct {
	libraryCoords map[string]Coordinates
	geocoder      Geocoder
}

// NewService builds a Service. Library coordinates come from the
// catalog entries that carry them; geocoder may be nil to disable
// address resolution.
func NewService(sources []*entity.Source, geocoder Geocoder) *Service {
	coords := make(map[string]Coordinates, len(sources))
	for _, src := range sources {
		if src.HasCoordinates() {
			coords[src.Name] = Coordinates{Lat: src.Latitude, Lon: src.Longitude}
		}
	}
	return &Service{libraryCoords: coords, geocoder: geocoder}
}

// Filter applies the criteria to records in one pass. When geo criteria
// are active the result is sorted ascending by distance; otherwise
// input order is preserved.
func (s *Service) Filter(ctx context.Context, records []*entity.EventRecord, c Criteria) []Match {
	mode := strings.ToLower(strings.TrimSpace(c.SearchMode))
	switch mode {
	case ModeAny, ModeAll, ModeExact, ModeFuzzy:
	default:
		mode = ModeAny
	}

	libSet := lowerSet(c.Libraries)
	audSet := lowerSet(c.Audiences)
	tokens := Tokenize(c.SearchTerm)
	fields := resolveSearchFields(c.SearchFields)

	userCoords, haveUser := s.resolveAddress(ctx, c.Address)
	geoActive := haveUser
	distanceCap := geoActive && c.MaxDistanceMiles > 0

	var matches []Match
	for _, rec := range records {
		if len(libSet) > 0 {
			if _, ok := libSet[strings.ToLower(rec.Library)]; !ok {
				continue
			}
		}

		if len(audSet) > 0 && !intersects(audSet, rec.Audience) {
			continue
		}

		if !matchesSearch(rec, c.SearchTerm, mode, tokens, fields) {
			continue
		}

		if !matchesDate(rec, c) {
			continue
		}

		distance := -1.0
		if geoActive {
			coords, ok := s.libraryCoords[rec.Library]
			if ok {
				distance = Haversine(userCoords.Lat, userCoords.Lon, coords.Lat, coords.Lon)
				if distanceCap && distance > c.MaxDistanceMiles {
					continue
				}
			} else if distanceCap {
				// No coordinates for this library: excluded only when a
				// distance cap is in force.
				continue
			}
		}

		matches = append(matches, Match{Record: rec, Distance: distance})
	}

	if geoActive {
		sort.SliceStable(matches, func(i, j int) bool {
			di, dj := matches[i].Distance, matches[j].Distance
			if di < 0 {
				di = math.Inf(1)
			}
			if dj < 0 {
				dj = math.Inf(1)
			}
			return di < dj
		})
	}

	return matches
}

// resolveAddress geocodes the user address. Resolution failures disable
// geo filtering rather than failing the query.
func (s *Service) resolveAddress(ctx context.Context, address string) (Coordinates, bool) {
	if address == "" || s.geocoder == nil {
		return Coordinates{}, false
	}
	coords, ok, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		slog.Warn("geocoding failed, skipping distance filter",
			slog.String("address", address),
			slog.Any("error", err))
		return Coordinates{}, false
	}
	if !ok {
		slog.Warn("address did not resolve, skipping distance filter",
			slog.String("address", address))
		return Coordinates{}, false
	}
	return coords, true
}

// matchesDate applies the date criteria. Records with unknown dates
// never match an active date filter.
func matchesDate(rec *entity.EventRecord, c Criteria) bool {
	if c.StartDate.Known || c.EndDate.Known {
		if !rec.Date.Known {
			return false
		}
		if c.StartDate.Known && rec.Date.Before(c.StartDate) {
			return false
		}
		if c.EndDate.Known && c.EndDate.Before(rec.Date) {
			return false
		}
		return true
	}

	if c.OnDate.Known {
		return rec.Date.Equal(c.OnDate)
	}

	return true
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" && v != "all" {
			set[v] = struct{}{}
		}
	}
	return set
}

func intersects(set map[string]struct{}, values []string) bool {
	for _, v := range values {
		if _, ok := set[strings.ToLower(strings.TrimSpace(v))]; ok {
			return true
		}
	}
	return false
}
