package entity

import "testing"

func validSource() Source {
	return Source{
		ID:     "skokie",
		Name:   "Skokie",
		Kind:   KindBibliocommons,
		URL:    "https://skokielibrary.info/events/list",
		Active: true,
	}
}

func TestSourceValidate(t *testing.T) {
	s := validSource()
	if err := s.Validate(); err != nil {
		t.Fatalf("valid source rejected: %v", err)
	}
	if s.Transport != TransportRenderAPI {
		t.Errorf("bibliocommons should default to render-api transport, got %q", s.Transport)
	}
}

func TestSourceValidateDefaultsHTTPTransport(t *testing.T) {
	s := validSource()
	s.Kind = KindLibnet
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Transport != TransportHTTP {
		t.Errorf("libnet should default to http transport, got %q", s.Transport)
	}
}

func TestSourceValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Source)
	}{
		{"missing id", func(s *Source) { s.ID = "" }},
		{"missing name", func(s *Source) { s.Name = "" }},
		{"unknown kind", func(s *Source) { s.Kind = "gopher" }},
		{"bad url scheme", func(s *Source) { s.URL = "ftp://example.com" }},
		{"empty url", func(s *Source) { s.URL = "" }},
		{"render transport on http kind", func(s *Source) {
			s.Kind = KindRSS
			s.Transport = TransportRenderAPI
		}},
		{"eventlist without selectors", func(s *Source) {
			s.Kind = KindEventList
			s.Transport = TransportHTTP
		}},
		{"eventlist missing title selector", func(s *Source) {
			s.Kind = KindEventList
			s.Transport = TransportHTTP
			s.Selectors = &EventListSelectors{Item: ".event"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSource()
			tt.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestHasCoordinates(t *testing.T) {
	s := validSource()
	if s.HasCoordinates() {
		t.Error("zero coordinates should mean unknown")
	}
	s.Latitude = 42.0406
	s.Longitude = -87.7334
	if !s.HasCoordinates() {
		t.Error("expected coordinates to be recognized")
	}
}
