package events

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"library-events/internal/domain/entity"
	"library-events/internal/usecase/query"
)

// parseCriteria maps query string parameters onto filter criteria.
// Dates are strict ISO (2006-01-02); anything else is a client error.
//
// Supported parameters:
//
//	libraries    comma-separated library names
//	audiences    comma-separated audience tags
//	q            search term
//	mode         any | all | exact | fuzzy
//	fields       comma-separated search fields
//	start_date   window start, inclusive
//	end_date     window end, inclusive
//	date         single day (ignored when a window is set)
//	address      free-form address for distance filtering
//	max_distance radius in miles, requires address
func parseCriteria(params url.Values) (query.Criteria, error) {
	var c query.Criteria

	c.Libraries = splitParam(params.Get("libraries"))
	c.Audiences = splitParam(params.Get("audiences"))
	c.SearchTerm = strings.TrimSpace(params.Get("q"))
	c.SearchFields = splitParam(params.Get("fields"))

	mode := strings.ToLower(strings.TrimSpace(params.Get("mode")))
	switch mode {
	case "", "any", "all", "exact", "fuzzy":
		c.SearchMode = mode
	default:
		return c, fmt.Errorf("invalid mode %q", mode)
	}

	var err error
	if c.StartDate, err = parseDateParam(params, "start_date"); err != nil {
		return c, err
	}
	if c.EndDate, err = parseDateParam(params, "end_date"); err != nil {
		return c, err
	}
	if c.OnDate, err = parseDateParam(params, "date"); err != nil {
		return c, err
	}
	if c.StartDate.Known && c.EndDate.Known && c.EndDate.Before(c.StartDate) {
		return c, fmt.Errorf("invalid range: end_date precedes start_date")
	}

	c.Address = strings.TrimSpace(params.Get("address"))
	if raw := strings.TrimSpace(params.Get("max_distance")); raw != "" {
		miles, err := strconv.ParseFloat(raw, 64)
		if err != nil || miles < 0 {
			return c, fmt.Errorf("invalid max_distance %q", raw)
		}
		if c.Address == "" {
			return c, fmt.Errorf("max_distance requires an address")
		}
		c.MaxDistanceMiles = miles
	}

	return c, nil
}

func parseDateParam(params url.Values, key string) (entity.Date, error) {
	raw := strings.TrimSpace(params.Get(key))
	if raw == "" {
		return entity.Date{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return entity.Date{}, fmt.Errorf("invalid %s %q, want YYYY-MM-DD", key, raw)
	}
	return entity.DateOf(t), nil
}

func splitParam(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
