package query

import (
	"regexp"
	"strings"

	"library-events/internal/domain/entity"
)

// Search modes.
const (
	ModeAny   = "any"
	ModeAll   = "all"
	ModeExact = "exact"
	ModeFuzzy = "fuzzy"

	fuzzyThreshold = 0.65
)

var tokenRe = regexp.MustCompile(`"([^"]+)"|(\S+)`)

// Tokenize splits a search term into lowercase tokens. Double-quoted
// phrases stay together as a single token.
func Tokenize(term string) []string {
	raw := strings.ToLower(strings.TrimSpace(term))
	if raw == "" {
		return nil
	}

	var tokens []string
	for _, m := range tokenRe.FindAllStringSubmatch(raw, -1) {
		token := m[1]
		if token == "" {
			token = m[2]
		}
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// fieldAccessors maps user-facing field names (and their aliases) to
// record accessors.
var fieldAccessors = map[string]func(*entity.EventRecord) string{
	"title":       func(e *entity.EventRecord) string { return e.Title },
	"description": func(e *entity.EventRecord) string { return e.Description },
	"location":    func(e *entity.EventRecord) string { return e.Location },
	"library":     func(e *entity.EventRecord) string { return e.Library },
	"age":         audienceField,
	"age_group":   audienceField,
	"type":        audienceField,
}

func audienceField(e *entity.EventRecord) string {
	return strings.Join(e.Audience, ", ")
}

var defaultSearchFields = []string{"title", "description", "location"}

// resolveSearchFields filters the requested field names to known ones,
// falling back to the default set when none survive.
func resolveSearchFields(requested []string) []string {
	var fields []string
	for _, name := range requested {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := fieldAccessors[key]; ok {
			fields = append(fields, key)
		}
	}
	if len(fields) == 0 {
		return defaultSearchFields
	}
	return fields
}

// matchesSearch applies the search term to the record under the given
// mode. An empty term matches everything.
func matchesSearch(rec *entity.EventRecord, term, mode string, tokens, fields []string) bool {
	raw := strings.ToLower(strings.TrimSpace(term))
	if raw == "" {
		return true
	}

	values := make([]string, 0, len(fields))
	for _, f := range fields {
		values = append(values, strings.ToLower(fieldAccessors[f](rec)))
	}
	combined := strings.Join(values, " ")

	switch mode {
	case ModeExact:
		return strings.Contains(combined, raw)

	case ModeFuzzy:
		score := func(needle string) float64 {
			best := 0.0
			for _, val := range values {
				if val == "" {
					continue
				}
				if r := Ratio(needle, val); r > best {
					best = r
				}
			}
			return best
		}
		if score(raw) >= fuzzyThreshold {
			return true
		}
		for _, tok := range tokens {
			if score(tok) >= fuzzyThreshold {
				return true
			}
		}
		return false

	case ModeAll:
		if strings.Contains(combined, raw) {
			return true
		}
		for _, tok := range tokens {
			if !strings.Contains(combined, tok) {
				return false
			}
		}
		return true

	default: // ModeAny
		if strings.Contains(combined, raw) {
			return true
		}
		for _, tok := range tokens {
			if strings.Contains(combined, tok) {
				return true
			}
		}
		return false
	}
}
