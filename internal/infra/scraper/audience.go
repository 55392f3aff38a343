package scraper

import (
	"regexp"
	"strings"
)

// Sources label the same audience a dozen ways ("Grades K-2", "K to 2",
// "Lower Elementary"). Coalescing collapses them to canonical tags so
// the audience filter compares like with like.
var (
	gradesK2Re = regexp.MustCompile(`(?i)(?:\b(?:k|kindergarten)\s*(?:to|through|[-–—/])\s*2(?:nd)?\b|lower\s+elementary)`)
	grades35Re = regexp.MustCompile(`(?i)(?:\b3(?:rd)?\s*(?:to|through|[-–—/])\s*5(?:th)?\b|upper\s+elementary)`)
	kidsRe     = regexp.MustCompile(`(?i)\bkids?\b|\bchildren\b|\bfamily\b`)
)

// Canonical audience tags.
const (
	AudienceGradesK2 = "Grades K-2"
	AudienceGrades35 = "Grades 3-5"
	AudienceKids     = "Kids"
)

// CoalesceAudience maps a raw audience label to its canonical tag.
// Unrecognized labels pass through trimmed.
func CoalesceAudience(label string) string {
	switch {
	case gradesK2Re.MatchString(label):
		return AudienceGradesK2
	case grades35Re.MatchString(label):
		return AudienceGrades35
	case kidsRe.MatchString(label):
		return AudienceKids
	default:
		return strings.TrimSpace(label)
	}
}

// coalesceAll maps labels through CoalesceAudience, dropping empties
// and duplicates while preserving order.
func coalesceAll(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		tag := CoalesceAudience(label)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// keepForAudiences reports whether an event passes a source's audience
// post-filter. wanted holds canonical tags from the catalog; labels the
// event's own coalesced tags; fallback is title+description text probed
// when labels say nothing.
//
// Untagged events are kept: calendar feeds routinely omit age metadata
// on general children's programming. A generic "Kids" tag satisfies any
// grade-range filter for the same reason.
func keepForAudiences(wanted, labels []string, fallback string) bool {
	if len(wanted) == 0 {
		return true
	}
	if len(labels) == 0 {
		return true
	}

	wantedSet := make(map[string]struct{}, len(wanted))
	for _, w := range wanted {
		wantedSet[CoalesceAudience(w)] = struct{}{}
	}

	for _, tag := range labels {
		if _, ok := wantedSet[tag]; ok {
			return true
		}
		if tag == AudienceKids {
			return true
		}
	}

	if _, ok := wantedSet[AudienceGradesK2]; ok && gradesK2Re.MatchString(fallback) {
		return true
	}
	if _, ok := wantedSet[AudienceGrades35]; ok && grades35Re.MatchString(fallback) {
		return true
	}

	return false
}
