package normalize

import (
	"regexp"
	"strings"
)

var (
	markdownLink     = regexp.MustCompile(`!?\[[^\]]*\]\([^)]*\)`)
	markdownEmphasis = regexp.MustCompile(`\*{1,2}([^*]*)\*{1,2}`)
)

// Text cleans a raw text field for display: zero-width characters and
// markdown artifacts are stripped, newlines collapse to spaces, and the
// duplicated-half strings some render-API pages produce are folded back
// to a single copy.
func Text(text string) string {
	if text == "" {
		return ""
	}

	s := strings.ReplaceAll(text, "​", "")
	s = dropNonASCII(s)
	s = markdownLink.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\n", " ")
	s = markdownEmphasis.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "Event location:", "")
	s = strings.Join(strings.Fields(s), " ")

	// Some rendered pages repeat a field twice back to back; keep one
	// half when both halves agree.
	if len(s) > 10 {
		half := len(s) / 2
		first := strings.TrimSpace(s[:half])
		second := strings.TrimSpace(s[half:])
		if first == second {
			s = first
		}
	}

	return s
}

func dropNonASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
