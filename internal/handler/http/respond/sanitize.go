package respond

import (
	"regexp"
)

var (
	// Render API keys show up in request errors when a crawl fails.
	renderKeyPattern = regexp.MustCompile(`fc-[a-zA-Z0-9]{8,}`)
	// Bearer tokens in echoed request headers.
	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]+`)
	// Credentials embedded in URLs.
	urlPasswordPattern = regexp.MustCompile(`://([^:/@\s]+):([^@\s]+)@`)
)

// SanitizeError masks credentials before an error message is logged.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = renderKeyPattern.ReplaceAllString(msg, "fc-****")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer ****")
	msg = urlPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
