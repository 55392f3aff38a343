// Package pathutil bounds metric label cardinality: only routes the
// server actually registers may appear as a path label.
package pathutil

import "strings"

var knownPaths = map[string]struct{}{
	"/api/events":            {},
	"/api/events/export.ics": {},
	"/api/events/export.csv": {},
	"/api/events/export.txt": {},
	"/api/progress":          {},
	"/api/refresh":           {},
	"/health":                {},
	"/health/ready":          {},
	"/metrics":               {},
}

// NormalizePath maps a request path to its metric label. Unknown paths
// collapse to "other" so scanners cannot inflate the label set.
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if _, ok := knownPaths[path]; ok {
		return path
	}
	return "other"
}
