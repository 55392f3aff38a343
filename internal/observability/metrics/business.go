package metrics

import "time"

// RecordEventsFetched records the number of events fetched from a source.
func RecordEventsFetched(source string, count int) {
	EventsFetchedTotal.WithLabelValues(source).Add(float64(count))
}

// RecordSourceCrawl records the duration of a single source crawl.
func RecordSourceCrawl(source string, duration time.Duration) {
	SourceCrawlDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordSourceCrawlError records an error during source crawling.
// The errorType label should be a coarse class such as "fetch_failed"
// or "timeout", not a raw error string.
func RecordSourceCrawlError(source, errorType string) {
	SourceCrawlErrors.WithLabelValues(source, errorType).Inc()
}

// RecordDeduplicated records the number of duplicate events dropped
// during a merge pass.
func RecordDeduplicated(count int) {
	EventsDeduplicatedTotal.Add(float64(count))
}

// RecordAggregationRun records the wall-clock duration of a full run.
func RecordAggregationRun(duration time.Duration) {
	AggregationDuration.Observe(duration.Seconds())
}

// RecordRefreshRun records a refresh job reaching a terminal status.
// Status should be "completed" or "error".
func RecordRefreshRun(status string) {
	RefreshRunsTotal.WithLabelValues(status).Inc()
}

// RecordExport records an export request. Format is "csv", "ics" or "report".
func RecordExport(format string) {
	ExportsTotal.WithLabelValues(format).Inc()
}

// RecordGeocodeLookup records a geocoder lookup result.
// Result is one of "cache_hit", "static_hit", "remote", "failure".
func RecordGeocodeLookup(result string) {
	GeocodeLookupsTotal.WithLabelValues(result).Inc()
}

// UpdateEventsTotal updates the snapshot event count gauge.
func UpdateEventsTotal(count int) {
	EventsTotal.Set(float64(count))
}

// UpdateSourcesTotal updates the active source count gauge.
func UpdateSourcesTotal(count int) {
	SourcesTotal.Set(float64(count))
}

// RecordConfigFallback records one rejected environment value.
func RecordConfigFallback(field string) {
	ConfigFallbacksTotal.WithLabelValues(field).Inc()
}
