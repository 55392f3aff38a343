package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordEventsFetched(t *testing.T) {
	before := testutil.ToFloat64(EventsFetchedTotal.WithLabelValues("test-library"))
	RecordEventsFetched("test-library", 7)
	after := testutil.ToFloat64(EventsFetchedTotal.WithLabelValues("test-library"))

	if diff := after - before; diff != 7 {
		t.Errorf("expected counter to grow by 7, grew by %v", diff)
	}
}

func TestRecordSourceCrawlError(t *testing.T) {
	before := testutil.ToFloat64(SourceCrawlErrors.WithLabelValues("test-library", "fetch_failed"))
	RecordSourceCrawlError("test-library", "fetch_failed")
	after := testutil.ToFloat64(SourceCrawlErrors.WithLabelValues("test-library", "fetch_failed"))

	if diff := after - before; diff != 1 {
		t.Errorf("expected counter to grow by 1, grew by %v", diff)
	}
}

func TestRecordDeduplicated(t *testing.T) {
	before := testutil.ToFloat64(EventsDeduplicatedTotal)
	RecordDeduplicated(3)
	after := testutil.ToFloat64(EventsDeduplicatedTotal)

	if diff := after - before; diff != 3 {
		t.Errorf("expected counter to grow by 3, grew by %v", diff)
	}
}

func TestUpdateGauges(t *testing.T) {
	UpdateEventsTotal(42)
	if got := testutil.ToFloat64(EventsTotal); got != 42 {
		t.Errorf("EventsTotal = %v, want 42", got)
	}

	UpdateSourcesTotal(9)
	if got := testutil.ToFloat64(SourcesTotal); got != 9 {
		t.Errorf("SourcesTotal = %v, want 9", got)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/events", "200"))
	RecordHTTPRequest("GET", "/api/events", "200", 25*time.Millisecond)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/events", "200"))

	if diff := after - before; diff != 1 {
		t.Errorf("expected counter to grow by 1, grew by %v", diff)
	}
}
