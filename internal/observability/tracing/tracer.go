// Package tracing provides OpenTelemetry integration for the HTTP layer.
// Without a configured provider the tracer is a no-op and spans carry a
// zero trace ID, so it is safe to leave enabled everywhere.
package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the global tracer for the aggregation service.
var tracer = otel.Tracer("library-events")

// GetTracer returns the global tracer for creating spans.
func GetTracer() trace.Tracer {
	return tracer
}
