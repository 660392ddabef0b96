package tracing

import (
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var allowedSpanKeys = map[attribute.Key]struct{}{
	"tenant_id":      {},
	"application_id": {},
	"user_id":        {},
	"license_id":     {},
	"period_id":      {},
	"plan_code":      {},
	"endpoint":       {},
	"status_code":    {},
	"reason":         {},
	"resource":       {},
	"action":         {},
}

// SafeAttributes drops attributes outside the low-cardinality allowlist.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedSpanKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}

// SafeError records an error on the span without leaking payload contents.
func SafeError(span trace.Span, err error, message string) {
	if span == nil || err == nil {
		return
	}
	message = strings.TrimSpace(message)
	if message == "" {
		message = "operation failed"
	}
	span.SetStatus(codes.Error, message)
	span.RecordError(err)
}
