//go:build !gcloud

package logging

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// cloudTraceAttrs returns nothing outside GCP.
func cloudTraceAttrs(_ trace.SpanContext, _ string) []slog.Attr {
	return nil
}
