package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const reminderTracerName = "github.com/KasumiMercury/primind-task-reminder/internal/service/cycle"

func ReminderTracer() trace.Tracer {
	return otel.Tracer(reminderTracerName)
}

func StartCycleSpan(ctx context.Context, runID string, forced bool) (context.Context, trace.Span) {
	return ReminderTracer().Start(ctx, "reminder.cycle",
		trace.WithAttributes(
			attribute.String("cycle.run_id", runID),
			attribute.Bool("cycle.forced", forced),
		),
	)
}

func StartSourceFetchSpan(ctx context.Context, operation, url string) (context.Context, trace.Span) {
	return ReminderTracer().Start(ctx, "reminder.source."+operation,
		trace.WithAttributes(
			attribute.String("url", url),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func StartRedisOperationSpan(ctx context.Context, operation, key string) (context.Context, trace.Span) {
	return ReminderTracer().Start(ctx, "reminder.redis."+operation,
		trace.WithAttributes(
			attribute.String("db.system", "redis"),
			attribute.String("db.operation", operation),
			attribute.String("db.key", key),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func RecordCycleResult(span trace.Span, fetched, eligible, presented int, paused bool, err error) {
	span.SetAttributes(
		attribute.Int("cycle.fetched_count", fetched),
		attribute.Int("cycle.eligible_count", eligible),
		attribute.Int("cycle.presented_count", presented),
		attribute.Bool("cycle.paused", paused),
	)
	RecordError(span, err)
}

func RecordFetchResult(span trace.Span, taskCount int, err error) {
	span.SetAttributes(attribute.Int("source.task_count", taskCount))
	RecordError(span, err)
}

func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}

// InjectToHTTPRequest propagates the span in ctx onto an outgoing request.
func InjectToHTTPRequest(ctx context.Context, req *http.Request) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
}

func ExtractFromHTTPRequest(ctx context.Context, req *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(req.Header))
}
