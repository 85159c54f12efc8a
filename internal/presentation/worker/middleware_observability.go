package workerpresentation

import (
	"context"

	domoutbox "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability/logctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// WithEventContext injects a request-scoped logger for background/worker executions.
// Dynamic fields only: trace_id/span_id (if valid), event_id (generated if empty),
// plus caller-provided low-cardinality attributes (e.g. "use_case", "event").
func WithEventContext(
	ctx context.Context,
	base observability.Logger,
	tel observability.Observability,
	traceID trace.TraceID,
	spanID trace.SpanID,
	attrs map[string]string, // keep this low-cardinality: event name, queue, etc.
) context.Context {
	if base == nil {
		base = logctx.FromOr(ctx, tel.Logger())
	}

	fields := make([]observability.Field, 0, 3+len(attrs))

	// Prefer a stable, human-pivotable ID for the event
	evtID := attrs["event_id"]
	if evtID == "" {
		evtID = uuid.NewString()
	}
	fields = append(fields, observability.F("event_id", evtID))

	if traceID.IsValid() {
		fields = append(fields, observability.F("trace_id", traceID.String()))
	}
	if spanID.IsValid() {
		fields = append(fields, observability.F("span_id", spanID.String()))
	}

	for k, v := range attrs {
		if k == "event_id" || v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}

	return logctx.With(ctx, base.With(fields...))
}

// EventMiddleware gives every handled event its own logger, tagged with the
// event name, a fresh event id and the trace of the span in ctx, if any.
func EventMiddleware(base observability.Logger, tel observability.Observability) func(domoutbox.Handler) domoutbox.Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return func(next domoutbox.Handler) domoutbox.Handler {
		return func(ctx context.Context, e domoutbox.Event) error {
			sc := trace.SpanContextFromContext(ctx)
			ctx = WithEventContext(ctx, base, tel, sc.TraceID(), sc.SpanID(), map[string]string{
				"event": e.EventName(),
			})
			return next(ctx, e)
		}
	}
}
