package oteltrace

import (
	"context"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type tracer struct{ t trace.Tracer }

// New returns a tracer from the global provider. Without an SDK provider
// installed, spans are non-recording but still propagate W3C context.
func New(name string) observability.Tracer {
	if name == "" {
		name = "minishop"
	}
	return &tracer{t: otel.Tracer(name)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithAttributes(attrs...))
}

// InstallPropagator sets the W3C trace-context and baggage propagators globally.
func InstallPropagator() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}
