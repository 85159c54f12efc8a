// Package observability holds the ports every layer reports through. The
// zap, prometheus and otel adapters live under infrastructure/observability.
package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Observability interface {
	Tracer() Tracer
	Logger() Logger
	Metrics() Metrics
}

// Metrics hands out the instrument registered under a key. Label names are
// fixed per key by LabelKeys.
type Metrics interface {
	Counter(name MetricKey) Counter
	Histogram(name MetricKey) Histogram
	Gauge(name MetricKey) Gauge
}

type Tracer interface {
	Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
}

// Counter only goes up: requests, reservations, sales.
type Counter interface {
	Add(delta float64, labels ...Label)
}

type Histogram interface {
	Observe(value float64, labels ...Label)
}

// Gauge reports a value that can go up and down, such as units on hand.
type Gauge interface {
	Set(value float64, labels ...Label)
}

type MetricKey string

// Label is a metric dimension. Values must stay low-cardinality: a use case
// name or a payment method, never a cart or order id.
type Label struct{ Key, Value string }

func L(k, v string) Label { return Label{Key: k, Value: v} }

// Field is a structured log attribute. Unlike labels, ids belong here.
type Field struct {
	Key   string
	Value any
}

func F(k string, v any) Field { return Field{Key: k, Value: v} }

// Err is the error field every log line uses. Adapters render it with the
// error's message.
func Err(err error) Field { return Field{Key: "error", Value: err} }

type Logger interface {
	With(fields ...Field) Logger
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}
