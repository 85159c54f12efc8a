package application

import (
	"context"
	"errors"
	"time"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/errkind"
	domoutbox "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}

const spanPrefix = "UC."

// Instrument holds what every use case of one service reports to.
type Instrument struct {
	tracer observability.Tracer
	log    observability.Logger
	// RED metrics (supplied via DI; do not instantiate inside methods).
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
}

func NewInstrument(tel observability.Observability, service string) Instrument {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()
	return Instrument{
		tracer:       tel.Tracer(),
		log:          tel.Logger().With(observability.F("service", service)),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
	}
}

// Logger is the service logger, for work outside a use case.
func (in Instrument) Logger() observability.Logger { return in.log }

// Run is one use case execution. End must be deferred right after Start.
type Run struct {
	in            Instrument
	useCase       string
	ctx           context.Context
	span          trace.Span
	logger        observability.Logger
	start         time.Time
	outcome       string
	status        string
	failureReason string
	fields        []observability.Field
}

// Start opens the use case span and puts a use-case scoped logger on the
// returned context.
func (in Instrument) Start(ctx context.Context, useCase, spanName string, attrs ...attribute.KeyValue) (context.Context, *Run) {
	logger := logctx.FromOr(ctx, in.log).With(observability.F("use_case", useCase))

	attrs = append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)
	ctx, span := in.tracer.Start(ctx, spanPrefix+spanName, attrs...)
	ctx = logctx.With(ctx, logger)

	return ctx, &Run{
		in:      in,
		useCase: useCase,
		ctx:     ctx,
		span:    span,
		logger:  logger,
		start:   time.Now(),
		outcome: "success",
		status:  "OK",
	}
}

func (r *Run) Span() trace.Span { return r.span }

func (r *Run) Logger() observability.Logger { return r.logger }

// With adds fields to the use_case_done line.
func (r *Run) With(fields ...observability.Field) {
	r.fields = append(r.fields, fields...)
}

// Fail marks the run as an error with the given status text.
func (r *Run) Fail(status string) {
	r.outcome, r.status = "error", status
}

// Outcome records a business result that is not an error, such as a
// declined payment.
func (r *Run) Outcome(status, failureReason string) {
	r.status, r.failureReason = status, failureReason
}

// End closes the span, records the RED metrics and writes use_case_done.
func (r *Run) End(err error) {
	if err != nil && r.outcome != "error" {
		r.Fail(StatusFor(err))
	}
	if err != nil && r.failureReason == "" {
		r.failureReason = FailureReason(err)
	}
	lat := time.Since(r.start).Seconds()

	if r.span != nil {
		if err != nil {
			r.span.RecordError(err)
			r.span.SetStatus(codes.Error, r.status)
		} else {
			r.span.SetStatus(codes.Ok, r.status)
		}
		r.span.End()
	}

	if r.in.reqCounter != nil {
		r.in.reqCounter.Add(1,
			observability.L("use_case", r.useCase),
			observability.L("outcome", r.outcome),
		)
	}
	if r.in.durHistogram != nil {
		r.in.durHistogram.Observe(lat,
			observability.L("use_case", r.useCase),
		)
	}

	fields := []observability.Field{
		observability.F("outcome", r.outcome),
		observability.F("status", r.status),
		observability.F("latency_seconds", lat),
	}
	fields = append(fields, r.fields...)
	if sc := trace.SpanContextFromContext(r.ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	if r.failureReason != "" {
		fields = append(fields, observability.F("failure_reason", r.failureReason))
	}
	if err != nil {
		fields = append(fields, observability.Err(err))
	}

	r.logger.Info("use_case_done", fields...)
}

// StatusFor names an error by its kind, for span status and logs.
func StatusFor(err error) string {
	switch {
	case err == nil:
		return "OK"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "CONTEXT_CANCELED"
	}
	switch errkind.Of(err) {
	case errkind.ErrNotFound:
		return "NOT_FOUND"
	case errkind.ErrInsufficientStock:
		return "INSUFFICIENT_STOCK"
	case errkind.ErrInvalidQuantity:
		return "INVALID_QUANTITY"
	case errkind.ErrInvalidState:
		return "INVALID_STATE"
	case errkind.ErrValidation:
		return "VALIDATION_FAILED"
	}
	return "INTERNAL"
}

// FailureReason is the low-cardinality reason logged for a failed run.
func FailureReason(err error) string {
	switch StatusFor(err) {
	case "NOT_FOUND":
		return "not_found"
	case "INSUFFICIENT_STOCK":
		return "insufficient_stock"
	case "INVALID_QUANTITY":
		return "invalid_quantity"
	case "INVALID_STATE":
		return "invalid_state"
	case "VALIDATION_FAILED":
		return "validation_failed"
	case "CONTEXT_CANCELED":
		return "context_canceled"
	}
	return "internal"
}

const publishTimeout = 300 * time.Millisecond

// Publish hands events to the bus on behalf of a finished state change. It is
// best effort: a failure is recorded on the run, never returned.
func (r *Run) Publish(ctx context.Context, publisher domoutbox.Publisher, events ...domoutbox.Event) {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := domoutbox.PublishAll(pubCtx, publisher, events...); err != nil {
		r.With(observability.F("event_publish_error", err.Error()))
	}
}
