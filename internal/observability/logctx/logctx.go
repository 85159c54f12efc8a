// Package logctx carries the request or event scoped logger through a
// context, so the bus and the use cases log with the ids of whoever called
// them.
package logctx

import (
	"context"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability"
)

type loggerKey struct{}

func With(ctx context.Context, logger observability.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// From returns the logger on ctx, or nil.
func From(ctx context.Context) observability.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(observability.Logger)
	return logger
}

func FromOr(ctx context.Context, fallback observability.Logger) observability.Logger {
	if logger := From(ctx); logger != nil {
		return logger
	}
	return fallback
}

// Enrich tags the logger on ctx with the entity an operation works on, such
// as a cart session or an order. A ctx without a logger is returned as is.
func Enrich(ctx context.Context, fields ...observability.Field) context.Context {
	logger := From(ctx)
	if logger == nil || len(fields) == 0 {
		return ctx
	}
	return With(ctx, logger.With(fields...))
}
