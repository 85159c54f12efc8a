package logctx_test

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability/logctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEnrichTagsTheContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zaplogger.New(zap.New(core), observability.F("use_case", "cart.add_item"))

	ctx := logctx.With(context.Background(), base)
	ctx = logctx.Enrich(ctx, observability.F("cart_id", "c-1"), observability.F("customer_email", "ana@example.com"))
	logctx.From(ctx).Info("event_enqueued")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "cart.add_item", fields["use_case"])
	assert.Equal(t, "c-1", fields["cart_id"])
	assert.Equal(t, "ana@example.com", fields["customer_email"])
}

func TestEnrichWithoutLogger(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, logctx.Enrich(ctx, observability.F("cart_id", "c-1")))
	assert.Nil(t, logctx.From(ctx))

	fallback := observability.NopLogger()
	assert.Equal(t, fallback, logctx.FromOr(ctx, fallback))
}
