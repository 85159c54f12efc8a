package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/errkind"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/inventory"
	domoutbox "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/outbox"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []domoutbox.Event
}

func (r *recorder) Publish(_ context.Context, e domoutbox.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func TestAdminUseCases(t *testing.T) {
	ctx := context.Background()
	c, store := seeded(t)
	rec := &recorder{}
	admin := NewAdmin(store, rec, nil)

	p, err := admin.AddProduct(ctx, AddProductInput{ID: 7, Name: "falda", Price: decimal.NewFromInt(55000), Stock: 3, Category: "Dama"})
	require.NoError(t, err)
	assert.Equal(t, 7, p.ID)

	_, err = admin.AddProduct(ctx, AddProductInput{ID: 7, Name: "otra", Price: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, errkind.ErrInvalidState)

	p, err = admin.SetStock(ctx, 7, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, p.Stock)
	_, err = admin.SetStock(ctx, 7, -1)
	require.ErrorIs(t, err, errkind.ErrInvalidQuantity)

	p, err = admin.SetPrice(ctx, 7, decimal.NewFromInt(50000))
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(50000)))
	_, err = admin.SetPrice(ctx, 7, decimal.Zero)
	require.ErrorIs(t, err, errkind.ErrValidation)

	require.NoError(t, admin.RemoveProduct(ctx, 7))
	_, err = c.Product(ctx, 7)
	require.ErrorIs(t, err, errkind.ErrNotFound)
	require.ErrorIs(t, admin.RemoveProduct(ctx, 7), errkind.ErrNotFound)

	require.Len(t, rec.events, 3)
	last, ok := rec.events[2].(inventory.StockAdjustedEvent)
	require.True(t, ok)
	assert.Equal(t, 0, last.Stock)
}
