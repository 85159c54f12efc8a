package cart_test

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/cart"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/errkind"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jeanID = 1

func newStore(t *testing.T, stock int) *memory.InventoryStore {
	t.Helper()
	p, err := inventory.NewProduct(jeanID, "jean clasico", decimal.NewFromInt(80000), stock, "Caballero",
		[]string{"32", "34", "36"}, []string{"azul", "negro"})
	require.NoError(t, err)
	store, err := memory.NewInventoryStore(p)
	require.NoError(t, err)
	return store
}

func stockOf(t *testing.T, store inventory.Store, id int) int {
	t.Helper()
	p, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func TestCartReservationScenario(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 10)
	c := cart.New("c-1", "", store)

	_, err := c.AddItem(ctx, jeanID, 3, cart.Selection{Size: "32", Color: "azul"})
	require.NoError(t, err)
	assert.Equal(t, 7, stockOf(t, store, jeanID))

	total, err := c.Total(ctx)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(240000)), "total %s", total)

	_, err = c.AddItem(ctx, jeanID, 8, cart.Selection{})
	require.ErrorIs(t, err, errkind.ErrInsufficientStock)
	assert.Equal(t, 7, stockOf(t, store, jeanID))
	it, _ := c.Item(jeanID)
	assert.Equal(t, 3, it.Quantity)

	require.NoError(t, c.UpdateQuantity(ctx, jeanID, 1))
	assert.Equal(t, 9, stockOf(t, store, jeanID))

	removed, ok, err := c.RemoveItem(ctx, jeanID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, removed.Quantity)
	assert.Equal(t, 10, stockOf(t, store, jeanID))
	assert.True(t, c.IsEmpty())
}

func TestAddItemKeepsOriginalSelection(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 10)
	c := cart.New("c-1", "ana@example.com", store)

	_, err := c.AddItem(ctx, jeanID, 1, cart.Selection{Size: "34", Color: "negro"})
	require.NoError(t, err)
	_, err = c.AddItem(ctx, jeanID, 2, cart.Selection{Size: "36", Color: "azul"})
	require.NoError(t, err)

	it, ok := c.Item(jeanID)
	require.True(t, ok)
	assert.Equal(t, 3, it.Quantity)
	assert.Equal(t, cart.Selection{Size: "34", Color: "negro"}, it.Selection)
	assert.Equal(t, 1, c.ItemCount())
	assert.Equal(t, 3, c.UnitCount())
}

func TestAddItemRejections(t *testing.T) {
	tests := []struct {
		name    string
		product int
		qty     int
		sel     cart.Selection
		kind    error
	}{
		{name: "zero quantity", product: jeanID, qty: 0, kind: errkind.ErrInvalidQuantity},
		{name: "negative quantity", product: jeanID, qty: -2, kind: errkind.ErrInvalidQuantity},
		{name: "unknown product", product: 99, qty: 1, kind: errkind.ErrNotFound},
		{name: "unknown size", product: jeanID, qty: 1, sel: cart.Selection{Size: "50"}, kind: errkind.ErrValidation},
		{name: "unknown color", product: jeanID, qty: 1, sel: cart.Selection{Color: "rojo"}, kind: errkind.ErrValidation},
		{name: "more than stock", product: jeanID, qty: 11, kind: errkind.ErrInsufficientStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStore(t, 10)
			c := cart.New("c-1", "", store)

			_, err := c.AddItem(context.Background(), tt.product, tt.qty, tt.sel)
			require.ErrorIs(t, err, tt.kind)
			assert.Equal(t, 10, stockOf(t, store, jeanID))
			assert.True(t, c.IsEmpty())
		})
	}
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("increase beyond stock leaves item unchanged", func(t *testing.T) {
		store := newStore(t, 5)
		c := cart.New("c", "", store)
		_, err := c.AddItem(ctx, jeanID, 2, cart.Selection{})
		require.NoError(t, err)

		err = c.UpdateQuantity(ctx, jeanID, 6)
		require.ErrorIs(t, err, errkind.ErrInsufficientStock)
		it, _ := c.Item(jeanID)
		assert.Equal(t, 2, it.Quantity)
		assert.Equal(t, 3, stockOf(t, store, jeanID))
	})

	t.Run("zero removes and restores", func(t *testing.T) {
		store := newStore(t, 5)
		c := cart.New("c", "", store)
		_, err := c.AddItem(ctx, jeanID, 4, cart.Selection{})
		require.NoError(t, err)

		require.NoError(t, c.UpdateQuantity(ctx, jeanID, 0))
		assert.True(t, c.IsEmpty())
		assert.Equal(t, 5, stockOf(t, store, jeanID))
	})

	t.Run("missing item", func(t *testing.T) {
		c := cart.New("c", "", newStore(t, 5))
		require.ErrorIs(t, c.UpdateQuantity(ctx, jeanID, 1), errkind.ErrNotFound)
	})
}

func TestRemoveMissingItemReportsAbsence(t *testing.T) {
	c := cart.New("c", "", newStore(t, 5))
	_, ok, err := c.RemoveItem(context.Background(), jeanID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClearRestoresEverything(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 10)
	c := cart.New("c", "", store)
	_, err := c.AddItem(ctx, jeanID, 6, cart.Selection{})
	require.NoError(t, err)

	require.NoError(t, c.Clear(ctx))
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 10, stockOf(t, store, jeanID))
}

func TestRemovingItemOfDeletedProductSucceeds(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 10)
	c := cart.New("c", "", store)
	_, err := c.AddItem(ctx, jeanID, 2, cart.Selection{})
	require.NoError(t, err)
	require.NoError(t, store.Remove(ctx, jeanID))

	_, ok, err := c.RemoveItem(ctx, jeanID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, c.IsEmpty())
}

func TestTotalUsesLivePrice(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 10)
	c := cart.New("c", "", store)
	_, err := c.AddItem(ctx, jeanID, 2, cart.Selection{})
	require.NoError(t, err)

	_, err = store.SetPrice(ctx, jeanID, decimal.NewFromInt(75000))
	require.NoError(t, err)

	total, err := c.Total(ctx)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(150000)))
}

func TestHandOffKeepsReservation(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 10)
	c := cart.New("c", "", store)
	_, err := c.AddItem(ctx, jeanID, 3, cart.Selection{Size: "32"})
	require.NoError(t, err)

	var got []cart.Line
	err = c.HandOff(ctx, func(lines []cart.Line) error {
		got = lines
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Quantity)
	assert.Equal(t, "jean clasico", got[0].Name)
	assert.True(t, cart.Sum(got).Equal(decimal.NewFromInt(240000)))

	assert.True(t, c.IsEmpty())
	assert.Equal(t, 7, stockOf(t, store, jeanID), "handed-off units stay reserved")
}

func TestHandOffFailureLeavesCartIntact(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 10)
	c := cart.New("c", "", store)

	require.ErrorIs(t, c.HandOff(ctx, func([]cart.Line) error { return nil }), cart.ErrEmpty)

	_, err := c.AddItem(ctx, jeanID, 3, cart.Selection{})
	require.NoError(t, err)
	err = c.HandOff(ctx, func([]cart.Line) error { return assert.AnError })
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 3, c.UnitCount())
	assert.Equal(t, 7, stockOf(t, store, jeanID))
}
