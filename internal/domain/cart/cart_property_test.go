package cart_test

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/cart"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

// Units are only ever moved between inventory and carts, never created or lost.
func TestCartStockConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		initial := map[int]int{
			1: rapid.IntRange(0, 20).Draw(t, "stock1"),
			2: rapid.IntRange(0, 20).Draw(t, "stock2"),
		}
		var seed []*inventory.Product
		for _, id := range []int{1, 2} {
			p, err := inventory.NewProduct(id, "p", decimal.NewFromInt(1000), initial[id], "x", nil, nil)
			if err != nil {
				t.Fatal(err)
			}
			seed = append(seed, p)
		}
		store, err := memory.NewInventoryStore(seed...)
		if err != nil {
			t.Fatal(err)
		}
		carts := []*cart.Cart{cart.New("a", "", store), cart.New("b", "", store)}

		pickCart := func(t *rapid.T) *cart.Cart { return rapid.SampledFrom(carts).Draw(t, "cart") }
		pickProduct := func(t *rapid.T) int { return rapid.IntRange(1, 2).Draw(t, "product") }

		t.Repeat(map[string]func(*rapid.T){
			"add": func(t *rapid.T) {
				_, _ = pickCart(t).AddItem(ctx, pickProduct(t), rapid.IntRange(-2, 8).Draw(t, "qty"), cart.Selection{})
			},
			"update": func(t *rapid.T) {
				_ = pickCart(t).UpdateQuantity(ctx, pickProduct(t), rapid.IntRange(-1, 12).Draw(t, "n"))
			},
			"remove": func(t *rapid.T) {
				_, _, _ = pickCart(t).RemoveItem(ctx, pickProduct(t))
			},
			"clear": func(t *rapid.T) {
				_ = pickCart(t).Clear(ctx)
			},
			"": func(t *rapid.T) {
				for id, want := range initial {
					p, err := store.Get(ctx, id)
					if err != nil {
						t.Fatal(err)
					}
					if p.Stock < 0 {
						t.Fatalf("product %d has negative stock %d", id, p.Stock)
					}
					if p.Available() != (p.Stock > 0) {
						t.Fatalf("product %d availability %v with stock %d", id, p.Available(), p.Stock)
					}
					reserved := 0
					for _, c := range carts {
						if it, ok := c.Item(id); ok {
							if it.Quantity < 1 {
								t.Fatalf("cart %s holds %d units of %d", c.ID(), it.Quantity, id)
							}
							reserved += it.Quantity
						}
					}
					if p.Stock+reserved != want {
						t.Fatalf("product %d: stock %d + reserved %d != %d", id, p.Stock, reserved, want)
					}
				}
			},
		})
	})
}
