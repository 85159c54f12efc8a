package order

import (
	"context"
	"sync"
	"testing"

	cartapp "github.com/Zhima-Mochi/minishop-retail/app/internal/application/cart"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/errkind"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/inventory"
	domain "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/infrastructure/memory"
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

func (r *recorder) last() domoutbox.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}

type fixture struct {
	store    *memory.InventoryStore
	carts    *cartapp.Service
	checkout *CheckoutUseCase
	orders   *Service
	events   *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	p, err := inventory.NewProduct(1, "jean clasico", decimal.NewFromInt(80000), 10, "Caballero", []string{"32"}, []string{"azul"})
	require.NoError(t, err)
	q, err := inventory.NewProduct(2, "bermudas", decimal.NewFromInt(60000), 5, "Caballero", nil, nil)
	require.NoError(t, err)
	store, err := memory.NewInventoryStore(p, q)
	require.NoError(t, err)

	rec := &recorder{}
	ledger := memory.NewOrderLedger(nil)
	carts := cartapp.NewService(store, rec, nil)
	return &fixture{
		store:    store,
		carts:    carts,
		checkout: NewCheckoutUseCase(carts, ledger, rec, nil),
		orders:   NewService(ledger, store, rec, nil),
		events:   rec,
	}
}

func (f *fixture) stock(t *testing.T, id int) int {
	t.Helper()
	p, err := f.store.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

// cartWith opens a session and puts qty units of product 1 in it.
func (f *fixture) cartWith(t *testing.T, qty int) string {
	t.Helper()
	ctx := context.Background()
	v, err := f.carts.Open(ctx, cartapp.OpenInput{CustomerEmail: "ana@example.com", CustomerName: "Ana"})
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, cartapp.AddItemInput{CartID: v.ID, ProductID: 1, Quantity: qty, Size: "32"})
	require.NoError(t, err)
	return v.ID
}

func TestCheckoutHandsReservationToOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cartID := f.cartWith(t, 3)
	assert.Equal(t, 7, f.stock(t, 1))

	o, err := f.checkout.Execute(ctx, CheckoutInput{CartID: cartID, ShippingAddress: " Calle 1 "})
	require.NoError(t, err)
	assert.Equal(t, 1, o.ID)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, "ana@example.com", o.Customer.Email)
	assert.Equal(t, "Ana", o.Customer.Name)
	assert.Equal(t, "Calle 1", o.ShippingAddress)
	assert.True(t, o.Total().Equal(decimal.NewFromInt(240000)), "got %s", o.Total())
	assert.Equal(t, 7, f.stock(t, 1), "checkout must not return units to stock")

	v, err := f.carts.View(ctx, cartID)
	require.NoError(t, err)
	assert.Zero(t, v.ItemCount)

	created, ok := f.events.last().(domain.OrderCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, o.ID, created.OrderID)
	assert.Equal(t, 3, created.Units)
}

func TestCheckoutRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.checkout.Execute(ctx, CheckoutInput{CartID: "nope"})
	require.ErrorIs(t, err, errkind.ErrNotFound)

	v, err := f.carts.Open(ctx, cartapp.OpenInput{})
	require.NoError(t, err)
	_, err = f.checkout.Execute(ctx, CheckoutInput{CartID: v.ID, CustomerEmail: "x@example.com"})
	require.ErrorIs(t, err, domain.ErrEmptyCart)

	_, err = f.carts.AddItem(ctx, cartapp.AddItemInput{CartID: v.ID, ProductID: 2, Quantity: 2})
	require.NoError(t, err)
	gone, err := f.store.Get(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, f.store.Remove(ctx, 2))
	_, err = f.checkout.Execute(ctx, CheckoutInput{CartID: v.ID, ShippingAddress: "Calle 1"})
	require.ErrorIs(t, err, errkind.ErrNotFound)
	require.NoError(t, f.store.Add(ctx, gone))

	again, err := f.carts.View(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, again.UnitCount, "a failed checkout leaves the cart alone")
}

func TestAnonymousCartChecksOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	v, err := f.carts.Open(ctx, cartapp.OpenInput{})
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, cartapp.AddItemInput{CartID: v.ID, ProductID: 2, Quantity: 2})
	require.NoError(t, err)

	o, err := f.checkout.Execute(ctx, CheckoutInput{CartID: v.ID, ShippingAddress: "Calle 1"})
	require.NoError(t, err)
	assert.Equal(t, 1, o.ID)
	assert.Empty(t, o.Customer.Email)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, 3, f.stock(t, 2))
}

func TestOrderIsFrozenAgainstLaterCartActivity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cartID := f.cartWith(t, 3)

	o, err := f.checkout.Execute(ctx, CheckoutInput{CartID: cartID})
	require.NoError(t, err)

	_, err = f.carts.AddItem(ctx, cartapp.AddItemInput{CartID: cartID, ProductID: 1, Quantity: 2})
	require.NoError(t, err)
	_, err = f.store.SetPrice(ctx, 1, decimal.NewFromInt(1))
	require.NoError(t, err)

	got, err := f.orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Units())
	assert.True(t, got.Total().Equal(decimal.NewFromInt(240000)))

	_, err = f.orders.Cancel(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, f.stock(t, 1), "cancel returns exactly the frozen units")

	_, err = f.orders.Cancel(ctx, o.ID)
	require.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	assert.Equal(t, 8, f.stock(t, 1))
}

func TestChangeStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o, err := f.checkout.Execute(ctx, CheckoutInput{CartID: f.cartWith(t, 1)})
	require.NoError(t, err)

	_, err = f.orders.ChangeStatus(ctx, o.ID, "entregado")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.orders.ChangeStatus(ctx, o.ID, "lost")
	require.ErrorIs(t, err, errkind.ErrValidation)

	for _, step := range []string{"Confirmado", "shipped"} {
		_, err = f.orders.ChangeStatus(ctx, o.ID, step)
		require.NoError(t, err)
	}
	changed, ok := f.events.last().(domain.OrderStatusChangedEvent)
	require.True(t, ok)
	assert.Equal(t, domain.StatusConfirmed, changed.From)
	assert.Equal(t, domain.StatusShipped, changed.To)

	_, err = f.orders.ChangeStatus(ctx, o.ID, "cancelado")
	require.ErrorIs(t, err, domain.ErrNotCancellable)

	got, err := f.orders.ChangeStatus(ctx, o.ID, "delivered")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, got.Status)

	_, err = f.orders.ChangeStatus(ctx, 99, "confirmed")
	require.ErrorIs(t, err, errkind.ErrNotFound)
}

func TestChangeStatusToCancelledRestoresStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	o, err := f.checkout.Execute(ctx, CheckoutInput{CartID: f.cartWith(t, 4)})
	require.NoError(t, err)
	assert.Equal(t, 6, f.stock(t, 1))

	got, err := f.orders.ChangeStatus(ctx, o.ID, "CANCELADO")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.Equal(t, 10, f.stock(t, 1))

	released, ok := f.events.last().(inventory.StockReleasedEvent)
	require.True(t, ok)
	assert.Equal(t, "order", released.Source)
	assert.Equal(t, 4, released.Quantity)
	assert.Equal(t, 10, released.Remaining)
}

func TestListAndSalesReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.checkout.Execute(ctx, CheckoutInput{CartID: f.cartWith(t, 1)})
	require.NoError(t, err)
	_, err = f.checkout.Execute(ctx, CheckoutInput{CartID: f.cartWith(t, 2), CustomerEmail: "luis@example.com"})
	require.NoError(t, err)
	third, err := f.checkout.Execute(ctx, CheckoutInput{CartID: f.cartWith(t, 1)})
	require.NoError(t, err)

	_, err = f.orders.Cancel(ctx, third.ID)
	require.NoError(t, err)
	_, err = f.orders.ChangeStatus(ctx, first.ID, "confirmed")
	require.NoError(t, err)

	all, err := f.orders.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	anas, err := f.orders.List(ctx, Filter{Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Len(t, anas, 2)

	pending, err := f.orders.List(ctx, Filter{Status: "pendiente"})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].ID)

	_, err = f.orders.List(ctx, Filter{Status: "lost"})
	require.ErrorIs(t, err, errkind.ErrValidation)

	r, err := f.orders.SalesReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Orders)
	assert.Equal(t, 1, r.ByStatus[domain.StatusPending])
	assert.Equal(t, 1, r.ByStatus[domain.StatusConfirmed])
	assert.Equal(t, 1, r.ByStatus[domain.StatusCancelled])
	assert.True(t, r.TotalSales.Equal(decimal.NewFromInt(3*80000)), "got %s", r.TotalSales)
}
