package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/cart"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/pkg/sequence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeOrder(t *testing.T, l *OrderLedger, email string, price int64) *order.Order {
	t.Helper()
	o, err := l.Create(context.Background(), func(id int) (*order.Order, error) {
		lines := []cart.Line{{ProductID: 1, Name: "jean", UnitPrice: decimal.NewFromInt(price), Quantity: 1}}
		return order.FromCart(id, order.Customer{Name: "x", Email: email}, "", lines, time.Now())
	})
	require.NoError(t, err)
	return o
}

func TestOrderLedgerAssignsSequentialIDs(t *testing.T) {
	l := NewOrderLedger(nil)

	first := placeOrder(t, l, "a@x.co", 100)
	assert.Equal(t, 1, first.ID)

	_, err := l.Create(context.Background(), func(id int) (*order.Order, error) {
		return order.FromCart(id, order.Customer{Email: "a@x.co"}, "", nil, time.Now())
	})
	require.ErrorIs(t, err, order.ErrEmptyCart)

	second := placeOrder(t, l, "a@x.co", 100)
	assert.Equal(t, 2, second.ID, "a failed build consumes no id")
}

func TestOrderLedgerSeededSequence(t *testing.T) {
	l := NewOrderLedger(sequence.New(41))
	assert.Equal(t, 42, placeOrder(t, l, "a@x.co", 1).ID)
}

func TestOrderLedgerQueriesAndAggregates(t *testing.T) {
	ctx := context.Background()
	l := NewOrderLedger(nil)
	placeOrder(t, l, "ana@x.co", 100)
	placeOrder(t, l, "luis@x.co", 200)
	third := placeOrder(t, l, "ANA@x.co", 300)

	_, err := l.Update(ctx, third.ID, func(o *order.Order) error { return o.Confirm() })
	require.NoError(t, err)
	_, err = l.Update(ctx, 2, func(o *order.Order) error { return o.Cancel(ctx, noopRestorer{}) })
	require.NoError(t, err)

	byEmail, err := l.FindByEmail(ctx, "ana@x.co")
	require.NoError(t, err)
	require.Len(t, byEmail, 2)
	assert.Equal(t, []int{1, 3}, []int{byEmail[0].ID, byEmail[1].ID})

	confirmed, err := l.FindByStatus(ctx, order.StatusConfirmed)
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, 3, confirmed[0].ID)

	n, err := l.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = l.CountByStatus(ctx, order.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	sales, err := l.TotalSales(ctx)
	require.NoError(t, err)
	assert.True(t, sales.Equal(decimal.NewFromInt(400)), "cancelled orders excluded, got %s", sales)
}

func TestOrderLedgerUpdateFailureKeepsStoredOrder(t *testing.T) {
	ctx := context.Background()
	l := NewOrderLedger(nil)
	o := placeOrder(t, l, "a@x.co", 1)

	_, err := l.Update(ctx, o.ID, func(o *order.Order) error {
		o.ShippingAddress = "changed"
		return o.TransitionTo(order.StatusDelivered)
	})
	require.ErrorIs(t, err, order.ErrInvalidTransition)

	got, err := l.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.Empty(t, got.ShippingAddress)

	_, err = l.Get(ctx, 99)
	require.ErrorIs(t, err, order.ErrNotFound)
}

func pay(t *testing.T, l *PaymentLedger, amount int64, method string, ref *payment.OrderRef) *payment.Payment {
	t.Helper()
	p, err := l.Create(context.Background(), func(id int) (*payment.Payment, error) {
		p := payment.New(id, decimal.NewFromInt(amount), method, ref, time.Now())
		return p, p.Process()
	})
	require.NoError(t, err)
	return p
}

func TestPaymentLedgerStartsAboveBase(t *testing.T) {
	l := NewPaymentLedger(nil)
	assert.Equal(t, 101, pay(t, l, 10, "nequi", nil).ID)
	assert.Equal(t, 102, pay(t, l, 10, "nequi", nil).ID)
}

func TestPaymentLedgerAggregates(t *testing.T) {
	ctx := context.Background()
	l := NewPaymentLedger(sequence.New(DefaultPaymentIDBase))

	rate, err := l.SuccessRate(ctx)
	require.NoError(t, err)
	assert.Zero(t, rate)
	_, ok, err := l.MostUsedMethod(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	ref := &payment.OrderRef{ID: 1, Total: decimal.NewFromInt(500)}
	pay(t, l, 500, "nequi", ref)
	pay(t, l, 10, "daviplata", ref)
	pay(t, l, 20, "daviplata", nil)
	pay(t, l, 30, "nequi", nil)

	total, err := l.TotalCompleted(ctx)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(550)), "got %s", total)

	rate, err = l.SuccessRate(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 75.0, rate, 1e-9)

	m, ok, err := l.MostUsedMethod(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payment.MethodNequi, m, "ties go to the first method used")

	byOrder, err := l.FindByOrder(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byOrder, 2)

	failed, err := l.FindByStatus(ctx, payment.StatusFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, payment.FailureReasonAmountMismatch, failed[0].FailureReason)

	byMethod, err := l.FindByMethod(ctx, payment.MethodDaviplata)
	require.NoError(t, err)
	assert.Len(t, byMethod, 2)

	n, err := l.CountByStatus(ctx, payment.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

type noopRestorer struct{}

func (noopRestorer) IncreaseStock(context.Context, int, int) (*inventory.Product, error) {
	return nil, nil
}
