package payment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/cart"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/errkind"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/outbox"
	domain "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	names []string
}

func (r *recorder) Publish(_ context.Context, e domoutbox.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, e.EventName())
	return nil
}

type fixture struct {
	orders   *memory.OrderLedger
	payments *memory.PaymentLedger
	pay      *PayUseCase
	svc      *Service
	events   *recorder
}

func newFixture() *fixture {
	rec := &recorder{}
	orders := memory.NewOrderLedger(nil)
	payments := memory.NewPaymentLedger(nil)
	return &fixture{
		orders:   orders,
		payments: payments,
		pay:      NewPayUseCase(orders, payments, rec, nil),
		svc:      NewService(orders, payments, rec, nil),
		events:   rec,
	}
}

// placeOrder records a pending order for 3 units at 80000.
func (f *fixture) placeOrder(t *testing.T) *domorder.Order {
	t.Helper()
	o, err := f.orders.Create(context.Background(), func(id int) (*domorder.Order, error) {
		lines := []cart.Line{{ProductID: 1, Name: "jean clasico", UnitPrice: decimal.NewFromInt(80000), Quantity: 3}}
		return domorder.FromCart(id, domorder.Customer{Name: "Ana", Email: "ana@example.com"}, "Calle 1", lines, time.Now())
	})
	require.NoError(t, err)
	return o
}

func (f *fixture) orderStatus(t *testing.T, id int) domorder.Status {
	t.Helper()
	o, err := f.orders.Get(context.Background(), id)
	require.NoError(t, err)
	return o.Status
}

func TestPayConfirmsOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.placeOrder(t)

	p, err := f.pay.Execute(ctx, PayInput{OrderID: o.ID, Amount: decimal.NewFromInt(240000), Method: "Nequi"})
	require.NoError(t, err)
	assert.Equal(t, memory.DefaultPaymentIDBase+1, p.ID)
	assert.Equal(t, domain.StatusCompleted, p.Status)
	assert.Equal(t, domain.MethodNequi, p.Method)
	assert.Equal(t, domorder.StatusConfirmed, f.orderStatus(t, o.ID))
	assert.Equal(t, []string{"payment.completed", "order.status_changed"}, f.events.names)

	_, err = f.pay.Execute(ctx, PayInput{OrderID: o.ID, Amount: decimal.NewFromInt(240000), Method: "nequi"})
	require.ErrorIs(t, err, ErrOrderNotPayable)
}

func TestPayTolerance(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   domain.Status
	}{
		{"exact", "240000", domain.StatusCompleted},
		{"half a cent short", "239999.995", domain.StatusCompleted},
		{"one cent over", "240000.01", domain.StatusCompleted},
		{"two cents short", "239999.98", domain.StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			o := f.placeOrder(t)
			p, err := f.pay.Execute(context.Background(), PayInput{OrderID: o.ID, Amount: decimal.RequireFromString(tt.amount), Method: "daviplata"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Status)
		})
	}
}

func TestDeclinedPaymentIsRecordedAndRetried(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.placeOrder(t)

	p, err := f.pay.Execute(ctx, PayInput{OrderID: o.ID, Amount: decimal.NewFromInt(100), Method: "bancolombia"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, p.Status)
	assert.Equal(t, domain.FailureReasonAmountMismatch, p.FailureReason)
	assert.Equal(t, domorder.StatusPending, f.orderStatus(t, o.ID))

	recorded, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, recorded.Status)

	// The amount is part of the payment, so retrying alone cannot fix it.
	again, err := f.svc.Retry(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, again.Status)
	assert.Equal(t, 2, again.Attempts)

	ok, err := f.pay.Execute(ctx, PayInput{OrderID: o.ID, Amount: decimal.NewFromInt(240000), Method: "bancolombia"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, ok.Status)

	_, err = f.svc.Retry(ctx, p.ID)
	require.ErrorIs(t, err, ErrOrderNotPayable)
	_, err = f.svc.Retry(ctx, ok.ID)
	require.ErrorIs(t, err, domain.ErrAlreadyCompleted)
}

func TestPaymentWithoutOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	p, err := f.pay.Execute(ctx, PayInput{Amount: decimal.NewFromInt(5000), Method: "efectivo"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, p.Status)
	assert.Equal(t, domain.FailureReasonInvalidMethod, p.FailureReason)
	assert.Nil(t, p.Order)

	cancelled, err := f.svc.Cancel(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	_, err = f.svc.Cancel(ctx, p.ID)
	require.ErrorIs(t, err, domain.ErrNotCancellable)

	_, err = f.pay.Execute(ctx, PayInput{OrderID: 42, Amount: decimal.NewFromInt(1), Method: "nequi"})
	require.ErrorIs(t, err, errkind.ErrNotFound)
	_, err = f.svc.Retry(ctx, 9999)
	require.ErrorIs(t, err, errkind.ErrNotFound)
}

func TestCancelledOrderCannotBePaid(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := f.placeOrder(t)
	_, err := f.orders.Update(ctx, o.ID, func(o *domorder.Order) error { return o.Cancel(ctx, noStock{}) })
	require.NoError(t, err)

	_, err = f.pay.Execute(ctx, PayInput{OrderID: o.ID, Amount: decimal.NewFromInt(240000), Method: "nequi"})
	require.ErrorIs(t, err, ErrOrderNotPayable)
	n, err := f.payments.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "a refused payment is not recorded")
}

func TestListAndReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	first := f.placeOrder(t)
	second := f.placeOrder(t)

	_, err := f.pay.Execute(ctx, PayInput{OrderID: first.ID, Amount: decimal.NewFromInt(1), Method: "daviplata"})
	require.NoError(t, err)
	_, err = f.pay.Execute(ctx, PayInput{OrderID: first.ID, Amount: decimal.NewFromInt(240000), Method: "nequi"})
	require.NoError(t, err)
	_, err = f.pay.Execute(ctx, PayInput{OrderID: second.ID, Amount: decimal.NewFromInt(240000), Method: "daviplata"})
	require.NoError(t, err)
	_, err = f.pay.Execute(ctx, PayInput{Amount: decimal.NewFromInt(1000), Method: "bancolombia"})
	require.NoError(t, err)

	byOrder, err := f.svc.List(ctx, Filter{OrderID: first.ID})
	require.NoError(t, err)
	assert.Len(t, byOrder, 2)

	completedDavi, err := f.svc.List(ctx, Filter{Status: "completado", Method: "DAVIPLATA"})
	require.NoError(t, err)
	require.Len(t, completedDavi, 1)
	assert.Equal(t, second.ID, completedDavi[0].Order.ID)

	_, err = f.svc.List(ctx, Filter{Method: "efectivo"})
	require.ErrorIs(t, err, errkind.ErrValidation)

	r, err := f.svc.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Payments)
	assert.Equal(t, 3, r.ByStatus[domain.StatusCompleted])
	assert.Equal(t, 1, r.ByStatus[domain.StatusFailed])
	assert.True(t, r.TotalCompleted.Equal(decimal.NewFromInt(481000)), "got %s", r.TotalCompleted)
	assert.Equal(t, domain.MethodDaviplata, r.MostUsedMethod)
	assert.InDelta(t, 75.0, r.SuccessRate, 1e-9)
}

type noStock struct{}

func (noStock) IncreaseStock(context.Context, int, int) (*inventory.Product, error) { return nil, nil }
