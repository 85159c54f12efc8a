// Package reporting turns domain events into business metrics and low stock
// warnings.
package reporting

import (
	"context"
	"strconv"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/application"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/outbox"
	dompayment "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	workerService  = "reporting_worker"
	useCasePrefix  = "reporting."
	outcomeHandled = "handled"
	outcomeIgnored = "ignored"
)

// Events lists every event the worker subscribes to.
var Events = []string{
	inventory.StockReservedEvent{}.EventName(),
	inventory.StockReleasedEvent{}.EventName(),
	inventory.ReservationFailedEvent{}.EventName(),
	inventory.StockAdjustedEvent{}.EventName(),
	domorder.OrderCreatedEvent{}.EventName(),
	domorder.OrderStatusChangedEvent{}.EventName(),
	domorder.OrderCancelledEvent{}.EventName(),
	dompayment.PaymentProcessedEvent{Status: dompayment.StatusCompleted}.EventName(),
	dompayment.PaymentProcessedEvent{Status: dompayment.StatusFailed}.EventName(),
	dompayment.PaymentCancelledEvent{}.EventName(),
}

// Middleware wraps every handler the worker subscribes, for event-scoped
// context such as loggers.
type Middleware func(domoutbox.Handler) domoutbox.Handler

type Worker struct {
	subscriber domoutbox.Subscriber
	threshold  int
	middleware Middleware
	in         application.Instrument

	handled      observability.Counter // events_handled_total{event,outcome}
	stockUnits   observability.Gauge   // inventory_stock_units{product_id}
	reservations observability.Counter // inventory_reservations_total{outcome}
	orders       observability.Counter // orders_total{event}
	payments     observability.Counter // payments_total{method,status}
	sales        observability.Counter // sales_amount_total{method}
}

// New builds a worker that warns when a product drops below lowStock units.
// middleware may be nil.
func New(subscriber domoutbox.Subscriber, lowStock int, middleware Middleware, tel observability.Observability) *Worker {
	if tel == nil {
		tel = observability.Nop()
	}
	m := tel.Metrics()
	return &Worker{
		subscriber:   subscriber,
		threshold:    lowStock,
		middleware:   middleware,
		in:           application.NewInstrument(tel, workerService),
		handled:      m.Counter(observability.MEventsHandled),
		stockUnits:   m.Gauge(observability.MStockUnits),
		reservations: m.Counter(observability.MStockReservations),
		orders:       m.Counter(observability.MOrders),
		payments:     m.Counter(observability.MPayments),
		sales:        m.Counter(observability.MSalesAmount),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil {
		return
	}
	var h domoutbox.Handler = w.handle
	if w.middleware != nil {
		h = w.middleware(h)
	}
	for _, name := range Events {
		w.subscriber.Subscribe(name, h)
	}
}

// Seed reports the stock of every product once, so the gauge is complete
// before the first event arrives.
func (w *Worker) Seed(products []*inventory.Product) {
	for _, p := range products {
		w.setStock(p.ID, p.Stock)
	}
}

func (w *Worker) handle(ctx context.Context, e domoutbox.Event) (err error) {
	name := e.EventName()
	_, run := w.in.Start(ctx, useCasePrefix+name, "Report", attribute.String("event", name))
	defer func() { run.End(err) }()
	run.With(observability.F("event", name))

	outcome := outcomeHandled
	switch evt := e.(type) {
	case inventory.StockReservedEvent:
		w.reservations.Add(1, observability.L("outcome", "reserved"))
		w.stockChanged(run, evt.ProductID, evt.Remaining)
	case inventory.ReservationFailedEvent:
		w.reservations.Add(1, observability.L("outcome", evt.Reason))
		run.With(observability.F("product_id", evt.ProductID), observability.F("failure_reason", evt.Reason))
	case inventory.StockReleasedEvent:
		w.stockChanged(run, evt.ProductID, evt.Remaining)
	case inventory.StockAdjustedEvent:
		w.stockChanged(run, evt.ProductID, evt.Stock)
	case domorder.OrderCreatedEvent:
		w.orders.Add(1, observability.L("event", "created"))
		run.With(observability.F("order_id", evt.OrderID))
	case domorder.OrderStatusChangedEvent:
		w.orders.Add(1, observability.L("event", string(evt.To)))
		run.With(observability.F("order_id", evt.OrderID))
	case domorder.OrderCancelledEvent:
		w.orders.Add(1, observability.L("event", string(domorder.StatusCancelled)))
		run.With(observability.F("order_id", evt.OrderID))
	case dompayment.PaymentProcessedEvent:
		method := methodLabel(evt.Method)
		w.payments.Add(1, observability.L("method", method), observability.L("status", string(evt.Status)))
		if evt.Status == dompayment.StatusCompleted {
			amount, _ := evt.Amount.Float64()
			w.sales.Add(amount, observability.L("method", method))
		}
		run.With(observability.F("payment_id", evt.PaymentID))
	case dompayment.PaymentCancelledEvent:
		w.payments.Add(1, observability.L("method", methodLabel(evt.Method)), observability.L("status", string(dompayment.StatusCancelled)))
		run.With(observability.F("payment_id", evt.PaymentID))
	default:
		outcome = outcomeIgnored
	}

	w.handled.Add(1, observability.L("event", name), observability.L("outcome", outcome))
	if outcome == outcomeIgnored {
		run.Outcome("IGNORED", "")
	}
	return nil
}

// stockChanged records units on hand. A negative count means the product
// is gone and there is nothing to report.
func (w *Worker) stockChanged(run *application.Run, productID, stock int) {
	run.With(observability.F("product_id", productID), observability.F("stock", stock))
	if stock < 0 {
		return
	}
	w.setStock(productID, stock)
	if stock < w.threshold {
		run.Logger().Warn("low_stock",
			observability.F("product_id", productID),
			observability.F("stock", stock),
			observability.F("threshold", w.threshold),
		)
	}
}

func (w *Worker) setStock(productID, stock int) {
	w.stockUnits.Set(float64(stock), observability.L("product_id", strconv.Itoa(productID)))
}

// methodLabel keeps unsupported methods typed by customers out of label values.
func methodLabel(m dompayment.Method) string {
	if !m.Valid() {
		return "other"
	}
	return string(m)
}
