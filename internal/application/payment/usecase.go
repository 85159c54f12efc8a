package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/application"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/errkind"
	domorder "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/outbox"
	domain "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability"
	"github.com/shopspring/decimal"

	"go.opentelemetry.io/otel/attribute"
)

const (
	paymentService        = "payment-service"
	useCasePaymentPay     = "payment.pay"
	useCasePaymentRetry   = "payment.retry"
	useCasePaymentCancel  = "payment.cancel"
	paymentDeclinedStatus = "DECLINED"
)

var ErrOrderNotPayable = fmt.Errorf("payment: order is not awaiting payment: %w", errkind.ErrInvalidState)

// PayUseCase records and processes a payment. A payment for an order is
// checked against the order total, and a completed one confirms the order.
// Declined payments are recorded too so they can be retried.
type PayUseCase struct {
	orders    domorder.Ledger
	payments  domain.Ledger
	publisher domoutbox.Publisher
	in        application.Instrument
	now       func() time.Time
}

var _ application.UseCase[PayInput, *domain.Payment] = (*PayUseCase)(nil)

func NewPayUseCase(
	orders domorder.Ledger,
	payments domain.Ledger,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *PayUseCase {
	return &PayUseCase{
		orders:    orders,
		payments:  payments,
		publisher: publisher,
		in:        application.NewInstrument(tel, paymentService),
		now:       time.Now,
	}
}

// PayInput pays OrderID, or nothing in particular when OrderID is zero.
type PayInput struct {
	OrderID int
	Amount  decimal.Decimal
	Method  string
}

func (uc *PayUseCase) Execute(ctx context.Context, cmd PayInput) (_ *domain.Payment, err error) {
	ctx, run := uc.in.Start(ctx, useCasePaymentPay, "Pay",
		attribute.Int("order.id", cmd.OrderID),
		attribute.String("payment.method", cmd.Method),
		attribute.String("payment.amount", cmd.Amount.String()),
	)
	defer func() { run.End(err) }()
	run.With(
		observability.F("order_id", cmd.OrderID),
		observability.F("method", cmd.Method),
		observability.F("amount", cmd.Amount.String()),
	)

	var (
		p       *domain.Payment
		settled *domorder.Order
	)
	if cmd.OrderID == 0 {
		p, err = uc.payments.Create(ctx, func(id int) (*domain.Payment, error) {
			return uc.process(domain.New(id, cmd.Amount, cmd.Method, nil, uc.now()))
		})
	} else {
		settled, err = uc.orders.Update(ctx, cmd.OrderID, func(o *domorder.Order) error {
			if o.Status != domorder.StatusPending {
				return fmt.Errorf("%w: order %d is %s", ErrOrderNotPayable, o.ID, o.Status)
			}
			ref := &domain.OrderRef{ID: o.ID, Total: o.Total()}
			created, err := uc.payments.Create(ctx, func(id int) (*domain.Payment, error) {
				return uc.process(domain.New(id, cmd.Amount, cmd.Method, ref, uc.now()))
			})
			if err != nil {
				return err
			}
			p = created
			if p.Status == domain.StatusCompleted {
				return o.Confirm()
			}
			return nil
		})
	}
	if err != nil {
		return nil, fmt.Errorf("payment: pay: %w", err)
	}

	report(ctx, run, uc.publisher, p, settled)
	return p, nil
}

func (uc *PayUseCase) process(p *domain.Payment) (*domain.Payment, error) {
	if err := p.Process(); err != nil {
		return nil, err
	}
	return p, nil
}

// report logs and publishes the result of a processing attempt. settled is the
// order the attempt was made against, or nil.
func report(ctx context.Context, run *application.Run, publisher domoutbox.Publisher, p *domain.Payment, settled *domorder.Order) {
	run.With(
		observability.F("payment_id", p.ID),
		observability.F("payment_status", string(p.Status)),
		observability.F("attempt", p.Attempts),
	)
	run.Span().SetAttributes(
		attribute.Int("payment.id", p.ID),
		attribute.String("payment.status", string(p.Status)),
	)
	if p.Status != domain.StatusCompleted {
		run.Outcome(paymentDeclinedStatus, p.FailureReason)
	}

	events := []domoutbox.Event{domain.NewPaymentProcessedEvent(p)}
	if settled != nil && p.Status == domain.StatusCompleted {
		events = append(events, domorder.NewOrderStatusChangedEvent(settled, domorder.StatusPending))
	}
	run.Publish(ctx, publisher, events...)
}
