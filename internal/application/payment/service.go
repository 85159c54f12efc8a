package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/application"
	domorder "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/outbox"
	domain "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability"
	"github.com/shopspring/decimal"

	"go.opentelemetry.io/otel/attribute"
)

// Service covers what happens to a payment after it is recorded, plus
// queries and reports.
type Service struct {
	orders    domorder.Ledger
	payments  domain.Ledger
	publisher domoutbox.Publisher
	in        application.Instrument
}

func NewService(orders domorder.Ledger, payments domain.Ledger, publisher domoutbox.Publisher, tel observability.Observability) *Service {
	return &Service{
		orders:    orders,
		payments:  payments,
		publisher: publisher,
		in:        application.NewInstrument(tel, paymentService),
	}
}

func (s *Service) Get(ctx context.Context, id int) (*domain.Payment, error) {
	return s.payments.Get(ctx, id)
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	OrderID int
	Status  string
	Method  string
}

// List answers from the narrowest ledger query, trying order, status and
// method in that order, and applies the remaining filters on top.
func (s *Service) List(ctx context.Context, f Filter) ([]*domain.Payment, error) {
	var (
		status domain.Status
		method domain.Method
		err    error
	)
	if strings.TrimSpace(f.Status) != "" {
		if status, err = domain.ParseStatus(f.Status); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(f.Method) != "" {
		if method, err = domain.ParseMethod(f.Method); err != nil {
			return nil, err
		}
	}

	var found []*domain.Payment
	switch {
	case f.OrderID != 0:
		found, err = s.payments.FindByOrder(ctx, f.OrderID)
	case status != "":
		found, err = s.payments.FindByStatus(ctx, status)
		status = ""
	case method != "":
		found, err = s.payments.FindByMethod(ctx, method)
		method = ""
	default:
		found, err = s.payments.All(ctx)
	}
	if err != nil || (status == "" && method == "") {
		return found, err
	}

	out := make([]*domain.Payment, 0, len(found))
	for _, p := range found {
		if (status == "" || p.Status == status) && (method == "" || p.Method == method) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Cancel withdraws a payment that has not completed.
func (s *Service) Cancel(ctx context.Context, id int) (_ *domain.Payment, err error) {
	ctx, run := s.in.Start(ctx, useCasePaymentCancel, "CancelPayment", attribute.Int("payment.id", id))
	defer func() { run.End(err) }()
	run.With(observability.F("payment_id", id))

	p, err := s.payments.Update(ctx, id, func(p *domain.Payment) error { return p.Cancel() })
	if err != nil {
		return nil, fmt.Errorf("payment: cancel: %w", err)
	}
	run.Publish(ctx, s.publisher, domain.NewPaymentCancelledEvent(p))
	return p, nil
}

// Retry processes a payment that has not completed again. For an order
// payment the order must still be pending, and it is confirmed on success.
func (s *Service) Retry(ctx context.Context, id int) (_ *domain.Payment, err error) {
	ctx, run := s.in.Start(ctx, useCasePaymentRetry, "RetryPayment", attribute.Int("payment.id", id))
	defer func() { run.End(err) }()
	run.With(observability.F("payment_id", id))

	current, err := s.payments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.StatusCompleted {
		return nil, domain.ErrAlreadyCompleted
	}

	var (
		p       *domain.Payment
		settled *domorder.Order
	)
	if current.Order == nil {
		p, err = s.payments.Update(ctx, id, func(p *domain.Payment) error { return p.Retry() })
	} else {
		run.With(observability.F("order_id", current.Order.ID))
		settled, err = s.orders.Update(ctx, current.Order.ID, func(o *domorder.Order) error {
			if o.Status != domorder.StatusPending {
				return fmt.Errorf("%w: order %d is %s", ErrOrderNotPayable, o.ID, o.Status)
			}
			updated, err := s.payments.Update(ctx, id, func(p *domain.Payment) error { return p.Retry() })
			if err != nil {
				return err
			}
			p = updated
			if p.Status == domain.StatusCompleted {
				return o.Confirm()
			}
			return nil
		})
	}
	if err != nil {
		return nil, fmt.Errorf("payment: retry: %w", err)
	}

	report(ctx, run, s.publisher, p, settled)
	return p, nil
}

// Report summarises the payment ledger.
type Report struct {
	Payments       int
	ByStatus       map[domain.Status]int
	TotalCompleted decimal.Decimal
	MostUsedMethod domain.Method
	SuccessRate    float64
}

func (s *Service) Report(ctx context.Context) (*Report, error) {
	n, err := s.payments.Count(ctx)
	if err != nil {
		return nil, err
	}
	r := &Report{Payments: n, ByStatus: make(map[domain.Status]int, len(domain.Statuses))}
	for _, st := range domain.Statuses {
		c, err := s.payments.CountByStatus(ctx, st)
		if err != nil {
			return nil, err
		}
		r.ByStatus[st] = c
	}
	if r.TotalCompleted, err = s.payments.TotalCompleted(ctx); err != nil {
		return nil, err
	}
	if r.MostUsedMethod, _, err = s.payments.MostUsedMethod(ctx); err != nil {
		return nil, err
	}
	if r.SuccessRate, err = s.payments.SuccessRate(ctx); err != nil {
		return nil, err
	}
	return r, nil
}
