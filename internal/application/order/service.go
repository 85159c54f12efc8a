package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/application"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/inventory"
	domain "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability"
	"github.com/shopspring/decimal"

	"go.opentelemetry.io/otel/attribute"
)

const cancelSource = "order"

// Service covers the order lifecycle after checkout, plus queries.
type Service struct {
	ledger    domain.Ledger
	stock     inventory.Store
	publisher domoutbox.Publisher
	in        application.Instrument
}

func NewService(ledger domain.Ledger, stock inventory.Store, publisher domoutbox.Publisher, tel observability.Observability) *Service {
	return &Service{
		ledger:    ledger,
		stock:     stock,
		publisher: publisher,
		in:        application.NewInstrument(tel, orderService),
	}
}

func (s *Service) Get(ctx context.Context, id int) (*domain.Order, error) {
	return s.ledger.Get(ctx, id)
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Email  string
	Status string
}

// List answers from the narrowest ledger query: by email when given, else by
// status. A status given together with an email is applied on top.
func (s *Service) List(ctx context.Context, f Filter) ([]*domain.Order, error) {
	var (
		status domain.Status
		err    error
	)
	if strings.TrimSpace(f.Status) != "" {
		if status, err = domain.ParseStatus(f.Status); err != nil {
			return nil, err
		}
	}

	email := strings.TrimSpace(f.Email)
	switch {
	case email == "" && status == "":
		return s.ledger.All(ctx)
	case email == "":
		return s.ledger.FindByStatus(ctx, status)
	}

	orders, err := s.ledger.FindByEmail(ctx, email)
	if err != nil || status == "" {
		return orders, err
	}
	out := make([]*domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

// Cancel returns the order's frozen items to stock and marks it cancelled.
func (s *Service) Cancel(ctx context.Context, id int) (_ *domain.Order, err error) {
	ctx, run := s.in.Start(ctx, useCaseOrderCancel, "CancelOrder", attribute.Int("order.id", id))
	defer func() { run.End(err) }()
	run.With(observability.F("order_id", id))

	var from domain.Status
	o, err := s.ledger.Update(ctx, id, func(o *domain.Order) error {
		from = o.Status
		return o.Cancel(ctx, s.stock)
	})
	if err != nil {
		return nil, fmt.Errorf("order: cancel: %w", err)
	}

	run.With(observability.F("from", string(from)), observability.F("units", o.Units()))
	events := []domoutbox.Event{domain.NewOrderCancelledEvent(o, from)}
	for _, it := range o.Items() {
		events = append(events, inventory.NewStockReleasedEvent(cancelSource, it.ProductID, it.Quantity, s.remaining(ctx, it.ProductID)))
	}
	run.Publish(ctx, s.publisher, events...)
	return o, nil
}

// ChangeStatus moves the order to the named status. Cancelling goes through
// Cancel so the units are returned.
func (s *Service) ChangeStatus(ctx context.Context, id int, raw string) (*domain.Order, error) {
	next, err := domain.ParseStatus(raw)
	if err == nil && next == domain.StatusCancelled {
		return s.Cancel(ctx, id)
	}
	return s.transition(ctx, id, raw, next, err)
}

func (s *Service) transition(ctx context.Context, id int, raw string, next domain.Status, parseErr error) (_ *domain.Order, err error) {
	ctx, run := s.in.Start(ctx, useCaseOrderStatus, "ChangeOrderStatus",
		attribute.Int("order.id", id),
		attribute.String("order.status", raw),
	)
	defer func() { run.End(err) }()
	run.With(observability.F("order_id", id), observability.F("requested", raw))

	if parseErr != nil {
		return nil, parseErr
	}

	var from domain.Status
	o, err := s.ledger.Update(ctx, id, func(o *domain.Order) error {
		from = o.Status
		return o.TransitionTo(next)
	})
	if err != nil {
		return nil, fmt.Errorf("order: change status: %w", err)
	}

	run.With(observability.F("from", string(from)), observability.F("to", string(o.Status)))
	run.Publish(ctx, s.publisher, domain.NewOrderStatusChangedEvent(o, from))
	return o, nil
}

// SalesReport summarises the ledger.
type SalesReport struct {
	Orders     int
	ByStatus   map[domain.Status]int
	TotalSales decimal.Decimal
}

func (s *Service) SalesReport(ctx context.Context) (*SalesReport, error) {
	n, err := s.ledger.Count(ctx)
	if err != nil {
		return nil, err
	}
	r := &SalesReport{Orders: n, ByStatus: make(map[domain.Status]int, len(domain.Statuses))}
	for _, st := range domain.Statuses {
		c, err := s.ledger.CountByStatus(ctx, st)
		if err != nil {
			return nil, err
		}
		r.ByStatus[st] = c
	}
	if r.TotalSales, err = s.ledger.TotalSales(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) remaining(ctx context.Context, productID int) int {
	p, err := s.stock.Get(ctx, productID)
	if err != nil {
		return -1
	}
	return p.Stock
}
