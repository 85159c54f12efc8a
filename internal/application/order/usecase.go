package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/application"
	cartapp "github.com/Zhima-Mochi/minishop-retail/app/internal/application/cart"
	domcart "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/cart"
	domain "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	orderService         = "order-service"
	useCaseOrderCheckout = "order.checkout"
	useCaseOrderCancel   = "order.cancel"
	useCaseOrderStatus   = "order.change_status"
)

// Sessions resolves a cart session id.
type Sessions interface {
	Lookup(ctx context.Context, id string) (*cartapp.Session, error)
}

// CheckoutUseCase turns a session's cart into a pending order. The units the
// cart reserved move to the order; the cart is left empty.
type CheckoutUseCase struct {
	sessions  Sessions
	ledger    domain.Ledger
	publisher domoutbox.Publisher
	in        application.Instrument
	now       func() time.Time
}

var _ application.UseCase[CheckoutInput, *domain.Order] = (*CheckoutUseCase)(nil)

func NewCheckoutUseCase(
	sessions Sessions,
	ledger domain.Ledger,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		sessions:  sessions,
		ledger:    ledger,
		publisher: publisher,
		in:        application.NewInstrument(tel, orderService),
		now:       time.Now,
	}
}

type CheckoutInput struct {
	CartID          string
	CustomerName    string
	CustomerEmail   string
	ShippingAddress string
}

// Execute records the order and hands the cart's reservation to it. Blank
// customer fields fall back to whoever opened the session.
func (uc *CheckoutUseCase) Execute(ctx context.Context, cmd CheckoutInput) (_ *domain.Order, err error) {
	ctx, run := uc.in.Start(ctx, useCaseOrderCheckout, "Checkout",
		attribute.String("cart.id", cmd.CartID),
	)
	defer func() { run.End(err) }()
	run.With(observability.F("cart_id", cmd.CartID))

	sess, err := uc.sessions.Lookup(ctx, cmd.CartID)
	if err != nil {
		return nil, err
	}

	customer := domain.Customer{
		Name:  firstNonBlank(cmd.CustomerName, sess.CustomerName),
		Email: firstNonBlank(cmd.CustomerEmail, sess.Cart.Owner()),
	}

	var created *domain.Order
	err = sess.Cart.HandOff(ctx, func(lines []domcart.Line) error {
		o, err := uc.ledger.Create(ctx, func(id int) (*domain.Order, error) {
			return domain.FromCart(id, customer, strings.TrimSpace(cmd.ShippingAddress), lines, uc.now())
		})
		if err != nil {
			return err
		}
		created = o
		return nil
	})
	if errors.Is(err, domcart.ErrEmpty) {
		return nil, domain.ErrEmptyCart
	}
	if err != nil {
		return nil, fmt.Errorf("order: checkout: %w", err)
	}

	run.With(
		observability.F("order_id", created.ID),
		observability.F("total", created.Total().String()),
		observability.F("units", created.Units()),
	)
	run.Span().SetAttributes(attribute.Int("order.id", created.ID))
	run.Publish(ctx, uc.publisher, domain.NewOrderCreatedEvent(created))
	return created, nil
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
