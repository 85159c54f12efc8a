package order

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/cart"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/errkind"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = fmt.Errorf("order: %w", errkind.ErrNotFound)
	ErrEmptyCart         = fmt.Errorf("order: cart is empty: %w", errkind.ErrInvalidState)
	ErrAlreadyCancelled  = fmt.Errorf("order: already cancelled: %w", errkind.ErrInvalidState)
	ErrNotCancellable    = fmt.Errorf("order: cannot cancel after shipping: %w", errkind.ErrInvalidState)
	ErrInvalidTransition = fmt.Errorf("order: status transition not allowed: %w", errkind.ErrInvalidState)
	ErrUseCancel         = fmt.Errorf("order: cancellation must go through Cancel: %w", errkind.ErrInvalidState)
)

type Customer struct {
	Name  string
	Email string
}

// Item is a value copy of a cart line taken at checkout.
type Item struct {
	ProductID int
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Size      string
	Color     string
}

func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a frozen snapshot of a cart plus a mutable status. Items and total
// never change after creation.
type Order struct {
	ID              int
	Customer        Customer
	ShippingAddress string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time

	items []Item
	total decimal.Decimal
}

// StockRestorer takes back the units an order was holding.
type StockRestorer interface {
	IncreaseStock(ctx context.Context, id, qty int) (*inventory.Product, error)
}

// FromCart snapshots the lines of a cart into a pending order. The customer
// is copied as given; an anonymous cart yields an order with a blank email.
func FromCart(id int, customer Customer, shippingAddress string, lines []cart.Line, at time.Time) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]Item, 0, len(lines))
	total := decimal.Zero
	for _, l := range lines {
		it := Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Size:      l.Selection.Size,
			Color:     l.Selection.Color,
		}
		items = append(items, it)
		total = total.Add(it.Subtotal())
	}

	at = at.UTC()
	return &Order{
		ID:              id,
		Customer:        customer,
		ShippingAddress: shippingAddress,
		Status:          StatusPending,
		CreatedAt:       at,
		UpdatedAt:       at,
		items:           items,
		total:           total,
	}, nil
}

// Items returns a copy of the frozen items.
func (o *Order) Items() []Item { return slices.Clone(o.items) }

func (o *Order) Total() decimal.Decimal { return o.total }

// Units is the number of units the order holds.
func (o *Order) Units() int {
	n := 0
	for _, it := range o.items {
		n += it.Quantity
	}
	return n
}

// TransitionTo moves the order along the lifecycle table. Cancellation is
// refused here because it must also return stock; use Cancel.
func (o *Order) TransitionTo(next Status) error {
	if !next.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if next == StatusCancelled {
		return ErrUseCancel
	}
	if !CanTransition(o.Status, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, next)
	}
	o.Status = next
	o.touch()
	return nil
}

func (o *Order) Confirm() error { return o.TransitionTo(StatusConfirmed) }

// Cancel returns every frozen item to stock and marks the order cancelled.
// It fails, touching nothing, once the order is cancelled, shipped or
// delivered. Items whose product has left the catalog are skipped.
func (o *Order) Cancel(ctx context.Context, stock StockRestorer) error {
	switch o.Status {
	case StatusCancelled:
		return ErrAlreadyCancelled
	case StatusShipped, StatusDelivered:
		return fmt.Errorf("%w: status %s", ErrNotCancellable, o.Status)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Restoration runs to completion once started.
	ctx = context.WithoutCancel(ctx)
	for _, it := range o.items {
		if _, err := stock.IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil && !errors.Is(err, inventory.ErrNotFound) {
			return fmt.Errorf("order: restore product %d: %w", it.ProductID, err)
		}
	}

	o.Status = StatusCancelled
	o.touch()
	return nil
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.items = slices.Clone(o.items)
	return &c
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
