// Package cart manages shopping sessions. Each session owns one cart whose
// contents are already reserved in inventory.
package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/application"
	domain "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/cart"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/errkind"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/inventory"
	domoutbox "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability/logctx"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/pkg/arena"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go.opentelemetry.io/otel/attribute"
)

const (
	cartService       = "cart-service"
	useCaseCartOpen   = "cart.open"
	useCaseCartAdd    = "cart.add_item"
	useCaseCartUpdate = "cart.update_quantity"
	useCaseCartRemove = "cart.remove_item"
	useCaseCartClear  = "cart.clear"
	releaseSource     = "cart"
)

var ErrNotFound = fmt.Errorf("cart: session %w", errkind.ErrNotFound)

type Service struct {
	store     inventory.Store
	publisher domoutbox.Publisher
	in        application.Instrument

	mu       sync.RWMutex
	sessions *arena.Arena[string, *Session]
}

// Session is an open cart together with the customer who opened it.
type Session struct {
	Cart         *domain.Cart
	CustomerName string
}

func NewService(store inventory.Store, publisher domoutbox.Publisher, tel observability.Observability) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		in:        application.NewInstrument(tel, cartService),
		sessions:  arena.New[string, *Session](),
	}
}

// View is a priced snapshot of a cart. Unpriced is set when a change went
// through but the cart could not be priced afterwards; Lines and Total are
// then empty while the counts still hold.
type View struct {
	ID           string
	Owner        string
	CustomerName string
	Lines        []domain.Line
	Total        decimal.Decimal
	ItemCount    int
	UnitCount    int
	Unpriced     bool
}

type OpenInput struct {
	CustomerEmail string
	CustomerName  string
}

// Open starts a session with a fresh cart. The customer is optional.
func (s *Service) Open(ctx context.Context, cmd OpenInput) (_ *View, err error) {
	ctx, run := s.in.Start(ctx, useCaseCartOpen, "OpenCart")
	defer func() { run.End(err) }()

	sess := &Session{
		Cart:         domain.New(uuid.NewString(), strings.TrimSpace(cmd.CustomerEmail), s.store),
		CustomerName: strings.TrimSpace(cmd.CustomerName),
	}
	s.mu.Lock()
	s.sessions.Put(sess.Cart.ID(), sess)
	s.mu.Unlock()

	run.With(observability.F("cart_id", sess.Cart.ID()))
	run.Span().SetAttributes(attribute.String("cart.id", sess.Cart.ID()))
	return s.view(ctx, sess)
}

// Lookup returns the live session.
func (s *Service) Lookup(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

// session looks a cart up and tags the context logger with it, so events
// published on its behalf log the cart they came from.
func (s *Service) session(ctx context.Context, id string) (context.Context, *Session, error) {
	sess, err := s.Lookup(ctx, id)
	if err != nil {
		return ctx, nil, err
	}
	fields := []observability.Field{observability.F("cart_id", id)}
	if owner := sess.Cart.Owner(); owner != "" {
		fields = append(fields, observability.F("customer_email", owner))
	}
	return logctx.Enrich(ctx, fields...), sess, nil
}

// Get returns the live cart of a session.
func (s *Service) Get(ctx context.Context, id string) (*domain.Cart, error) {
	sess, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Cart, nil
}

func (s *Service) View(ctx context.Context, id string) (*View, error) {
	sess, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, sess)
}

type AddItemInput struct {
	CartID    string
	ProductID int
	Quantity  int
	Size      string
	Color     string
}

func (s *Service) AddItem(ctx context.Context, cmd AddItemInput) (_ *View, err error) {
	ctx, run := s.in.Start(ctx, useCaseCartAdd, "AddItem",
		attribute.String("cart.id", cmd.CartID),
		attribute.Int("product.id", cmd.ProductID),
		attribute.Int("cart.quantity", cmd.Quantity),
	)
	defer func() { run.End(err) }()
	run.With(
		observability.F("cart_id", cmd.CartID),
		observability.F("product_id", cmd.ProductID),
		observability.F("quantity", cmd.Quantity),
	)

	ctx, sess, err := s.session(ctx, cmd.CartID)
	if err != nil {
		return nil, err
	}
	c := sess.Cart

	p, err := c.AddItem(ctx, cmd.ProductID, cmd.Quantity, domain.Selection{Size: cmd.Size, Color: cmd.Color})
	if err != nil {
		run.Publish(ctx, s.publisher, inventory.NewReservationFailedEvent(c.ID(), cmd.ProductID, cmd.Quantity, reservationFailure(err)))
		return nil, fmt.Errorf("cart: add item: %w", err)
	}

	run.With(observability.F("remaining_stock", p.Stock))
	run.Publish(ctx, s.publisher, inventory.NewStockReservedEvent(c.ID(), p.ID, cmd.Quantity, p.Stock))
	return s.settledView(ctx, run, sess), nil
}

// UpdateQuantity sets an item's quantity; zero or less removes it.
func (s *Service) UpdateQuantity(ctx context.Context, cartID string, productID, quantity int) (_ *View, err error) {
	ctx, run := s.in.Start(ctx, useCaseCartUpdate, "UpdateQuantity",
		attribute.String("cart.id", cartID),
		attribute.Int("product.id", productID),
		attribute.Int("cart.quantity", quantity),
	)
	defer func() { run.End(err) }()
	run.With(
		observability.F("cart_id", cartID),
		observability.F("product_id", productID),
		observability.F("quantity", quantity),
	)

	ctx, sess, err := s.session(ctx, cartID)
	if err != nil {
		return nil, err
	}
	c := sess.Cart
	before, _ := c.Item(productID)

	if err := c.UpdateQuantity(ctx, productID, quantity); err != nil {
		if errkind.Of(err) == errkind.ErrInsufficientStock {
			run.Publish(ctx, s.publisher, inventory.NewReservationFailedEvent(c.ID(), productID, quantity-before.Quantity, inventory.FailureReasonInsufficientStock))
		}
		return nil, fmt.Errorf("cart: update quantity: %w", err)
	}

	after, _ := c.Item(productID)
	remaining := s.remaining(ctx, productID)
	switch delta := after.Quantity - before.Quantity; {
	case delta > 0:
		run.Publish(ctx, s.publisher, inventory.NewStockReservedEvent(c.ID(), productID, delta, remaining))
	case delta < 0:
		run.Publish(ctx, s.publisher, inventory.NewStockReleasedEvent(releaseSource, productID, -delta, remaining))
	}
	return s.settledView(ctx, run, sess), nil
}

// RemoveItem reports whether the product was in the cart.
func (s *Service) RemoveItem(ctx context.Context, cartID string, productID int) (_ bool, err error) {
	ctx, run := s.in.Start(ctx, useCaseCartRemove, "RemoveItem",
		attribute.String("cart.id", cartID),
		attribute.Int("product.id", productID),
	)
	defer func() { run.End(err) }()
	run.With(observability.F("cart_id", cartID), observability.F("product_id", productID))

	ctx, sess, err := s.session(ctx, cartID)
	if err != nil {
		return false, err
	}
	it, ok, err := sess.Cart.RemoveItem(ctx, productID)
	if err != nil {
		return false, fmt.Errorf("cart: remove item: %w", err)
	}
	if !ok {
		run.Outcome("NOT_IN_CART", "")
		return false, nil
	}
	run.Publish(ctx, s.publisher, inventory.NewStockReleasedEvent(releaseSource, productID, it.Quantity, s.remaining(ctx, productID)))
	return true, nil
}

// Clear returns everything in the cart to inventory.
func (s *Service) Clear(ctx context.Context, cartID string) (err error) {
	ctx, run := s.in.Start(ctx, useCaseCartClear, "ClearCart", attribute.String("cart.id", cartID))
	defer func() { run.End(err) }()
	run.With(observability.F("cart_id", cartID))

	ctx, sess, err := s.session(ctx, cartID)
	if err != nil {
		return err
	}
	c := sess.Cart
	items := c.Items()
	if err := c.Clear(ctx); err != nil {
		return fmt.Errorf("cart: clear: %w", err)
	}

	events := make([]domoutbox.Event, 0, len(items))
	for _, it := range items {
		events = append(events, inventory.NewStockReleasedEvent(releaseSource, it.ProductID, it.Quantity, s.remaining(ctx, it.ProductID)))
	}
	run.With(observability.F("items", len(items)))
	run.Publish(ctx, s.publisher, events...)
	return nil
}

func (s *Service) view(ctx context.Context, sess *Session) (*View, error) {
	c := sess.Cart
	lines, err := c.Lines(ctx)
	if err != nil {
		return nil, err
	}
	units := 0
	for _, l := range lines {
		units += l.Quantity
	}
	return &View{
		ID:           c.ID(),
		Owner:        c.Owner(),
		CustomerName: sess.CustomerName,
		Lines:        lines,
		Total:        domain.Sum(lines),
		ItemCount:    len(lines),
		UnitCount:    units,
	}, nil
}

// settledView reads a cart back after a change that has already been
// committed. Pricing can fail when another line's product has left the
// catalog; the change stands, so the failure is logged and the view comes
// back unpriced instead of as an error.
func (s *Service) settledView(ctx context.Context, run *application.Run, sess *Session) *View {
	v, err := s.view(ctx, sess)
	if err == nil {
		return v
	}
	c := sess.Cart
	run.Logger().Warn("cart_unpriced",
		observability.F("cart_id", c.ID()),
		observability.Err(err),
	)
	run.With(observability.F("unpriced", true))
	return &View{
		ID:           c.ID(),
		Owner:        c.Owner(),
		CustomerName: sess.CustomerName,
		Total:        decimal.Zero,
		ItemCount:    c.ItemCount(),
		UnitCount:    c.UnitCount(),
		Unpriced:     true,
	}
}

// remaining is the current stock of a product, or -1 once it is gone.
func (s *Service) remaining(ctx context.Context, productID int) int {
	p, err := s.store.Get(ctx, productID)
	if err != nil {
		return -1
	}
	return p.Stock
}

func reservationFailure(err error) string {
	switch errkind.Of(err) {
	case errkind.ErrNotFound:
		return inventory.FailureReasonNotFound
	case errkind.ErrInsufficientStock:
		return inventory.FailureReasonInsufficientStock
	case errkind.ErrInvalidQuantity:
		return inventory.FailureReasonInvalidQuantity
	}
	return application.FailureReason(err)
}
