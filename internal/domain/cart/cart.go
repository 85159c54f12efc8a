// Package cart models a per-session staging area. Every unit a cart holds has
// already been taken out of inventory, and every unit it gives up goes back.
package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/errkind"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/pkg/arena"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity  = fmt.Errorf("cart: quantity must be at least 1: %w", errkind.ErrInvalidQuantity)
	ErrItemNotFound     = fmt.Errorf("cart: item %w", errkind.ErrNotFound)
	ErrEmpty            = fmt.Errorf("cart: cart is empty: %w", errkind.ErrInvalidState)
	ErrInvalidSelection = fmt.Errorf("cart: invalid size or color: %w", errkind.ErrValidation)
)

// Stock is the part of the inventory a cart reserves from and releases to.
type Stock interface {
	Get(ctx context.Context, id int) (*inventory.Product, error)
	ReduceStock(ctx context.Context, id, qty int) (*inventory.Product, error)
	IncreaseStock(ctx context.Context, id, qty int) (*inventory.Product, error)
}

// Selection is the optional variant chosen for an item.
type Selection struct {
	Size  string
	Color string
}

type Item struct {
	ProductID int
	Quantity  int
	Selection Selection
}

// Line is an item priced at the product's current price.
type Line struct {
	ProductID int
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Selection Selection
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds at most one item per product and never an item with quantity 0.
type Cart struct {
	mu    sync.Mutex
	id    string
	owner string
	stock Stock
	items *arena.Arena[int, Item]
}

func New(id, owner string, stock Stock) *Cart {
	return &Cart{
		id:    id,
		owner: owner,
		stock: stock,
		items: arena.New[int, Item](),
	}
}

func (c *Cart) ID() string    { return c.id }
func (c *Cart) Owner() string { return c.owner }

// AddItem reserves qty units of the product and adds them to the cart. An
// existing item grows by qty and keeps its original selection. It returns the
// product as left in inventory.
func (c *Cart) AddItem(ctx context.Context, productID, qty int, sel Selection) (*inventory.Product, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	existing, inCart := c.items.Get(productID)
	if !inCart {
		p, err := c.stock.Get(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := validateSelection(p, sel); err != nil {
			return nil, err
		}
	}

	p, err := c.stock.ReduceStock(ctx, productID, qty)
	if err != nil {
		return nil, err
	}

	if inCart {
		existing.Quantity += qty
		c.items.Put(productID, existing)
	} else {
		c.items.Put(productID, Item{ProductID: productID, Quantity: qty, Selection: sel})
	}
	return p, nil
}

// RemoveItem returns the item's full quantity to inventory and drops it. It
// reports whether the product was in the cart.
func (c *Cart) RemoveItem(ctx context.Context, productID int) (Item, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items.Get(productID)
	if !ok {
		return Item{}, false, nil
	}
	if err := c.release(ctx, productID, it.Quantity); err != nil {
		return Item{}, false, err
	}
	c.items.Delete(productID)
	return it, true, nil
}

// UpdateQuantity sets the item's quantity to n, reserving or releasing the
// difference first. n <= 0 removes the item.
func (c *Cart) UpdateQuantity(ctx context.Context, productID, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items.Get(productID)
	if !ok {
		return fmt.Errorf("%w: product %d", ErrItemNotFound, productID)
	}

	if n <= 0 {
		if err := c.release(ctx, productID, it.Quantity); err != nil {
			return err
		}
		c.items.Delete(productID)
		return nil
	}

	switch d := n - it.Quantity; {
	case d > 0:
		if _, err := c.stock.ReduceStock(ctx, productID, d); err != nil {
			return err
		}
	case d < 0:
		if err := c.release(ctx, productID, -d); err != nil {
			return err
		}
	default:
		return nil
	}

	it.Quantity = n
	c.items.Put(productID, it)
	return nil
}

// Clear returns every item to inventory and empties the cart. Items restored
// before a failure are already gone from the cart.
func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range c.items.Values() {
		if err := c.release(ctx, it.ProductID, it.Quantity); err != nil {
			return err
		}
		c.items.Delete(it.ProductID)
	}
	return nil
}

// Lines prices every item with the product's current price.
func (c *Cart) Lines(ctx context.Context) ([]Line, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines(ctx)
}

func (c *Cart) Total(ctx context.Context) (decimal.Decimal, error) {
	lines, err := c.Lines(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return Sum(lines), nil
}

// HandOff passes the priced lines to fn and, when fn succeeds, empties the
// cart without releasing stock: the reservation now belongs to whatever fn
// built. When fn fails the cart is left as it was.
func (c *Cart) HandOff(ctx context.Context, fn func([]Line) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.items.Len() == 0 {
		return ErrEmpty
	}
	lines, err := c.lines(ctx)
	if err != nil {
		return err
	}
	if err := fn(lines); err != nil {
		return err
	}
	c.items.Clear()
	return nil
}

func (c *Cart) Item(productID int) (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Get(productID)
}

func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Values()
}

func (c *Cart) IsEmpty() bool { return c.ItemCount() == 0 }

// ItemCount is the number of distinct products.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items.Len()
}

// UnitCount is the number of units across all items.
func (c *Cart) UnitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, it := range c.items.All() {
		n += it.Quantity
	}
	return n
}

func Sum(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c *Cart) lines(ctx context.Context) ([]Line, error) {
	out := make([]Line, 0, c.items.Len())
	for id, it := range c.items.All() {
		p, err := c.stock.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, Line{
			ProductID: id,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  it.Quantity,
			Selection: it.Selection,
		})
	}
	return out, nil
}

// release returns qty units to inventory. A product that has since left the
// catalog has nowhere to return them, so that case is not an error.
func (c *Cart) release(ctx context.Context, productID, qty int) error {
	_, err := c.stock.IncreaseStock(ctx, productID, qty)
	if err != nil && !errors.Is(err, inventory.ErrNotFound) {
		return err
	}
	return nil
}

func validateSelection(p *inventory.Product, sel Selection) error {
	if sel.Size != "" && len(p.Sizes) > 0 && !slices.Contains(p.Sizes, sel.Size) {
		return fmt.Errorf("%w: size %q", ErrInvalidSelection, sel.Size)
	}
	if sel.Color != "" && len(p.Colors) > 0 && !slices.Contains(p.Colors, sel.Color) {
		return fmt.Errorf("%w: color %q", ErrInvalidSelection, sel.Color)
	}
	return nil
}
