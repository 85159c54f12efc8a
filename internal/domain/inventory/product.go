package inventory

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/errkind"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = fmt.Errorf("inventory: product %w", errkind.ErrNotFound)
	ErrInvalidQuantity   = fmt.Errorf("inventory: quantity must not be negative: %w", errkind.ErrInvalidQuantity)
	ErrInsufficientStock = fmt.Errorf("inventory: %w", errkind.ErrInsufficientStock)
	ErrInvalidPrice      = fmt.Errorf("inventory: price must be greater than zero: %w", errkind.ErrValidation)
	ErrInvalidProduct    = fmt.Errorf("inventory: invalid product: %w", errkind.ErrValidation)
	ErrDuplicateProduct  = fmt.Errorf("inventory: product already exists: %w", errkind.ErrInvalidState)
)

// Product is a sellable item and its on-hand stock. Stock already excludes
// every unit reserved by carts and live orders.
type Product struct {
	ID        int
	Name      string
	Price     decimal.Decimal
	Stock     int
	Category  string
	Sizes     []string
	Colors    []string
	UpdatedAt time.Time
}

func NewProduct(id int, name string, price decimal.Decimal, stock int, category string, sizes, colors []string) (*Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", ErrInvalidProduct)
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if stock < 0 {
		return nil, ErrInvalidQuantity
	}
	return &Product{
		ID:        id,
		Name:      name,
		Price:     price,
		Stock:     stock,
		Category:  category,
		Sizes:     slices.Clone(sizes),
		Colors:    slices.Clone(colors),
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// Available is derived from stock and has no setter.
func (p *Product) Available() bool { return p.Stock > 0 }

// Reduce takes qty units out of stock. It leaves the product untouched when
// qty exceeds the current stock.
func (p *Product) Reduce(qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	if qty > p.Stock {
		return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, qty, p.Stock)
	}
	p.Stock -= qty
	p.touch()
	return nil
}

func (p *Product) Increase(qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	p.Stock += qty
	p.touch()
	return nil
}

func (p *Product) SetStock(qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	p.Stock = qty
	p.touch()
	return nil
}

func (p *Product) SetPrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	p.Price = price
	p.touch()
	return nil
}

func (p *Product) HasSize(size string) bool   { return slices.Contains(p.Sizes, size) }
func (p *Product) HasColor(color string) bool { return slices.Contains(p.Colors, color) }

// Value is the price of the units still on hand.
func (p *Product) Value() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.Sizes = slices.Clone(p.Sizes)
	c.Colors = slices.Clone(p.Colors)
	return &c
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}
