// Package catalog is the read view over inventory plus the administrative
// product use cases.
package catalog

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/errkind"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRange = fmt.Errorf("catalog: min price above max price: %w", errkind.ErrValidation)
	ErrInvalidLimit = fmt.Errorf("catalog: limit must be positive: %w", errkind.ErrValidation)
)

// mainGarments are the name keywords of the core product lines.
var mainGarments = []string{"jean", "pantalon", "jogger", "bermuda"}

type Catalog struct {
	store inventory.Store
}

func New(store inventory.Store) *Catalog {
	return &Catalog{store: store}
}

func (c *Catalog) Products(ctx context.Context) ([]*inventory.Product, error) {
	return c.store.List(ctx)
}

func (c *Catalog) Product(ctx context.Context, id int) (*inventory.Product, error) {
	return c.store.Get(ctx, id)
}

// Available lists products with stock on hand.
func (c *Catalog) Available(ctx context.Context) ([]*inventory.Product, error) {
	return c.filter(ctx, func(p *inventory.Product) bool { return p.Available() })
}

func (c *Catalog) AvailableCount(ctx context.Context) (int, error) {
	ps, err := c.Available(ctx)
	return len(ps), err
}

// FindByName matches the whole name, ignoring case.
func (c *Catalog) FindByName(ctx context.Context, name string) (*inventory.Product, error) {
	ps, err := c.filter(ctx, func(p *inventory.Product) bool {
		return strings.EqualFold(p.Name, strings.TrimSpace(name))
	})
	if err != nil {
		return nil, err
	}
	if len(ps) == 0 {
		return nil, fmt.Errorf("%w: name %q", inventory.ErrNotFound, name)
	}
	return ps[0], nil
}

// Search matches a substring of the name, ignoring case.
func (c *Catalog) Search(ctx context.Context, q string) ([]*inventory.Product, error) {
	return c.Filter(ctx, Query{Text: q})
}

func (c *Catalog) ByCategory(ctx context.Context, category string) ([]*inventory.Product, error) {
	return c.Filter(ctx, Query{Category: category, AvailableOnly: true})
}

func (c *Catalog) ByPriceRange(ctx context.Context, lo, hi decimal.Decimal) ([]*inventory.Product, error) {
	return c.Filter(ctx, Query{MinPrice: &lo, MaxPrice: &hi, AvailableOnly: true})
}

func (c *Catalog) BySize(ctx context.Context, size string) ([]*inventory.Product, error) {
	return c.Filter(ctx, Query{Size: size, AvailableOnly: true})
}

func (c *Catalog) ByColor(ctx context.Context, color string) ([]*inventory.Product, error) {
	return c.Filter(ctx, Query{Color: color, AvailableOnly: true})
}

// MainGarments lists available products of the core lines.
func (c *Catalog) MainGarments(ctx context.Context) ([]*inventory.Product, error) {
	return c.filter(ctx, func(p *inventory.Product) bool {
		if !p.Available() {
			return false
		}
		name := strings.ToLower(p.Name)
		return slices.ContainsFunc(mainGarments, func(k string) bool { return strings.Contains(name, k) })
	})
}

// Cheapest returns up to n available products by ascending price. Equal
// prices keep catalog order.
func (c *Catalog) Cheapest(ctx context.Context, n int) ([]*inventory.Product, error) {
	if n <= 0 {
		return nil, ErrInvalidLimit
	}
	ps, err := c.Available(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(ps, func(a, b *inventory.Product) int { return a.Price.Cmp(b.Price) })
	return ps[:min(n, len(ps))], nil
}

// Categories lists each category once, by first appearance. Spellings that
// differ only in case count as one category.
func (c *Catalog) Categories(ctx context.Context) ([]string, error) {
	ps, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, p := range ps {
		key := strings.ToLower(p.Category)
		if p.Category == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p.Category)
	}
	return out, nil
}

// Query combines the catalog filters. Zero fields do not filter.
type Query struct {
	Text          string
	Category      string
	Size          string
	Color         string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
	AvailableOnly bool
}

func (c *Catalog) Filter(ctx context.Context, q Query) ([]*inventory.Product, error) {
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return nil, ErrInvalidRange
	}
	text := strings.ToLower(strings.TrimSpace(q.Text))
	return c.filter(ctx, func(p *inventory.Product) bool {
		switch {
		case q.AvailableOnly && !p.Available():
			return false
		case text != "" && !strings.Contains(strings.ToLower(p.Name), text):
			return false
		case q.Category != "" && !strings.EqualFold(p.Category, strings.TrimSpace(q.Category)):
			return false
		case q.Size != "" && !p.HasSize(q.Size):
			return false
		case q.Color != "" && !slices.ContainsFunc(p.Colors, func(c string) bool { return strings.EqualFold(c, q.Color) }):
			return false
		case q.MinPrice != nil && p.Price.LessThan(*q.MinPrice):
			return false
		case q.MaxPrice != nil && p.Price.GreaterThan(*q.MaxPrice):
			return false
		}
		return true
	})
}

// Report summarises stock across the catalog.
type Report struct {
	TotalValue   decimal.Decimal
	ProductCount int
	TotalUnits   int
	Threshold    int
	LowStock     []*inventory.Product
	OutOfStock   []*inventory.Product
}

// InventoryReport lists as low stock every product with 0 < stock < threshold.
func (c *Catalog) InventoryReport(ctx context.Context, threshold int) (*Report, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("catalog: threshold must not be negative: %w", errkind.ErrValidation)
	}
	ps, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	r := &Report{TotalValue: decimal.Zero, ProductCount: len(ps), Threshold: threshold}
	for _, p := range ps {
		r.TotalValue = r.TotalValue.Add(p.Value())
		r.TotalUnits += p.Stock
		switch {
		case p.Stock == 0:
			r.OutOfStock = append(r.OutOfStock, p)
		case p.Stock < threshold:
			r.LowStock = append(r.LowStock, p)
		}
	}
	slices.SortStableFunc(r.LowStock, func(a, b *inventory.Product) int { return cmp.Compare(a.Stock, b.Stock) })
	return r, nil
}

func (c *Catalog) filter(ctx context.Context, keep func(*inventory.Product) bool) ([]*inventory.Product, error) {
	ps, err := c.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*inventory.Product, 0, len(ps))
	for _, p := range ps {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}
