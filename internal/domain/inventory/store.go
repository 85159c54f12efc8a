package inventory

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store is the authoritative product table. Every mutation is a single step:
// on failure nothing changes.
type Store interface {
	Get(ctx context.Context, id int) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	Add(ctx context.Context, p *Product) error
	Remove(ctx context.Context, id int) error

	// ReduceStock checks and decrements under one lock.
	ReduceStock(ctx context.Context, id, qty int) (*Product, error)
	IncreaseStock(ctx context.Context, id, qty int) (*Product, error)
	SetStock(ctx context.Context, id, qty int) (*Product, error)
	SetPrice(ctx context.Context, id int, price decimal.Decimal) (*Product, error)
}
