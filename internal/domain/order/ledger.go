package order

import (
	"context"

	"github.com/shopspring/decimal"
)

// Ledger records orders in creation order and owns the order id sequence.
// Every query returns clones in a slice the caller owns.
type Ledger interface {
	// Create reserves the next id, builds the order with it and records it.
	// A build failure consumes no id.
	Create(ctx context.Context, build func(id int) (*Order, error)) (*Order, error)
	Get(ctx context.Context, id int) (*Order, error)
	// Update applies fn to the stored order under the ledger lock and keeps
	// the result only when fn succeeds.
	Update(ctx context.Context, id int, fn func(*Order) error) (*Order, error)

	All(ctx context.Context) ([]*Order, error)
	FindByEmail(ctx context.Context, email string) ([]*Order, error)
	FindByStatus(ctx context.Context, status Status) ([]*Order, error)

	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
	// TotalSales sums the totals of every order that is not cancelled.
	TotalSales(ctx context.Context) (decimal.Decimal, error)
}
