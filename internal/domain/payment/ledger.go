package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Ledger records every payment attempt, failed ones included, and owns the
// payment id sequence.
// Every query returns clones in a slice the caller owns.
type Ledger interface {
	Create(ctx context.Context, build func(id int) (*Payment, error)) (*Payment, error)
	Get(ctx context.Context, id int) (*Payment, error)
	Update(ctx context.Context, id int, fn func(*Payment) error) (*Payment, error)

	All(ctx context.Context) ([]*Payment, error)
	FindByOrder(ctx context.Context, orderID int) ([]*Payment, error)
	FindByStatus(ctx context.Context, status Status) ([]*Payment, error)
	FindByMethod(ctx context.Context, method Method) ([]*Payment, error)

	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
	TotalCompleted(ctx context.Context) (decimal.Decimal, error)
	// MostUsedMethod reports false when there are no payments. Ties go to the
	// method used first.
	MostUsedMethod(ctx context.Context) (Method, bool, error)
	// SuccessRate is the percentage of payments that completed, 0 when empty.
	SuccessRate(ctx context.Context) (float64, error)
}
