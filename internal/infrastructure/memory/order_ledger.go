package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	domain "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/pkg/arena"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/pkg/sequence"
	"github.com/shopspring/decimal"
)

type OrderLedger struct {
	mu     sync.RWMutex
	ids    *sequence.Generator
	orders *arena.Arena[int, *domain.Order]
}

var _ domain.Ledger = (*OrderLedger)(nil)

func NewOrderLedger(ids *sequence.Generator) *OrderLedger {
	if ids == nil {
		ids = sequence.New(0)
	}
	return &OrderLedger{
		ids:    ids,
		orders: arena.New[int, *domain.Order](),
	}
}

func (l *OrderLedger) Create(ctx context.Context, build func(id int) (*domain.Order, error)) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.ids.Peek()
	o, err := build(id)
	if err != nil {
		return nil, err
	}
	if o == nil || o.ID != id {
		return nil, fmt.Errorf("order ledger: built order does not carry id %d", id)
	}
	l.ids.Next()
	l.orders.Put(id, o.Clone())
	return o.Clone(), nil
}

func (l *OrderLedger) Get(ctx context.Context, id int) (*domain.Order, error) {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()

	o, ok := l.orders.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	return o.Clone(), nil
}

func (l *OrderLedger) Update(ctx context.Context, id int, fn func(*domain.Order) error) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.orders.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	l.orders.Put(id, next)
	return next.Clone(), nil
}

func (l *OrderLedger) All(ctx context.Context) ([]*domain.Order, error) {
	return l.filter(ctx, func(*domain.Order) bool { return true }), nil
}

// FindByEmail matches the customer email case-insensitively.
func (l *OrderLedger) FindByEmail(ctx context.Context, email string) ([]*domain.Order, error) {
	email = strings.TrimSpace(email)
	return l.filter(ctx, func(o *domain.Order) bool {
		return strings.EqualFold(o.Customer.Email, email)
	}), nil
}

func (l *OrderLedger) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error) {
	return l.filter(ctx, func(o *domain.Order) bool { return o.Status == status }), nil
}

func (l *OrderLedger) Count(ctx context.Context) (int, error) {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.orders.Len(), nil
}

func (l *OrderLedger) CountByStatus(ctx context.Context, status domain.Status) (int, error) {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()

	n := 0
	for _, o := range l.orders.All() {
		if o.Status == status {
			n++
		}
	}
	return n, nil
}

func (l *OrderLedger) TotalSales(ctx context.Context) (decimal.Decimal, error) {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()

	total := decimal.Zero
	for _, o := range l.orders.All() {
		if o.Status != domain.StatusCancelled {
			total = total.Add(o.Total())
		}
	}
	return total, nil
}

func (l *OrderLedger) filter(ctx context.Context, keep func(*domain.Order) bool) []*domain.Order {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*domain.Order, 0)
	for _, o := range l.orders.All() {
		if keep(o) {
			out = append(out, o.Clone())
		}
	}
	return out
}
