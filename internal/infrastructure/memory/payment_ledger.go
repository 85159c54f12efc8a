package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/pkg/arena"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/pkg/sequence"
	"github.com/shopspring/decimal"
)

// DefaultPaymentIDBase keeps payment ids clear of order ids; the first
// payment is 101.
const DefaultPaymentIDBase = 100

type PaymentLedger struct {
	mu       sync.RWMutex
	ids      *sequence.Generator
	payments *arena.Arena[int, *domain.Payment]
}

var _ domain.Ledger = (*PaymentLedger)(nil)

func NewPaymentLedger(ids *sequence.Generator) *PaymentLedger {
	if ids == nil {
		ids = sequence.New(DefaultPaymentIDBase)
	}
	return &PaymentLedger{
		ids:      ids,
		payments: arena.New[int, *domain.Payment](),
	}
}

func (l *PaymentLedger) Create(ctx context.Context, build func(id int) (*domain.Payment, error)) (*domain.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.ids.Peek()
	p, err := build(id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.ID != id {
		return nil, fmt.Errorf("payment ledger: built payment does not carry id %d", id)
	}
	l.ids.Next()
	l.payments.Put(id, p.Clone())
	return p.Clone(), nil
}

func (l *PaymentLedger) Get(ctx context.Context, id int) (*domain.Payment, error) {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.payments.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	return p.Clone(), nil
}

func (l *PaymentLedger) Update(ctx context.Context, id int, fn func(*domain.Payment) error) (*domain.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.payments.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	l.payments.Put(id, next)
	return next.Clone(), nil
}

func (l *PaymentLedger) All(ctx context.Context) ([]*domain.Payment, error) {
	return l.filter(ctx, func(*domain.Payment) bool { return true }), nil
}

func (l *PaymentLedger) FindByOrder(ctx context.Context, orderID int) ([]*domain.Payment, error) {
	return l.filter(ctx, func(p *domain.Payment) bool {
		return p.Order != nil && p.Order.ID == orderID
	}), nil
}

func (l *PaymentLedger) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Payment, error) {
	return l.filter(ctx, func(p *domain.Payment) bool { return p.Status == status }), nil
}

func (l *PaymentLedger) FindByMethod(ctx context.Context, method domain.Method) ([]*domain.Payment, error) {
	return l.filter(ctx, func(p *domain.Payment) bool { return p.Method == method }), nil
}

func (l *PaymentLedger) Count(ctx context.Context) (int, error) {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.payments.Len(), nil
}

func (l *PaymentLedger) CountByStatus(ctx context.Context, status domain.Status) (int, error) {
	return len(l.filter(ctx, func(p *domain.Payment) bool { return p.Status == status })), nil
}

func (l *PaymentLedger) TotalCompleted(ctx context.Context) (decimal.Decimal, error) {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()

	total := decimal.Zero
	for _, p := range l.payments.All() {
		if p.Status == domain.StatusCompleted {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (l *PaymentLedger) MostUsedMethod(ctx context.Context) (domain.Method, bool, error) {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()

	counts := make(map[domain.Method]int)
	var order []domain.Method
	for _, p := range l.payments.All() {
		if counts[p.Method] == 0 {
			order = append(order, p.Method)
		}
		counts[p.Method]++
	}

	var best domain.Method
	for _, m := range order {
		if counts[m] > counts[best] {
			best = m
		}
	}
	return best, len(order) > 0, nil
}

func (l *PaymentLedger) SuccessRate(ctx context.Context) (float64, error) {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()

	total := l.payments.Len()
	if total == 0 {
		return 0, nil
	}
	completed := 0
	for _, p := range l.payments.All() {
		if p.Status == domain.StatusCompleted {
			completed++
		}
	}
	return float64(completed) * 100 / float64(total), nil
}

func (l *PaymentLedger) filter(ctx context.Context, keep func(*domain.Payment) bool) []*domain.Payment {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*domain.Payment, 0)
	for _, p := range l.payments.All() {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}
