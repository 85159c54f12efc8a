package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/inventory"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/pkg/arena"
	"github.com/shopspring/decimal"
)

// InventoryStore keeps products in insertion order behind a single lock, so
// every stock check and its mutation happen atomically.
type InventoryStore struct {
	mu       sync.RWMutex
	products *arena.Arena[int, *domain.Product]
}

var _ domain.Store = (*InventoryStore)(nil)

func NewInventoryStore(seed ...*domain.Product) (*InventoryStore, error) {
	s := &InventoryStore{products: arena.New[int, *domain.Product]()}
	for _, p := range seed {
		if err := s.Add(context.Background(), p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *InventoryStore) Get(ctx context.Context, id int) (*domain.Product, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	return p.Clone(), nil
}

func (s *InventoryStore) List(ctx context.Context) ([]*domain.Product, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Product, 0, s.products.Len())
	for _, p := range s.products.All() {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (s *InventoryStore) Add(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil {
		return domain.ErrInvalidProduct
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.products.Has(p.ID) {
		return fmt.Errorf("%w: id %d", domain.ErrDuplicateProduct, p.ID)
	}
	s.products.Put(p.ID, p.Clone())
	return nil
}

func (s *InventoryStore) Remove(ctx context.Context, id int) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products.Delete(id); !ok {
		return fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	return nil
}

func (s *InventoryStore) ReduceStock(ctx context.Context, id, qty int) (*domain.Product, error) {
	return s.mutate(ctx, id, func(p *domain.Product) error { return p.Reduce(qty) })
}

func (s *InventoryStore) IncreaseStock(ctx context.Context, id, qty int) (*domain.Product, error) {
	return s.mutate(ctx, id, func(p *domain.Product) error { return p.Increase(qty) })
}

func (s *InventoryStore) SetStock(ctx context.Context, id, qty int) (*domain.Product, error) {
	return s.mutate(ctx, id, func(p *domain.Product) error { return p.SetStock(qty) })
}

func (s *InventoryStore) SetPrice(ctx context.Context, id int, price decimal.Decimal) (*domain.Product, error) {
	return s.mutate(ctx, id, func(p *domain.Product) error { return p.SetPrice(price) })
}

// mutate applies fn to a working copy and stores it only when fn succeeds.
func (s *InventoryStore) mutate(ctx context.Context, id int, fn func(*domain.Product) error) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.products.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", domain.ErrNotFound, id)
	}
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.products.Put(id, next)
	return next.Clone(), nil
}
