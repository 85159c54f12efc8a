package catalog

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/application"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/inventory"
	domoutbox "github.com/Zhima-Mochi/minishop-retail/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-retail/app/internal/observability"
	"github.com/shopspring/decimal"

	"go.opentelemetry.io/otel/attribute"
)

const (
	inventoryService     = "inventory-service"
	useCaseProductAdd    = "inventory.product_add"
	useCaseProductRemove = "inventory.product_remove"
	useCaseSetStock      = "inventory.set_stock"
	useCaseSetPrice      = "inventory.set_price"
)

// Admin runs the administrative inventory use cases.
type Admin struct {
	store     inventory.Store
	publisher domoutbox.Publisher
	in        application.Instrument
}

func NewAdmin(store inventory.Store, publisher domoutbox.Publisher, tel observability.Observability) *Admin {
	return &Admin{
		store:     store,
		publisher: publisher,
		in:        application.NewInstrument(tel, inventoryService),
	}
}

type AddProductInput struct {
	ID       int
	Name     string
	Price    decimal.Decimal
	Stock    int
	Category string
	Sizes    []string
	Colors   []string
}

func (a *Admin) AddProduct(ctx context.Context, cmd AddProductInput) (_ *inventory.Product, err error) {
	ctx, run := a.in.Start(ctx, useCaseProductAdd, "AddProduct", attribute.Int("product.id", cmd.ID))
	defer func() { run.End(err) }()
	run.With(observability.F("product_id", cmd.ID))

	p, err := inventory.NewProduct(cmd.ID, cmd.Name, cmd.Price, cmd.Stock, cmd.Category, cmd.Sizes, cmd.Colors)
	if err != nil {
		return nil, fmt.Errorf("catalog: add product: %w", err)
	}
	if err := a.store.Add(ctx, p); err != nil {
		return nil, fmt.Errorf("catalog: add product: %w", err)
	}
	run.Publish(ctx, a.publisher, inventory.NewStockAdjustedEvent(p.ID, p.Stock))
	return p, nil
}

func (a *Admin) RemoveProduct(ctx context.Context, id int) (err error) {
	ctx, run := a.in.Start(ctx, useCaseProductRemove, "RemoveProduct", attribute.Int("product.id", id))
	defer func() { run.End(err) }()
	run.With(observability.F("product_id", id))

	if err := a.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("catalog: remove product: %w", err)
	}
	run.Publish(ctx, a.publisher, inventory.NewStockAdjustedEvent(id, 0))
	return nil
}

func (a *Admin) SetStock(ctx context.Context, id, stock int) (_ *inventory.Product, err error) {
	ctx, run := a.in.Start(ctx, useCaseSetStock, "SetStock",
		attribute.Int("product.id", id),
		attribute.Int("product.stock", stock),
	)
	defer func() { run.End(err) }()
	run.With(observability.F("product_id", id), observability.F("stock", stock))

	p, err := a.store.SetStock(ctx, id, stock)
	if err != nil {
		return nil, fmt.Errorf("catalog: set stock: %w", err)
	}
	run.Publish(ctx, a.publisher, inventory.NewStockAdjustedEvent(p.ID, p.Stock))
	return p, nil
}

func (a *Admin) SetPrice(ctx context.Context, id int, price decimal.Decimal) (_ *inventory.Product, err error) {
	ctx, run := a.in.Start(ctx, useCaseSetPrice, "SetPrice",
		attribute.Int("product.id", id),
		attribute.String("product.price", price.String()),
	)
	defer func() { run.End(err) }()
	run.With(observability.F("product_id", id), observability.F("price", price.String()))

	p, err := a.store.SetPrice(ctx, id, price)
	if err != nil {
		return nil, fmt.Errorf("catalog: set price: %w", err)
	}
	return p, nil
}
