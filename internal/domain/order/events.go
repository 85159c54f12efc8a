package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderCreatedEvent is emitted once an order has been recorded in the ledger.
type OrderCreatedEvent struct {
	OrderID    int
	Email      string
	Total      decimal.Decimal
	Units      int
	OccurredAt time.Time
}

func (OrderCreatedEvent) EventName() string { return "order.created" }

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:    o.ID,
		Email:      o.Customer.Email,
		Total:      o.Total(),
		Units:      o.Units(),
		OccurredAt: time.Now().UTC(),
	}
}

// OrderStatusChangedEvent is emitted on every forward transition.
type OrderStatusChangedEvent struct {
	OrderID    int
	From       Status
	To         Status
	OccurredAt time.Time
}

func (OrderStatusChangedEvent) EventName() string { return "order.status_changed" }

func NewOrderStatusChangedEvent(o *Order, from Status) OrderStatusChangedEvent {
	return OrderStatusChangedEvent{
		OrderID:    o.ID,
		From:       from,
		To:         o.Status,
		OccurredAt: time.Now().UTC(),
	}
}

// OrderCancelledEvent is emitted after an order's units went back to stock.
type OrderCancelledEvent struct {
	OrderID    int
	From       Status
	Items      []Item
	Total      decimal.Decimal
	OccurredAt time.Time
}

func (OrderCancelledEvent) EventName() string { return "order.cancelled" }

func NewOrderCancelledEvent(o *Order, from Status) OrderCancelledEvent {
	return OrderCancelledEvent{
		OrderID:    o.ID,
		From:       from,
		Items:      o.Items(),
		Total:      o.Total(),
		OccurredAt: time.Now().UTC(),
	}
}
