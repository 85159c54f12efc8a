package inventory

import "time"

const (
	FailureReasonNotFound          = "not_found"
	FailureReasonInsufficientStock = "insufficient_stock"
	FailureReasonInvalidQuantity   = "invalid_quantity"
)

// StockReservedEvent is emitted when a cart takes units out of stock.
type StockReservedEvent struct {
	CartID     string
	ProductID  int
	Quantity   int
	Remaining  int
	OccurredAt time.Time
}

func (StockReservedEvent) EventName() string { return "inventory.reserved" }

func NewStockReservedEvent(cartID string, productID, quantity, remaining int) StockReservedEvent {
	return StockReservedEvent{
		CartID:     cartID,
		ProductID:  productID,
		Quantity:   quantity,
		Remaining:  remaining,
		OccurredAt: time.Now().UTC(),
	}
}

// StockReleasedEvent is emitted when reserved units go back to stock, from a
// cart edit or an order cancellation. Source names which.
type StockReleasedEvent struct {
	Source     string
	ProductID  int
	Quantity   int
	Remaining  int
	OccurredAt time.Time
}

func (StockReleasedEvent) EventName() string { return "inventory.released" }

func NewStockReleasedEvent(source string, productID, quantity, remaining int) StockReleasedEvent {
	return StockReleasedEvent{
		Source:     source,
		ProductID:  productID,
		Quantity:   quantity,
		Remaining:  remaining,
		OccurredAt: time.Now().UTC(),
	}
}

// ReservationFailedEvent is emitted when a cart cannot reserve stock.
type ReservationFailedEvent struct {
	CartID     string
	ProductID  int
	Quantity   int
	Reason     string
	OccurredAt time.Time
}

func (ReservationFailedEvent) EventName() string { return "inventory.reservation_failed" }

func NewReservationFailedEvent(cartID string, productID, quantity int, reason string) ReservationFailedEvent {
	return ReservationFailedEvent{
		CartID:     cartID,
		ProductID:  productID,
		Quantity:   quantity,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}

// StockAdjustedEvent is emitted on administrative stock or price changes.
type StockAdjustedEvent struct {
	ProductID  int
	Stock      int
	OccurredAt time.Time
}

func (StockAdjustedEvent) EventName() string { return "inventory.adjusted" }

func NewStockAdjustedEvent(productID, stock int) StockAdjustedEvent {
	return StockAdjustedEvent{ProductID: productID, Stock: stock, OccurredAt: time.Now().UTC()}
}
