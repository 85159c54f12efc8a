package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentProcessedEvent is emitted after every processing attempt.
type PaymentProcessedEvent struct {
	PaymentID     int
	OrderID       int
	Amount        decimal.Decimal
	Method        Method
	Status        Status
	FailureReason string
	Attempt       int
	OccurredAt    time.Time
}

func (e PaymentProcessedEvent) EventName() string {
	if e.Status == StatusCompleted {
		return "payment.completed"
	}
	return "payment.failed"
}

func NewPaymentProcessedEvent(p *Payment) PaymentProcessedEvent {
	e := PaymentProcessedEvent{
		PaymentID:     p.ID,
		Amount:        p.Amount,
		Method:        p.Method,
		Status:        p.Status,
		FailureReason: p.FailureReason,
		Attempt:       p.Attempts,
		OccurredAt:    time.Now().UTC(),
	}
	if p.Order != nil {
		e.OrderID = p.Order.ID
	}
	return e
}

type PaymentCancelledEvent struct {
	PaymentID  int
	Method     Method
	OccurredAt time.Time
}

func (PaymentCancelledEvent) EventName() string { return "payment.cancelled" }

func NewPaymentCancelledEvent(p *Payment) PaymentCancelledEvent {
	return PaymentCancelledEvent{PaymentID: p.ID, Method: p.Method, OccurredAt: time.Now().UTC()}
}
