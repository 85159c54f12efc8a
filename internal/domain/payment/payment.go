package payment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/errkind"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = fmt.Errorf("payment: %w", errkind.ErrNotFound)
	ErrInvalidMethod    = fmt.Errorf("payment: unsupported method: %w", errkind.ErrValidation)
	ErrInvalidAmount    = fmt.Errorf("payment: amount must be greater than zero: %w", errkind.ErrValidation)
	ErrAmountMismatch   = fmt.Errorf("payment: amount does not match order total: %w", errkind.ErrValidation)
	ErrAlreadyCompleted = fmt.Errorf("payment: already completed: %w", errkind.ErrInvalidState)
	ErrNotCancellable   = fmt.Errorf("payment: cannot cancel: %w", errkind.ErrInvalidState)
)

const (
	FailureReasonInvalidMethod  = "invalid_method"
	FailureReasonInvalidAmount  = "invalid_amount"
	FailureReasonAmountMismatch = "amount_mismatch"
)

// Tolerance is the largest difference between a payment and its order total
// that still settles the order.
var Tolerance = decimal.New(1, -2)

// OrderRef is the part of an order a payment is checked against.
type OrderRef struct {
	ID    int
	Total decimal.Decimal
}

type Payment struct {
	ID            int
	Amount        decimal.Decimal
	Method        Method
	Status        Status
	Order         *OrderRef
	FailureReason string
	Attempts      int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// New records a pending attempt. The method is kept as given so that an
// unsupported one is reported by Validate rather than lost.
func New(id int, amount decimal.Decimal, method string, order *OrderRef, at time.Time) *Payment {
	at = at.UTC()
	var ref *OrderRef
	if order != nil {
		r := *order
		ref = &r
	}
	return &Payment{
		ID:        id,
		Amount:    amount,
		Method:    Method(strings.ToLower(strings.TrimSpace(method))),
		Status:    StatusPending,
		Order:     ref,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// Validate checks the method, the amount and, for an order payment, that the
// amount is within Tolerance of the order total.
func (p *Payment) Validate() error {
	if !p.Method.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMethod, p.Method)
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if p.Order != nil && p.Amount.Sub(p.Order.Total).Abs().GreaterThan(Tolerance) {
		return fmt.Errorf("%w: paid %s, order %d totals %s", ErrAmountMismatch, p.Amount, p.Order.ID, p.Order.Total)
	}
	return nil
}

// Process settles the payment: Completed when it validates, Failed otherwise.
// A validation failure is an outcome, not an error; the returned error is
// reserved for payments that may not be processed at all.
func (p *Payment) Process() error {
	if p.Status == StatusCompleted {
		return ErrAlreadyCompleted
	}
	p.Attempts++
	if err := p.Validate(); err != nil {
		p.Status = StatusFailed
		p.FailureReason = failureReason(err)
		p.touch()
		return nil
	}
	p.Status = StatusCompleted
	p.FailureReason = ""
	p.touch()
	return nil
}

func (p *Payment) Cancel() error {
	if p.Status == StatusCompleted || p.Status == StatusCancelled {
		return fmt.Errorf("%w: status %s", ErrNotCancellable, p.Status)
	}
	p.Status = StatusCancelled
	p.touch()
	return nil
}

// Retry processes a pending, failed or cancelled payment again.
func (p *Payment) Retry() error {
	return p.Process()
}

func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	c := *p
	if p.Order != nil {
		r := *p.Order
		c.Order = &r
	}
	return &c
}

func (p *Payment) touch() {
	p.UpdatedAt = time.Now().UTC()
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidMethod):
		return FailureReasonInvalidMethod
	case errors.Is(err, ErrInvalidAmount):
		return FailureReasonInvalidAmount
	case errors.Is(err, ErrAmountMismatch):
		return FailureReasonAmountMismatch
	}
	return err.Error()
}
