package order

import (
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/errkind"
)

var ErrInvalidStatus = fmt.Errorf("order: unknown status: %w", errkind.ErrValidation)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}

// transitions is the whole order lifecycle. Delivered and Cancelled are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
}

var aliases = map[string]Status{
	"pendiente":  StatusPending,
	"confirmado": StatusConfirmed,
	"enviado":    StatusShipped,
	"entregado":  StatusDelivered,
	"cancelado":  StatusCancelled,
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ParseStatus accepts the English names and the Spanish names used by the
// storefront, in any case.
func ParseStatus(raw string) (Status, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if s := Status(v); s.Valid() {
		return s, nil
	}
	if s, ok := aliases[v]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}
