package payment

import (
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/minishop-retail/app/internal/domain/errkind"
)

var (
	ErrInvalidStatus = fmt.Errorf("payment: unknown status: %w", errkind.ErrValidation)
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

var Statuses = []Status{StatusPending, StatusCompleted, StatusFailed, StatusCancelled}

var statusAliases = map[string]Status{
	"pendiente":  StatusPending,
	"completado": StatusCompleted,
	"fallido":    StatusFailed,
	"cancelado":  StatusCancelled,
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if s := Status(v); s.Valid() {
		return s, nil
	}
	if s, ok := statusAliases[v]; ok {
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// Method is one of the supported settlement channels.
type Method string

const (
	MethodNequi       Method = "nequi"
	MethodBancolombia Method = "bancolombia"
	MethodDaviplata   Method = "daviplata"
)

var Methods = []Method{MethodNequi, MethodBancolombia, MethodDaviplata}

func (m Method) Valid() bool {
	switch m {
	case MethodNequi, MethodBancolombia, MethodDaviplata:
		return true
	}
	return false
}

// ParseMethod matches case-insensitively.
func ParseMethod(raw string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(raw)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, raw)
	}
	return m, nil
}
