// Package errkind defines the failure kinds shared by every domain package.
// Domain sentinels wrap exactly one kind so callers can branch on either.
package errkind

import "errors"

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrValidation        = errors.New("validation failed")
)

// Of returns the kind wrapped by err, or nil when err carries none.
func Of(err error) error {
	for _, k := range []error{ErrInsufficientStock, ErrInvalidQuantity, ErrNotFound, ErrInvalidState, ErrValidation} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
