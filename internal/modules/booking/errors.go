package booking

import (
	"errors"
	"fmt"

	"rentals/internal/pricing"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrForbidden               = errors.New("forbidden")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrSelfBooking             = errors.New("cannot book own product")
	ErrQuoteMismatch           = errors.New("quoted total does not match")
	ErrOverbooking             = errors.New("overbooking constraint violation")
)

// QuoteMismatchError carries the server-side quote the client should have sent.
type QuoteMismatchError struct {
	Submitted float64
	Quote     *pricing.Quote
}

func (e *QuoteMismatchError) Error() string {
	return fmt.Sprintf("submitted total %.2f, current total %.2f", e.Submitted, e.Quote.Total)
}

func (e *QuoteMismatchError) Unwrap() error {
	return ErrQuoteMismatch
}
