package pricing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrSlotUnavailable = errors.New("slot unavailable")
	ErrRateUnavailable = errors.New("rate unavailable")
)

// ValidationError collects field level problems with a booking window.
type ValidationError struct {
	fields map[string][]string
}

func newValidationError() *ValidationError {
	return &ValidationError{fields: make(map[string][]string)}
}

func (e *ValidationError) add(field, msg string) {
	e.fields[field] = append(e.fields[field], msg)
}

func (e *ValidationError) empty() bool {
	return len(e.fields) == 0
}

func (e *ValidationError) Fields() map[string][]string {
	return e.fields
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.fields[k], ", ")))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// SlotUnavailableError is returned when the requested window overlaps a
// committed reservation.
type SlotUnavailableError struct {
	NextAvailableDate time.Time
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot unavailable, next available at %s", e.NextAvailableDate.UTC().Format(time.RFC3339))
}

func (e *SlotUnavailableError) Unwrap() error {
	return ErrSlotUnavailable
}

// ConfigurationError means the product cannot be priced as configured.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "pricing configuration: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error {
	return ErrRateUnavailable
}

func AsValidationError(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

func AsSlotUnavailableError(err error) *SlotUnavailableError {
	var se *SlotUnavailableError
	if errors.As(err, &se) {
		return se
	}
	return nil
}
