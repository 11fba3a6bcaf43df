package booking

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped to HTTP statuses at the handler boundary.
var (
	ErrNotFound      = errors.New("booking not found")
	ErrNotAuthorized = errors.New("not authorized")
)

// InvalidTransitionError rejects a status change not present in the
// transition table. The message names the illegal from->to pair.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

// ValidationError reports malformed input with field-level messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

// PaymentVerificationError signals that payment confirmation failed. The
// booking stays in its current state.
type PaymentVerificationError struct {
	BookingID string
	Cause     error
}

func (e *PaymentVerificationError) Error() string {
	return fmt.Sprintf("payment verification failed for booking %s: %v", e.BookingID, e.Cause)
}

func (e *PaymentVerificationError) Unwrap() error {
	return e.Cause
}
