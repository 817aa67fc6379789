package Ledger

import (
	"errors"
	"fmt"
)

// Every rejected operation returns one of these; nothing is logged-only.
var (
	// ErrValidation wraps malformed input, rejected before any state change.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientStock is soft: callers may retry with an explicit
	// negative-stock override. Restocks and reversals never hit it.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrOverpayment and ErrOverpaymentAtCreation are hard rejections with
	// no partial effect.
	ErrOverpayment           = errors.New("payment exceeds remaining amount")
	ErrOverpaymentAtCreation = errors.New("paid at creation exceeds invoice total")

	ErrNotFound         = errors.New("record not found")
	ErrExceedsAvailable = errors.New("withdrawal exceeds available quantity")
	ErrNotInstallment   = errors.New("invoice is not an installment invoice")
	ErrDuplicatePayment = errors.New("payment was already applied")
)

// FieldError attaches the offending field to a validation rejection.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

func fieldErr(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
