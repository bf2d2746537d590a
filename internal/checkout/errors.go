package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart rejects starting a checkout over an empty cart.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrInvalidState is returned when an operation does not apply to the
	// flow's current state, including attempts to run two checkouts at once.
	ErrInvalidState = errors.New("checkout: operation not allowed in current state")
)

// PaymentError wraps a provider failure, timeout, or user cancellation.
// It is retryable: the cart is untouched and no order call was made.
type PaymentError struct {
	Err error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment failed: %v", e.Err)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// OrderSubmissionError means the payment was captured but the order was
// not recorded. The payment reference is retained so the order can be
// retried or reconciled manually; it must never be silently dropped.
type OrderSubmissionError struct {
	PaymentRef string
	Err        error
}

func (e *OrderSubmissionError) Error() string {
	return fmt.Sprintf("payment captured but order not recorded (payment ref %s): %v", e.PaymentRef, e.Err)
}

func (e *OrderSubmissionError) Unwrap() error {
	return e.Err
}
