// Package payment defines the payment-provider contract the checkout flow
// drives. The flow only sees an amount going in and an opaque reference
// coming back, so providers are swappable.
package payment

import (
	"context"
)

// Authorization is the provider's proof that a payment was approved.
type Authorization struct {
	Reference string
	Amount    int64 // minor units
	Currency  string
}

// Provider authorizes a payment of the given amount. Implementations
// must honor ctx cancellation and deadlines; the checkout flow runs every
// authorization under a timeout.
type Provider interface {
	Authorize(ctx context.Context, amountMinorUnits int64, currency string) (Authorization, error)
}
