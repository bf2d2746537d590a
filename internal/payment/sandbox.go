package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Sandbox simulates a payment provider for environments without real
// credentials, the way the storefront's test-payment path did. Every
// authorization succeeds with a SIM- reference unless FailWith is set.
type Sandbox struct {
	// Delay simulates the provider round-trip.
	Delay time.Duration
	// FailWith, when non-nil, makes every authorization fail with it.
	FailWith error
}

func (s *Sandbox) Authorize(ctx context.Context, amountMinorUnits int64, currency string) (Authorization, error) {
	if amountMinorUnits <= 0 {
		return Authorization{}, fmt.Errorf("sandbox: amount must be positive, got %d", amountMinorUnits)
	}

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return Authorization{}, fmt.Errorf("sandbox: authorization interrupted: %w", ctx.Err())
		}
	}

	if s.FailWith != nil {
		return Authorization{}, s.FailWith
	}

	authz := Authorization{
		Reference: "SIM-" + uuid.NewString(),
		Amount:    amountMinorUnits,
		Currency:  currency,
	}
	slog.Info("Sandbox payment authorized", "reference", authz.Reference, "amount", amountMinorUnits, "currency", currency)
	return authz, nil
}
