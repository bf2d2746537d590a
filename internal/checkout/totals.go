package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/artisans-corner/storefront/internal/entity"
	"github.com/artisans-corner/storefront/internal/money"
)

// Totals prices a cart in minor units. Total is always Subtotal + Tax.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// ComputeTotals derives totals from the line items. The computation is
// pure and deterministic: the same items always produce the same integers.
func ComputeTotals(items []entity.CartLineItem, taxRate decimal.Decimal) Totals {
	var subtotal int64
	for _, item := range items {
		subtotal += item.UnitPrice * int64(item.Quantity)
	}

	tax := money.Tax(subtotal, taxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}
