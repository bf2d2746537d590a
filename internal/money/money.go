// Package money holds the currency arithmetic for the storefront. All
// computation happens in integer minor units (paise); formatting to a
// display string is one-way and never parsed back.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RateFromBasisPoints converts a rate in basis points to a decimal
// fraction, e.g. 1000 bps -> 0.10.
func RateFromBasisPoints(bps int64) decimal.Decimal {
	return decimal.New(bps, -4)
}

// Tax computes round(subtotal * rate) in minor units. Halves round up
// (away from zero), applied consistently everywhere a tax is derived.
func Tax(subtotalMinor int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(subtotalMinor).Mul(rate).Round(0).IntPart()
}

// FormatINR renders minor units as a rupee string with Indian digit
// grouping, e.g. 123456789 -> "₹12,34,567.89".
func FormatINR(minor int64) string {
	d := decimal.New(minor, -2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}

	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + "₹" + groupIndian(intPart) + "." + frac
}

// groupIndian inserts commas per the Indian numbering system: the last
// three digits form one group, the rest pair off in twos.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}

	return strings.Join(parts, ",") + "," + tail
}
