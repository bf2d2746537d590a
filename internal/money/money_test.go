package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTax(t *testing.T) {
	rate := RateFromBasisPoints(1000) // 10%

	tests := []struct {
		name     string
		subtotal int64
		want     int64
	}{
		{"even", 600000, 60000},
		{"zero", 0, 0},
		{"rounds half up", 105, 11}, // 10.5 -> 11
		{"rounds down below half", 104, 10},
		{"single minor unit", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tax(tt.subtotal, rate))
		})
	}
}

func TestTaxDeterministic(t *testing.T) {
	rate := RateFromBasisPoints(1800)
	first := Tax(123457, rate)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Tax(123457, rate))
	}
}

func TestFormatINR(t *testing.T) {
	tests := []struct {
		minor int64
		want  string
	}{
		{0, "₹0.00"},
		{50, "₹0.50"},
		{100000, "₹1,000.00"},
		{250000, "₹2,500.00"},
		{660000, "₹6,600.00"},
		{123456789, "₹12,34,567.89"},
		{10000000000, "₹10,00,00,000.00"},
		{-9950, "-₹99.50"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatINR(tt.minor))
	}
}
