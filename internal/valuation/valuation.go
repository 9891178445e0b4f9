// Package valuation holds the deterministic arithmetic that turns raw
// transaction inputs into settled figures: weight truncation, amount
// rounding, pure-weight and balance derivation. Pure functions, no I/O.
package valuation

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/karatops/bullionbook/internal/domain"
)

var five = decimal.NewFromInt(5)

// TruncateTo3Decimals drops everything past the third decimal place,
// flooring toward negative infinity. The domain never produces negative
// weights, so the floor/toward-zero distinction only matters for
// callers feeding negative values in.
func TruncateTo3Decimals(x decimal.Decimal) decimal.Decimal {
	return x.Shift(3).Floor().Shift(-3)
}

// RoundToNearest5 rounds a currency amount to the nearest multiple of 5,
// half away from zero (10092.5 rounds to 10095). Idempotent.
func RoundToNearest5(x decimal.Decimal) decimal.Decimal {
	return x.Div(five).Round(0).Mul(five)
}

// PureWeight converts a gross weight and a purity percentage into the
// purity-adjusted weight, truncated to 3 decimals.
func PureWeight(grossWeight, purityPercent decimal.Decimal) decimal.Decimal {
	return TruncateTo3Decimals(grossWeight.Mul(purityPercent).Shift(-2))
}

// Balance is amount minus paid amount, exact. Positive means due,
// negative overpaid, zero settled. Rounding is presentation-only and
// never applied here.
func Balance(amount, paidAmount decimal.Decimal) decimal.Decimal {
	return amount.Sub(paidAmount)
}

// FromFloat converts a caller-supplied float into a decimal, rejecting
// NaN and infinities. This is the only numeric check the engine does;
// every finite value passes through untouched.
func FromFloat(field string, v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Decimal{}, &domain.ValidationError{Field: field, Reason: "non-finite value"}
	}
	return decimal.NewFromFloat(v), nil
}
