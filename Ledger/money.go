package Ledger

import (
	"github.com/shopspring/decimal"
)

// Tolerance is the cent threshold under which a remaining/paid difference is
// treated as exactly zero. Repeated currency conversion leaves residues below
// this, so balance comparisons never use exact equality.
var Tolerance = decimal.New(1, -2)

// ToLBP converts a USD amount at the given rate. No rounding happens here;
// rounding is applied only at the persistence/display boundary.
func ToLBP(amountUSD, rate decimal.Decimal) decimal.Decimal {
	return amountUSD.Mul(rate)
}

// ToUSD converts a local-currency amount at the given rate.
func ToUSD(amountLBP, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return decimal.Zero
	}
	return amountLBP.Div(rate)
}

// RoundCurrency rounds to two decimal places, half up.
func RoundCurrency(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// WithinTolerance reports whether two amounts differ by at most one cent.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// SnapZero collapses amounts within tolerance of zero to exactly zero.
func SnapZero(amount decimal.Decimal) decimal.Decimal {
	if amount.Abs().LessThanOrEqual(Tolerance) {
		return decimal.Zero
	}
	return amount
}

// maxZero floors an amount at zero.
func maxZero(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
