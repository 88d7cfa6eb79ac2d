package domain

import "github.com/shopspring/decimal"

// Balances and amounts are stored as NUMERIC(20, 4).
const (
	MoneyScale     = 4
	MoneyPrecision = 20
)

// moneyCeiling is the first value NUMERIC(20, 4) cannot hold.
var moneyCeiling = decimal.New(1, MoneyPrecision-MoneyScale)

// ValidMoney reports whether d is stored exactly: at most MoneyScale
// fractional digits and an absolute value below 10^16. The exponent is
// checked before any arithmetic so extreme exponents are rejected cheaply.
func ValidMoney(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp < -MoneyScale || exp > MoneyPrecision-MoneyScale {
		return false
	}
	return d.Abs().LessThan(moneyCeiling)
}

// ValidAmount is ValidMoney restricted to strictly positive values.
func ValidAmount(d decimal.Decimal) bool {
	return d.IsPositive() && ValidMoney(d)
}
