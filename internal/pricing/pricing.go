package pricing

import (
	"github.com/shopspring/decimal"
)

// moneyPlaces is the rounding scale for monetary splits.
const moneyPlaces = 2

var oneHundred = decimal.NewFromInt(100)

// Subtotal multiplies unit price by quantity. A nil quantity is a blank
// input and contributes zero; callers keep the blank on the line itself so
// the register can render an empty field instead of "0".
func Subtotal(unitPrice decimal.Decimal, qty *decimal.Decimal) decimal.Decimal {
	if qty == nil {
		return decimal.Zero
	}
	return unitPrice.Mul(*qty)
}

// SplitTaxInclusive derives the net and tax portions of a tax-inclusive
// subtotal. The net is rounded to two places and the tax is the remainder,
// so net + tax always equals the subtotal exactly.
func SplitTaxInclusive(subtotal, taxRatePercentage decimal.Decimal) (net, tax decimal.Decimal) {
	if taxRatePercentage.IsZero() {
		return subtotal, decimal.Zero
	}
	divisor := decimal.NewFromInt(1).Add(taxRatePercentage.Div(oneHundred))
	net = subtotal.DivRound(divisor, moneyPlaces)
	tax = subtotal.Sub(net)
	return net, tax
}

// FormatQty renders whole quantities without decimal places and fractional
// quantities with exactly two.
func FormatQty(qty decimal.Decimal) string {
	if qty.IsInteger() {
		return qty.StringFixed(0)
	}
	return qty.StringFixed(2)
}

// FormatAmount renders a monetary amount with two decimal places.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
