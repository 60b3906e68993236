package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/rcabrera/tillpoint-backend/internal/pricing"
)

// SaleTotals is the derived snapshot recomputed after every mutation.
type SaleTotals struct {
	GrandTotalAmount      decimal.Decimal `json:"grand_total_amount"`
	TotalTaxableAmount    decimal.Decimal `json:"total_taxable_amount"`
	TotalTaxableNetAmount decimal.Decimal `json:"total_taxable_net_amount"`
	TotalTaxExemptAmount  decimal.Decimal `json:"total_tax_exempt_amount"`
	TotalTaxAmount        decimal.Decimal `json:"total_tax_amount"`
}

// ZeroTotals returns the all-zero default snapshot.
func ZeroTotals() SaleTotals {
	return SaleTotals{
		GrandTotalAmount:      decimal.Zero,
		TotalTaxableAmount:    decimal.Zero,
		TotalTaxableNetAmount: decimal.Zero,
		TotalTaxExemptAmount:  decimal.Zero,
		TotalTaxAmount:        decimal.Zero,
	}
}

// ComputeTotals folds the full line-item map into a totals snapshot. A full
// recompute on every mutation is deliberate: ledgers hold single-sale line
// counts and a fold cannot drift the way incremental sums can.
func ComputeTotals(items map[string]*LineItem) SaleTotals {
	totals := ZeroTotals()
	for _, item := range items {
		subtotal := item.SaleSubtotal
		totals.GrandTotalAmount = totals.GrandTotalAmount.Add(subtotal)
		if item.Taxable() {
			net, tax := pricing.SplitTaxInclusive(subtotal, item.TaxRatePercentage)
			totals.TotalTaxableAmount = totals.TotalTaxableAmount.Add(subtotal)
			totals.TotalTaxableNetAmount = totals.TotalTaxableNetAmount.Add(net)
			totals.TotalTaxAmount = totals.TotalTaxAmount.Add(tax)
		} else {
			totals.TotalTaxExemptAmount = totals.TotalTaxExemptAmount.Add(subtotal)
		}
	}
	return totals
}
