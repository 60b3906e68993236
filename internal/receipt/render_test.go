package receipt

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sampleReceipt() Receipt {
	return Receipt{
		Merchant: &Merchant{
			DisplayName: "Tillpoint Cafe",
			BranchName:  "Main Branch",
			Address:     "12 Harbor St",
		},
		Title: "SALES INVOICE",
		Lines: []Line{
			{
				Name:      "Drip Coffee",
				Qty:       dec("2"),
				UOMAbbrev: "ea",
				UnitPrice: dec("50"),
				Subtotal:  dec("100"),
			},
			{
				Name:           "Tea",
				SizeLabel:      "Large",
				SizeAnnotation: "16 oz",
				Qty:            dec("1"),
				UOMAbbrev:      "ea",
				UnitPrice:      dec("112"),
				Subtotal:       dec("112"),
				Taxable:        true,
			},
		},
		Totals: Totals{
			TaxableAmount:    dec("112"),
			TaxableNetAmount: dec("100"),
			TaxExemptAmount:  dec("100"),
			TaxAmount:        dec("12"),
			GrandTotalAmount: dec("212"),
		},
		IssuedAt:      time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC),
		InvoiceNumber: 42,
	}
}

func TestRenderLayout(t *testing.T) {
	out := Render(sampleReceipt())

	require.True(t, strings.HasPrefix(out, escInit))
	require.Contains(t, out, "Tillpoint Cafe\n")
	require.Contains(t, out, "Main Branch\n")
	require.Contains(t, out, "SALES INVOICE\n")
	require.Contains(t, out, strings.Repeat("=", Width)+"\n")
	require.Contains(t, out, strings.Repeat("-", Width)+"\n")
	require.Contains(t, out, "Drip Coffee\n")
	require.Contains(t, out, "Large [16 oz]\n")
	require.Contains(t, out, "2026-03-14 10:30:05"[:10])
	require.Contains(t, out, "000042\n")
}

func TestRenderLineRowsJustified(t *testing.T) {
	out := Render(sampleReceipt())

	require.Contains(t, out, justify("2 ea  @ 50.00", "100.00 E"))
	require.Contains(t, out, justify("1 ea  @ 112.00", "112.00 T"))

	row := justify("2 ea  @ 50.00", "100.00 E")
	require.Len(t, row, Width)
}

func TestRenderTotalsBlock(t *testing.T) {
	out := Render(sampleReceipt())

	require.Contains(t, out, justify("TAXABLE", "112.00"))
	require.Contains(t, out, justify("NET OF TAX", "100.00"))
	require.Contains(t, out, justify("TAX-EXEMPT", "100.00"))
	require.Contains(t, out, justify("TAX", "12.00"))
	require.Contains(t, out, escBoldOn+"TOTAL 212.00"+escBoldOff)
}

func TestRenderOmitsZeroClasses(t *testing.T) {
	r := sampleReceipt()
	r.Lines = r.Lines[:1]
	r.Totals = Totals{
		TaxExemptAmount:  dec("100"),
		GrandTotalAmount: dec("100"),
	}
	out := Render(r)

	require.NotContains(t, out, "TAXABLE ")
	require.NotContains(t, out, "NET OF TAX")
	require.NotContains(t, out, justify("TAX", "0.00"))
	require.Contains(t, out, justify("TAX-EXEMPT", "100.00"))
}

func TestRenderWithoutMerchantHeader(t *testing.T) {
	r := sampleReceipt()
	r.Merchant = nil
	out := Render(r)

	require.NotContains(t, out, "Tillpoint Cafe")
	require.Contains(t, out, "SALES INVOICE\n")
}

func TestJustify(t *testing.T) {
	row := justify("LEFT", "RIGHT")
	require.Len(t, row, Width)
	require.True(t, strings.HasPrefix(row, "LEFT"))
	require.True(t, strings.HasSuffix(row, "RIGHT"))

	// Overflowing input still keeps a single separating space.
	wide := justify(strings.Repeat("a", 20), strings.Repeat("b", 20))
	require.Equal(t, 41, len(wide))
}

func TestFractionalQtyFormatting(t *testing.T) {
	r := Receipt{
		Title: "SALES INVOICE",
		Lines: []Line{{
			Name:      "Beans",
			Qty:       dec("1.5"),
			UOMAbbrev: "kg",
			UnitPrice: dec("400"),
			Subtotal:  dec("600"),
		}},
		Totals:        Totals{TaxExemptAmount: dec("600"), GrandTotalAmount: dec("600")},
		InvoiceNumber: 7,
	}
	out := Render(r)
	require.Contains(t, out, "1.50 kg  @ 400.00")
}
