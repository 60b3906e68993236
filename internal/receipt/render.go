package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcabrera/tillpoint-backend/internal/pricing"
)

// Width is the character width of the target thermal printer.
const Width = 32

const defaultNumberWidth = 6

// Merchant is the optional centered header block.
type Merchant struct {
	DisplayName string
	BranchName  string
	Address     string
}

// Line is one finalized sale line.
type Line struct {
	Name           string
	SizeLabel      string
	SizeAnnotation string
	Qty            decimal.Decimal
	UOMAbbrev      string
	UnitPrice      decimal.Decimal
	Subtotal       decimal.Decimal
	Taxable        bool
}

// Totals is the settled totals block. Zero-amount classes are omitted from
// the printed block; the grand total always prints.
type Totals struct {
	TaxableAmount    decimal.Decimal
	TaxableNetAmount decimal.Decimal
	TaxExemptAmount  decimal.Decimal
	TaxAmount        decimal.Decimal
	GrandTotalAmount decimal.Decimal
}

// Receipt is the full input to Render.
type Receipt struct {
	Merchant      *Merchant
	Title         string
	Lines         []Line
	Totals        Totals
	IssuedAt      time.Time
	InvoiceNumber int64
	NumberWidth   int
}

// Render serializes the receipt into the 32-column text block handed to the
// printer transport. ESC/POS alignment and double-strike sequences are
// embedded verbatim.
func Render(r Receipt) string {
	var b strings.Builder

	b.WriteString(escInit)

	if r.Merchant != nil {
		b.WriteString(escAlignCenter)
		writeIfSet(&b, r.Merchant.DisplayName)
		writeIfSet(&b, r.Merchant.BranchName)
		writeIfSet(&b, r.Merchant.Address)
	}

	b.WriteString(escAlignCenter)
	b.WriteString(strings.Repeat("=", Width))
	b.WriteByte('\n')
	if r.Title != "" {
		b.WriteString(r.Title)
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat("=", Width))
	b.WriteByte('\n')

	b.WriteString(escAlignLeft)
	for _, line := range r.Lines {
		writeLine(&b, line)
	}

	writeTotals(&b, r.Totals)

	b.WriteString(escAlignCenter)
	b.WriteString(strings.Repeat("-", Width))
	b.WriteByte('\n')
	if !r.IssuedAt.IsZero() {
		b.WriteString(r.IssuedAt.Format("2006-01-02 15:04:05"))
		b.WriteByte('\n')
	}
	b.WriteString(formatInvoiceNumber(r.InvoiceNumber, r.NumberWidth))
	b.WriteByte('\n')

	return b.String()
}

func writeLine(b *strings.Builder, line Line) {
	b.WriteString(line.Name)
	b.WriteByte('\n')

	if line.SizeLabel != "" {
		b.WriteString(line.SizeLabel)
		if line.SizeAnnotation != "" {
			b.WriteString(" [")
			b.WriteString(line.SizeAnnotation)
			b.WriteString("]")
		}
		b.WriteByte('\n')
	}

	left := fmt.Sprintf("%s %s  @ %s",
		pricing.FormatQty(line.Qty), line.UOMAbbrev, pricing.FormatAmount(line.UnitPrice))
	right := pricing.FormatAmount(line.Subtotal) + " " + taxMarker(line.Taxable)
	b.WriteString(justify(left, right))
	b.WriteByte('\n')
	b.WriteByte('\n')
}

func writeTotals(b *strings.Builder, totals Totals) {
	b.WriteString(escAlignLeft)
	if !totals.TaxableAmount.IsZero() {
		b.WriteString(justify("TAXABLE", pricing.FormatAmount(totals.TaxableAmount)))
		b.WriteByte('\n')
		b.WriteString(justify("NET OF TAX", pricing.FormatAmount(totals.TaxableNetAmount)))
		b.WriteByte('\n')
	}
	if !totals.TaxExemptAmount.IsZero() {
		b.WriteString(justify("TAX-EXEMPT", pricing.FormatAmount(totals.TaxExemptAmount)))
		b.WriteByte('\n')
	}
	if !totals.TaxAmount.IsZero() {
		b.WriteString(justify("TAX", pricing.FormatAmount(totals.TaxAmount)))
		b.WriteByte('\n')
	}

	b.WriteString(escAlignRight)
	b.WriteString(escBoldOn)
	b.WriteString("TOTAL " + pricing.FormatAmount(totals.GrandTotalAmount))
	b.WriteString(escBoldOff)
	b.WriteByte('\n')
}

func taxMarker(taxable bool) string {
	if taxable {
		return "T"
	}
	return "E"
}

func formatInvoiceNumber(number int64, width int) string {
	if width <= 0 {
		width = defaultNumberWidth
	}
	return fmt.Sprintf("%0*d", width, number)
}

// justify pads left and right text with spaces to fill the full width.
// Callers must keep the combined text within the column width.
func justify(left, right string) string {
	pad := Width - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

func writeIfSet(b *strings.Builder, value string) {
	if value == "" {
		return
	}
	b.WriteString(value)
	b.WriteByte('\n')
}
