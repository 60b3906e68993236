package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSubtotalBlankQtyIsZero(t *testing.T) {
	t.Parallel()

	got := Subtotal(decimal.NewFromInt(50), nil)
	if !got.IsZero() {
		t.Fatalf("expected zero subtotal for blank qty, got %s", got)
	}
}

func TestSubtotalMultiplies(t *testing.T) {
	t.Parallel()

	qty := decimal.NewFromFloat(2.5)
	got := Subtotal(decimal.NewFromInt(40), &qty)
	if !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100, got %s", got)
	}
}

func TestSplitTaxInclusive(t *testing.T) {
	t.Parallel()

	net, tax := SplitTaxInclusive(decimal.NewFromInt(112), decimal.NewFromInt(12))
	if !net.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected net 100, got %s", net)
	}
	if !tax.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("expected tax 12, got %s", tax)
	}
}

func TestSplitTaxInclusiveRemainderStaysExact(t *testing.T) {
	t.Parallel()

	subtotal := decimal.NewFromFloat(99.99)
	net, tax := SplitTaxInclusive(subtotal, decimal.NewFromInt(12))
	if !net.Add(tax).Equal(subtotal) {
		t.Fatalf("net %s + tax %s != subtotal %s", net, tax, subtotal)
	}
}

func TestSplitTaxInclusiveZeroRate(t *testing.T) {
	t.Parallel()

	net, tax := SplitTaxInclusive(decimal.NewFromInt(50), decimal.Zero)
	if !net.Equal(decimal.NewFromInt(50)) || !tax.IsZero() {
		t.Fatalf("expected passthrough for zero rate, got net %s tax %s", net, tax)
	}
}

func TestFormatQty(t *testing.T) {
	t.Parallel()

	cases := []struct {
		qty  decimal.Decimal
		want string
	}{
		{decimal.NewFromInt(3), "3"},
		{decimal.NewFromFloat(3.0), "3"},
		{decimal.NewFromFloat(0.5), "0.50"},
		{decimal.NewFromFloat(1.25), "1.25"},
	}
	for _, tc := range cases {
		if got := FormatQty(tc.qty); got != tc.want {
			t.Fatalf("FormatQty(%s) = %q, want %q", tc.qty, got, tc.want)
		}
	}
}
